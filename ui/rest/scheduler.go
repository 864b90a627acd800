package rest

import (
	"strconv"

	"github.com/AzielCF/az-remind/domains/reminder"
	"github.com/AzielCF/az-remind/pkg/utils"
	"github.com/AzielCF/az-remind/validations"
	"github.com/gofiber/fiber/v2"
)

type Scheduler struct {
	Service reminder.IReminderUsecase
}

func InitRestScheduler(app fiber.Router, service reminder.IReminderUsecase) Scheduler {
	rest := Scheduler{Service: service}
	app.Post("/scheduler/start", rest.Start)
	app.Post("/scheduler/stop", rest.Stop)
	app.Post("/scheduler/run-now", rest.RunNow)
	app.Post("/scheduler/test/:id", rest.TestSend)
	app.Get("/scheduler/status", rest.Status)
	app.Get("/scheduler/settings", rest.GetSettings)
	app.Put("/scheduler/settings", rest.UpdateSettings)
	app.Post("/scheduler/channels/:channel/toggle", rest.ToggleChannel)
	app.Get("/scheduler/log", rest.SnapshotLog)
	app.Delete("/scheduler/log", rest.ClearLog)
	return rest
}

func (handler *Scheduler) Start(c *fiber.Ctx) error {
	handler.Service.Start()
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Reminder system started",
	})
}

func (handler *Scheduler) Stop(c *fiber.Ctx) error {
	handler.Service.Stop()
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Reminder system stopped",
	})
}

func (handler *Scheduler) RunNow(c *fiber.Ctx) error {
	sent, err := handler.Service.RunNow(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Manual send completed",
		Results: map[string]any{
			"sent": sent,
		},
	})
}

func (handler *Scheduler) TestSend(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "VALIDATION_ERROR",
			Message: "invalid appointment id",
		})
	}

	utils.PanicIfNeeded(handler.Service.TestSend(c.UserContext(), id))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Test reminder sent",
	})
}

func (handler *Scheduler) Status(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Scheduler status",
		Results: handler.Service.Status(c.UserContext()),
	})
}

func (handler *Scheduler) GetSettings(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Scheduler settings",
		Results: handler.Service.Settings(),
	})
}

func (handler *Scheduler) UpdateSettings(c *fiber.Ctx) error {
	var request reminder.SchedulerSettings
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	utils.PanicIfNeeded(validations.ValidateSettings(c.UserContext(), request))
	utils.PanicIfNeeded(handler.Service.ApplySettings(c.UserContext(), request))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Settings updated",
		Results: request,
	})
}

func (handler *Scheduler) ToggleChannel(c *fiber.Ctx) error {
	channel := reminder.ChannelKind(c.Params("channel"))
	enabled := c.QueryBool("enabled", true)

	utils.PanicIfNeeded(handler.Service.ToggleChannel(c.UserContext(), channel, enabled))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Channel toggled",
	})
}

func (handler *Scheduler) SnapshotLog(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Activity log",
		Results: handler.Service.SnapshotLog(limit),
	})
}

func (handler *Scheduler) ClearLog(c *fiber.Ctx) error {
	utils.PanicIfNeeded(handler.Service.ClearLog())

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Activity log cleared",
	})
}
