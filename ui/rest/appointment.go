package rest

import (
	"strconv"

	domainAppointment "github.com/AzielCF/az-remind/domains/appointment"
	"github.com/AzielCF/az-remind/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Appointment struct {
	Service domainAppointment.IAppointmentUsecase
}

func InitRestAppointment(app fiber.Router, service domainAppointment.IAppointmentUsecase) Appointment {
	rest := Appointment{Service: service}
	app.Get("/appointments", rest.List)
	app.Post("/appointments", rest.Save)
	app.Get("/appointments/:id", rest.Get)
	app.Delete("/appointments/:id", rest.Delete)
	return rest
}

func (handler *Appointment) List(c *fiber.Ctx) error {
	appointments, err := handler.Service.List(c.UserContext())
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Appointments",
		Results: appointments,
	})
}

func (handler *Appointment) Save(c *fiber.Ctx) error {
	var request domainAppointment.Appointment
	err := c.BodyParser(&request)
	utils.PanicIfNeeded(err)

	saved, err := handler.Service.Save(c.UserContext(), request)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Appointment saved",
		Results: saved,
	})
}

func (handler *Appointment) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "VALIDATION_ERROR",
			Message: "invalid appointment id",
		})
	}

	apt, err := handler.Service.Get(c.UserContext(), id)
	utils.PanicIfNeeded(err)

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Appointment",
		Results: apt,
	})
}

func (handler *Appointment) Delete(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    "VALIDATION_ERROR",
			Message: "invalid appointment id",
		})
	}

	utils.PanicIfNeeded(handler.Service.Delete(c.UserContext(), id))

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Appointment deleted",
	})
}
