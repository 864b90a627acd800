package rest

import (
	"time"

	"github.com/AzielCF/az-remind/config"
	"github.com/AzielCF/az-remind/pkg/utils"
	"github.com/dustin/go-humanize"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	startedAt time.Time
}

func InitRestHealth(app fiber.Router) Health {
	rest := Health{startedAt: time.Now()}
	app.Get("/health", rest.Health)
	return rest
}

func (handler *Health) Health(c *fiber.Ctx) error {
	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Healthy",
		Results: map[string]any{
			"version": config.AppVersion,
			"started": humanize.Time(handler.startedAt),
		},
	})
}
