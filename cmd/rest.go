package cmd

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	globalConfig "github.com/AzielCF/az-remind/config"
	"github.com/AzielCF/az-remind/ui/rest"
	"github.com/AzielCF/az-remind/ui/rest/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var restCmd = &cobra.Command{
	Use:   "rest",
	Short: "Run the reminder engine with its HTTP control surface",
	Run:   restServer,
}

func init() {
	rootCmd.AddCommand(restCmd)
}

func restServer(_ *cobra.Command, _ []string) {
	app := fiber.New(fiber.Config{
		Network:               "tcp",
		AppName:               "Az-Remind Engine",
		DisableStartupMessage: false,
		ServerHeader:          "Hidden",
	})

	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Request-ID",
	}))
	app.Use(middleware.Recovery())
	app.Use(limiter.New(limiter.Config{
		Max:        1000,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	if globalConfig.AppDebug {
		app.Use(logger.New())
	}

	if len(globalConfig.AppBasicAuthCredential) > 0 {
		account := make(map[string]string)
		for _, credential := range globalConfig.AppBasicAuthCredential {
			ba := strings.Split(credential, ":")
			if len(ba) != 2 {
				logrus.Fatalln("Basic auth is not valid, please use the format <user>:<secret>")
			}
			account[ba[0]] = ba[1]
		}
		app.Use(basicauth.New(basicauth.Config{Users: account}))
	}

	api := app.Group(globalConfig.AppBasePath)
	rest.InitRestHealth(api)
	rest.InitRestScheduler(api, reminderUsecase)
	rest.InitRestAppointment(api, appointmentUsecase)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		StopApp()
		if err := app.Shutdown(); err != nil {
			logrus.WithError(err).Error("[APP] Server shutdown failed")
		}
	}()

	if err := app.Listen(":" + globalConfig.AppPort); err != nil {
		logrus.Fatalln("Failed to start server:", err)
	}
}
