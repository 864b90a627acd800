package cmd

import (
	"context"
	"database/sql"
	"os"

	globalConfig "github.com/AzielCF/az-remind/config"
	"github.com/AzielCF/az-remind/domains/reminder"
	"github.com/AzielCF/az-remind/infrastructure/activitylog"
	"github.com/AzielCF/az-remind/infrastructure/mail"
	"github.com/AzielCF/az-remind/infrastructure/whatsapp"
	"github.com/AzielCF/az-remind/pkg/utils"
	"github.com/AzielCF/az-remind/repository"
	"github.com/AzielCF/az-remind/usecase"
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	remindersDB *sql.DB
	repo        *repository.SQLiteRepository
	activityLog *activitylog.FileLog

	appointmentUsecase *usecase.AppointmentService
	reminderUsecase    *usecase.ReminderService
)

var rootCmd = &cobra.Command{
	Use:   "az-remind",
	Short: "Appointment reminder engine",
	Long: `Background reminder engine for clinic appointments: evaluates every
appointment against fixed lead-time rules and dispatches WhatsApp and
email reminders, exactly once per (appointment, rule).`,
}

func init() {
	utils.LoadConfig(".")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()
	cobra.OnInitialize(initEnvConfig, initApp)
}

func initEnvConfig() {
	if envPort := viper.GetString("app_port"); envPort != "" {
		globalConfig.AppPort = envPort
	}
	if viper.GetBool("app_debug") {
		globalConfig.AppDebug = true
	}
	if envDBURI := viper.GetString("db_uri"); envDBURI != "" {
		globalConfig.DBURI = envDBURI
	}
	if envGateway := viper.GetString("whatsapp_gateway_url"); envGateway != "" {
		globalConfig.WhatsappGatewayURL = envGateway
	}
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.AppPort,
		"port", "p",
		globalConfig.AppPort,
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&globalConfig.AppDebug,
		"debug", "d",
		globalConfig.AppDebug,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.DBURI,
		"db-uri", "",
		globalConfig.DBURI,
		`the database uri for appointments, ledger and settings --db-uri <string> | example: --db-uri="file:storages/reminders.db?_foreign_keys=on"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.DefaultCountryCode,
		"country-code", "",
		globalConfig.DefaultCountryCode,
		`country code prepended to phone numbers without one --country-code <string> | example: --country-code="49"`,
	)
	rootCmd.PersistentFlags().StringVarP(
		&globalConfig.WhatsappGatewayURL,
		"whatsapp-gateway", "",
		globalConfig.WhatsappGatewayURL,
		`base URL of the WhatsApp HTTP gateway --whatsapp-gateway <string> | example: --whatsapp-gateway="http://localhost:3000"`,
	)
}

func initApp() {
	if globalConfig.AppDebug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := utils.CreateFolder(globalConfig.PathStorages); err != nil {
		logrus.Errorln(err)
	}

	ctx := context.Background()

	var err error
	remindersDB, err = sql.Open("sqlite3", globalConfig.DBURI)
	if err != nil {
		logrus.Fatalf("failed to open reminders db: %v", err)
	}

	repo = repository.NewSQLiteRepository(remindersDB)
	if err := repo.Init(ctx); err != nil {
		logrus.Fatalf("failed to init reminders repo: %v", err)
	}

	activityLog, err = activitylog.NewFileLog(globalConfig.ActivityLogPath, globalConfig.ActivityLogViewLimit)
	if err != nil {
		logrus.Fatalf("failed to open activity log: %v", err)
	}

	var chat reminder.Notifier
	if globalConfig.WhatsappGatewayURL != "" {
		chat = whatsapp.NewGatewayNotifier(globalConfig.WhatsappGatewayURL, globalConfig.WhatsappGatewayAuth)
	} else {
		logrus.Warn("[APP] WhatsApp gateway not configured, chat channel disabled")
	}
	email := mail.NewNotifier(globalConfig.SMTPHost, globalConfig.SMTPPort, globalConfig.SMTPUser, globalConfig.SMTPPassword, globalConfig.SMTPFromName)

	dispatcher := usecase.NewDispatcher(chat, email, repo, activityLog, globalConfig.DefaultCountryCode)

	appointmentUsecase = usecase.NewAppointmentService(repo)
	reminderUsecase = usecase.NewReminderService(repo, repo, repo, activityLog, dispatcher)
	reminderUsecase.LoadPersisted(ctx)

	if reminderUsecase.Settings().Enabled {
		reminderUsecase.Start()
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp performs a clean shutdown of the scheduler and storage.
func StopApp() {
	logrus.Info("[APP] Stopping application...")

	if reminderUsecase != nil {
		reminderUsecase.Stop()
	}
	if remindersDB != nil {
		if err := remindersDB.Close(); err != nil {
			logrus.WithError(err).Error("[APP] Failed to close reminders db")
		}
	}

	logrus.Info("[APP] Application stopped cleanly.")
}
