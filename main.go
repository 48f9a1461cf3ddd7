package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/carson-networks/ledger-server/api"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/events"
	"github.com/carson-networks/ledger-server/internal/events/amqp"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/memory"
)

func main() {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE:  func(cmd *cobra.Command, _ []string) error { return serve(cmd.Context()) },
	}
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE:  func(*cobra.Command, []string) error { return migrateDB() },
	}

	rootCmd := &cobra.Command{
		Use:   "ledger-server",
		Short: "Personal finance ledger with consistent account balances",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		RunE:         serveCmd.RunE,
	}
	rootCmd.AddCommand(serveCmd, migrateCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context) error {
	logger := logging.SetupLogging()
	logrus.Info("ledger-server starting")

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Error("config.ProcessEnvironmentVariables")
		return err
	}

	var (
		store  storage.Store
		pinger api.Pinger
	)
	switch envConfig.StorageBackend {
	case config.BackendMemory:
		store = memory.New()
		logrus.Warn("using in-memory storage, data is lost on exit")
	default:
		dbStorage, err := storage.NewStorage(envConfig)
		if err != nil {
			logrus.WithError(err).Error("storage.NewStorage")
			return err
		}
		defer dbStorage.Close()
		store, pinger = dbStorage, dbStorage
	}

	delegator := operator.NewOperatorDelegator(store, envConfig.OperatorWorkers)
	delegator.Start()
	defer delegator.Stop()

	bus := events.NewBus()
	if envConfig.AMQPURL != "" {
		publisher, err := amqp.NewPublisher(envConfig.AMQPURL, envConfig.AMQPExchange)
		if err != nil {
			logrus.WithError(err).Error("amqp.NewPublisher")
			return err
		}
		defer publisher.Close()
		bus.Subscribe(publisher.Handle)
	}

	svc := service.NewService(store, delegator, bus, service.Options{
		SummaryCacheSize: envConfig.SummaryCacheSize,
		SummaryCacheTTL:  envConfig.SummaryCacheTTL,
	})

	httpRest := api.Rest{
		Logger:         logger,
		Port:           envConfig.Port,
		AllowedOrigins: envConfig.AllowedOrigins,
		Service:        svc,
		Store:          pinger,
	}
	return httpRest.Serve(ctx)
}

func migrateDB() error {
	logging.SetupLogging()

	envConfig, err := config.ProcessEnvironmentVariables()
	if err != nil {
		logrus.WithError(err).Error("config.ProcessEnvironmentVariables")
		return err
	}

	dbStorage, err := storage.NewStorage(envConfig)
	if err != nil {
		logrus.WithError(err).Error("storage.NewStorage")
		return err
	}
	defer dbStorage.Close()

	result, err := storage.RunMigrations(dbStorage.DB)
	if err != nil {
		logrus.WithError(err).Error("storage.RunMigrations")
		return err
	}

	logrus.WithFields(logrus.Fields{
		"preMigrationVersion":  result.PreMigrationVersion,
		"postMigrationVersion": result.PostMigrationVersion,
	}).Info("Migration status")
	return nil
}
