package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-service/src/internal/config"
	"booking-service/src/pkg/databases/mysql"
	"booking-service/src/pkg/log"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 5 * time.Second

func main() {
	var configPath string

	root := &cobra.Command{
		Use:          "booking-service",
		Short:        "Home-service booking lifecycle and settlement API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), v)
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the MySQL schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.NewViper(configPath)
			if err != nil {
				return err
			}
			log.InitLogger(v)
			db, err := config.NewDatabase(v, log.GetLogger())
			if err != nil {
				return err
			}
			if err := mysql.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			log.GetLogger().Info("main", "schema applied", "migrate", "")
			return nil
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func serve(ctx context.Context, viperConfig *viper.Viper) error {
	log.InitLogger(viperConfig)
	logger := log.GetLogger()

	repos, err := config.NewRepositories(ctx, viperConfig, logger)
	if err != nil {
		return err
	}
	redisClient, err := config.NewRedis(ctx, viperConfig)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	producer, err := config.NewKafkaProducer(viperConfig, logger)
	if err != nil {
		return fmt.Errorf("kafka: %w", err)
	}
	distance, err := config.NewDistanceCalculator(viperConfig, logger)
	if err != nil {
		return fmt.Errorf("maps: %w", err)
	}

	var (
		asynqClient *asynq.Client
		asynqServer *asynq.Server
		mux         *asynq.ServeMux
	)
	if viperConfig.GetString("notification.driver") == "asynq" {
		asynqClient = config.NewAsynqClient(viperConfig)
		asynqServer = config.NewAsynqServer(viperConfig)
		mux = asynq.NewServeMux()
	}

	app := config.NewFiber(viperConfig)
	config.Bootstrap(&config.BootstrapConfig{
		Repos:       repos,
		App:         app,
		Log:         logger,
		Validate:    config.NewValidator(viperConfig),
		Config:      viperConfig,
		Producer:    producer,
		Redis:       redisClient,
		Distance:    distance,
		AsynqClient: asynqClient,
		Async:       mux,
	})

	if asynqServer != nil {
		if err := asynqServer.Start(mux); err != nil {
			return fmt.Errorf("asynq: %w", err)
		}
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(fmt.Sprintf(":%d", viperConfig.GetInt("web.port")))
	}()

	select {
	case err = <-errCh:
		logger.Error("main", fmt.Sprintf("Failed to start server: %v", err), "main", "")
	case <-ctx.Done():
		logger.Info("main", "Server booking-service is shutting down...", "gracefull", "")
		if shutdownErr := app.ShutdownWithTimeout(shutdownTimeout); shutdownErr != nil {
			logger.Error("main", fmt.Sprintf("Error during shutdown: %v", shutdownErr), "graceful", "")
		}
	}

	if asynqServer != nil {
		asynqServer.Shutdown()
	}
	if asynqClient != nil {
		_ = asynqClient.Close()
	}
	if producer != nil {
		producer.Close()
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logger.Info("main", fmt.Sprintf("Server %s stopped", viperConfig.GetString("app.name")), "gracefull", "")
	return err
}
