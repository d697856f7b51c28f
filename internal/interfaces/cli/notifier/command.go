// Package notifier implements the "notifier" command: the worker that
// drains the change-check and transmit queues.
package notifier

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"enverge/internal/application/notification"
	"enverge/internal/domain/ident"
	"enverge/internal/infrastructure/config"
	"enverge/internal/infrastructure/database"
	"enverge/internal/infrastructure/repository"
	"enverge/internal/infrastructure/tasks"
	"enverge/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notifier",
		Short: "Start the subscription notification worker",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	log := logger.NewLogger()
	log.Infow("starting notifier", "environment", env, "concurrency", cfg.Notifier.Concurrency)

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	db := database.Get()
	sites := repository.NewSiteRepository(db, log)
	does := repository.NewDoeRepository(db, log)
	rates := repository.NewRateRepository(db, log)
	readings := repository.NewReadingRepository(db, log)
	ders := repository.NewDERRepository(db, log)
	subs := repository.NewSubscriptionRepository(db, log)
	runtime := repository.NewRuntimeConfigRepository(db, log)

	broker := tasks.NewBroker(rdb, log)
	hrefs := ident.NewHrefBuilder(cfg.Sep2.HrefPrefix)
	batcher := notification.NewBatcher(sites, does, rates, readings, ders, subs, runtime, broker, hrefs, cfg.Sep2.IanaPEN, log)
	deliverer := notification.NewDeliverer(broker, batcher, cfg.Notifier, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Infow("shutting down notifier")
		cancel()
	}()

	deliverer.Run(ctx)

	log.Infow("notifier exited")
	return nil
}
