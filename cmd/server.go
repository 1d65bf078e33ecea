package cmd

import (
	"context"
	"errors"
	"log"
	httpNet "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-backtest/internal/delivery/http"
	"golang-backtest/internal/repository"
	"golang-backtest/internal/service"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Run the backtest API server and scheduler",
	Run:   Start,
}

func Start(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appDep, err := NewAppDependency(ctx, true)
	if err != nil {
		log.Fatalf("Failed to create app dependency: %v", err)
	}

	repo := repository.NewRepository(appDep.cfg, appDep.cache, appDep.db.DB, appDep.log, appDep.metrics)
	services := service.NewService(appDep.cfg, appDep.log, repo, appDep.metrics)
	httpHandler := http.NewHttpAPIHandler(ctx, appDep.echo, appDep.validator, services)

	apiServer := NewHTTPServer(ctx, appDep, httpHandler)
	go func() {
		if err := apiServer.Start(); err != nil && !errors.Is(err, httpNet.ErrServerClosed) {
			log.Fatalf("Failed to start HTTP server: %v", err)
		}
	}()

	if appDep.cfg.Scheduler.Enabled {
		if err := services.SchedulerService.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	// Wait for shutdown signal
	<-ctx.Done()
	log.Println("Shutting down gracefully...")

	if appDep.cfg.Scheduler.Enabled {
		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		services.SchedulerService.Stop(stopCtx)
		cancel()
	}

	if err := apiServer.Stop(); err != nil {
		log.Fatalf("Failed to stop HTTP server: %v", err)
	}

	if err := appDep.Close(); err != nil {
		log.Fatalf("Failed to close app dependency: %v", err)
	}
}
