package main

import (
	"context"
	"log"
	"os"

	"github.com/example/task-tracker/config"
	"github.com/example/task-tracker/modules/activity"
	"github.com/example/task-tracker/modules/api"
	"github.com/example/task-tracker/modules/cache"
	"github.com/example/task-tracker/modules/task"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if cfg.LogLevel == config.LogLevelError {
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}

	logger := app.Logger()

	// The list cache is optional; without REDIS_ADDR every read goes to the store.
	var listCache cache.ListCache = cache.Disabled{}
	var cacheModule *cache.Module
	if cfg.Cache.Enabled() {
		cacheModule = cache.NewModule(cfg.Cache, logger)
		listCache = cacheModule.Cache()
	}

	repo, err := task.OpenRepository(cfg.TaskStore)
	if err != nil {
		log.Fatalf("Failed to open task store: %v", err)
	}

	activityModule := activity.NewModule(logger)
	taskModule := task.NewModule(repo, listCache, logger)
	apiModule := api.NewModule(cfg.HTTPAddr, cfg.CORSAllowOrigins, logger)

	// Register modules (dependencies are resolved by the framework)
	modules := []mono.Module{activityModule, taskModule, apiModule}
	if cacheModule != nil {
		modules = append([]mono.Module{cacheModule}, modules...)
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("Task tracker started",
		"addr", cfg.HTTPAddr,
		"store", cfg.TaskStore,
		"cache", cfg.Cache.Enabled())
	logger.Info("Endpoints",
		"routes", []string{
			"GET    /health",
			"GET    /api/tasks?status=&q=&sort=",
			"POST   /api/tasks",
			"PUT    /api/tasks/:id",
			"DELETE /api/tasks/:id",
			"PATCH  /api/tasks/:id/toggle",
			"GET    /api/activity?limit=",
		})
	logger.Info("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				logger.Info("Graceful shutdown initiated")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
