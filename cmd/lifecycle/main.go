package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"todoLifecycle/internal/app"
	"todoLifecycle/internal/config"
	"todoLifecycle/internal/lifecycle"
	"todoLifecycle/internal/logger"
)

func main() {
	configPath := flag.String("config", "config.yml", "путь к файлу конфигурации")
	once := flag.Bool("once", false, "выполнить один прогон и выйти")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application := app.New(cfg)
	if err := application.Init(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer application.Shutdown()

	// режим для внешнего планировщика: один прогон, код выхода по итогу
	if *once {
		result := application.RunOnce(ctx)
		if result.State == lifecycle.StateFailed {
			os.Exit(1)
		}
		return
	}

	if err := application.Run(ctx); err != nil {
		logger.Error("Сервер остановлен с ошибкой", err)
		os.Exit(1)
	}
}
