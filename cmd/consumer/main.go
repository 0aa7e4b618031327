package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/iliyamo/property-reservation/internal/config"
	"github.com/iliyamo/property-reservation/internal/queue"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("startup failed", "error", err)
		os.Exit(1)
	}
	log := config.NewLogger(os.Stdout, os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	queueName := os.Getenv("EVENTS_QUEUE")
	if queueName == "" {
		queueName = "reservation.events"
	}
	logPath := os.Getenv("EVENTS_LOG_PATH")
	if logPath == "" {
		logPath = "logs/reservations.log"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{
		URL:     config.AMQPURL(),
		Queue:   queueName,
		LogPath: logPath,
		Log:     log,
	}
	log.Info("consumer started", "queue", queueName, "log_path", logPath)
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "error", err)
		os.Exit(1)
	}
}
