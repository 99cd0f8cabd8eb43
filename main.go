package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"animalitos/cmd"

	log "github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		log.WithError(err).Error("animalitos failed")
		stop()
		os.Exit(1)
	}
}
