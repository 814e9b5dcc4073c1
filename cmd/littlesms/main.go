package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/littlesms/littlesms-go/pkg/littlesms"
)

func main() {
	if err := run(); err != nil {
		var svcErr *littlesms.ServiceError
		if errors.As(err, &svcErr) {
			fmt.Fprintf(os.Stderr, "littlesms: service error %d: %s\n", svcErr.Code, svcErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "littlesms: %v\n", err)
		}
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}
