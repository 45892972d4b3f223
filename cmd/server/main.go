// Command server runs the crossfire arena-shooter backend: the UDP
// gameplay listener, the per-lobby tick loops, and the HTTP control plane.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"crossfire/server/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
