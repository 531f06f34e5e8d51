// netspeed samples the host's network byte counters and writes throughput as CSV.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/danpilch/netspeed/cmd/netspeed/command"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command.NewCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
