package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/kp666/twitter-stream/internal/config"
	"github.com/kp666/twitter-stream/internal/services/stream/contracts"
	"github.com/kp666/twitter-stream/pkg/streamer"

	fiberlog "github.com/gofiber/fiber/v2/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration")
	quiet := flag.Bool("quiet", false, "do not write lines to stdout")
	flag.Parse()

	// Load environment files explicitly
	envFiles := []string{".env.local", ".env.development", ".env"}
	config.LoadEnvFiles(envFiles)

	// Load configuration from YAML
	cfg, err := config.LoadFromFile(*configPath)
	if err != nil {
		fiberlog.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var output io.Writer = os.Stdout
	if *quiet {
		output = nil
	}

	err = streamer.New(cfg, output).Run(ctx)
	if err == nil || contracts.IsExpectedError(err) {
		fiberlog.Infof("Stream finished: %v", err)
		return
	}
	stop()
	fiberlog.Fatalf("Stream failed: %v", err)
}
