// Command fingerboard draws on the webcam feed with the index fingertip and
// shows the result in two OpenCV windows.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayusman/fingerboard/internal/config"
	"github.com/ayusman/fingerboard/internal/display"
	"github.com/ayusman/fingerboard/internal/launch"
)

func main() {
	fmt.Println("Fingerboard - draw in the air with your index finger")
	fmt.Println("Keys: d toggle drawing, c clear, s save, q quit")

	if err := run(); err != nil {
		log.Fatalf("Fingerboard failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s, err := launch.Start(cfg, launch.Plain, launch.Sources{})
	if err != nil {
		return err
	}
	defer s.Close()

	windows := display.New()
	defer windows.Close()
	s.App.AddSink(windows)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s.Serve(ctx)
	if url := s.ViewerURL(); url != "" {
		fmt.Printf("Live view: %s\n", url)
	}

	return s.Run(ctx)
}
