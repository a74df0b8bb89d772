// Command fingerboard-tray runs the whiteboard headless behind a system
// tray menu; the drawing is viewed through the HTTP stream.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayusman/fingerboard/internal/config"
	"github.com/ayusman/fingerboard/internal/launch"
	"github.com/ayusman/fingerboard/internal/tray"
)

func main() {
	fmt.Println("Fingerboard - tray mode")

	if err := run(); err != nil {
		log.Fatalf("Fingerboard tray failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if cfg.Addr == "" {
		log.Println("Viewer server disabled; the drawing can only be saved, not watched")
	}

	s, err := launch.Start(cfg, launch.Tray, launch.Sources{})
	if err != nil {
		return err
	}
	defer s.Close()

	t := tray.New(s.App.Queue())
	s.App.AddSink(t)
	t.OnOpenViewer(func() {
		url := s.ViewerURL()
		if url == "" {
			log.Println("Viewer server is disabled")
			return
		}
		if err := openBrowser(url); err != nil {
			log.Printf("Failed to open %s: %v", url, err)
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s.Serve(ctx)

	done := make(chan error, 1)
	go func() {
		err := s.Run(ctx)
		t.Quit()
		done <- err
	}()

	t.Run()
	cancel()
	return <-done
}
