// Command fingerboard-gui is the desktop GUI variant: live video with pen,
// color and shape controls.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/ayusman/fingerboard/internal/config"
	"github.com/ayusman/fingerboard/internal/gui"
	"github.com/ayusman/fingerboard/internal/launch"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fingerboard GUI failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	s, err := launch.Start(cfg, launch.GUI, launch.Sources{})
	if err != nil {
		return err
	}
	defer s.Close()

	a := fyneapp.NewWithID("com.github.ayusman.fingerboard")
	win := gui.NewWindow(a, s.App.Queue(), s.App.Canvas().Style())
	s.App.AddSink(win)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s.Serve(ctx)
	if url := s.ViewerURL(); url != "" {
		log.Printf("Live view: %s", url)
	}

	// The session ticks off the UI goroutine; closing the window cancels it
	// and a session that ends on its own closes the window.
	done := make(chan error, 1)
	go func() {
		err := s.Run(ctx)
		fyne.Do(a.Quit)
		done <- err
	}()

	win.ShowAndRun()
	cancel()
	return <-done
}
