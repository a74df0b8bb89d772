// Package launch wires configuration, storage, the session and the viewer
// server together for the fingerboard commands.
package launch

import (
	"context"
	"fmt"
	"image"
	"log"
	"net"

	"github.com/hashicorp/mdns"

	"github.com/ayusman/fingerboard/internal/app"
	"github.com/ayusman/fingerboard/internal/canvas"
	"github.com/ayusman/fingerboard/internal/capture"
	"github.com/ayusman/fingerboard/internal/config"
	"github.com/ayusman/fingerboard/internal/detector"
	"github.com/ayusman/fingerboard/internal/server"
	"github.com/ayusman/fingerboard/internal/store"
)

// Variant selects the per-command session behaviour.
type Variant int

const (
	// Plain is the two-window highgui variant.
	Plain Variant = iota
	// GUI is the fyne variant.
	GUI
	// Tray is the headless tray variant.
	Tray
)

// GUIFrameSize is the frame size the GUI variant resizes to.
var GUIFrameSize = image.Pt(640, 480)

func (v Variant) String() string {
	switch v {
	case GUI:
		return "gui"
	case Tray:
		return "tray"
	}
	return "plain"
}

// sessionConfig applies the variant's composite policy, preprocessing and
// read-failure behaviour.
func (v Variant) sessionConfig(cfg config.Config) app.Config {
	sc := app.Config{
		CameraID:        cfg.CameraID,
		FPS:             cfg.FPS,
		SavePath:        cfg.SavePath,
		SnapshotDir:     cfg.SnapshotDir(),
		MotionThreshold: cfg.MotionThreshold,
		Policy:          canvas.MaskPolicy,
		Preprocess:      capture.Preprocess{Mirror: true},
	}
	if cfg.ExportPDF {
		sc.PDFPath = cfg.PDFPath()
	}
	if v == GUI {
		sc.Policy = canvas.BlendPolicy
		sc.Preprocess.Size = GUIFrameSize
		sc.SkipOnReadError = true
	}
	return sc
}

// Session is a running whiteboard with its store and optional viewer server.
type Session struct {
	Config  config.Config
	Variant Variant
	App     *app.App
	Store   *store.Store

	server *server.Server
	frames *server.FrameHub
	status *server.StatusHub
	mdns   *mdns.Server
}

// Sources overrides the frame source and detector. Zero values select the
// configured camera and the MediaPipe detector.
type Sources struct {
	Camera   capture.Camera
	Detector detector.Detector
}

// Start opens the store and builds the session. The camera is only opened
// once Run is called.
func Start(cfg config.Config, v Variant, src Sources) (*Session, error) {
	if err := cfg.EnsureDataDir(); err != nil {
		return nil, err
	}

	st, err := store.New(cfg.DBPath())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sc := v.sessionConfig(cfg)
	sc.Store = st
	sc.Camera = src.Camera
	sc.Detector = src.Detector

	s := &Session{
		Config:  cfg,
		Variant: v,
		App:     app.New(sc),
		Store:   st,
	}

	if cfg.Addr != "" {
		s.frames = server.NewFrameHub()
		s.status = server.NewStatusHub()
		s.App.AddSink(s.frames)
		s.App.AddSink(s.status)
		s.server = server.New(server.Config{
			WebDir: cfg.WebDir,
			Store:  st,
			Queue:  s.App.Queue(),
			Frames: s.frames,
			Status: s.status,
		})
	}

	log.Printf("Session ready (%s variant, data in %s)", v, cfg.DataDir)
	return s, nil
}

// Serve starts the viewer server and mDNS advertisement in the background.
// Both stop when ctx is cancelled.
func (s *Session) Serve(ctx context.Context) {
	if s.server == nil {
		return
	}

	go func() {
		if err := s.server.ListenAndServe(ctx, s.Config.Addr); err != nil {
			log.Printf("Viewer server failed: %v", err)
		}
	}()

	if s.Config.Advertise {
		srv, err := server.Advertise(s.Config.Addr)
		if err != nil {
			log.Printf("mDNS advertisement failed: %v", err)
			return
		}
		s.mdns = srv
		log.Printf("Advertising %s on the local network", server.ServiceType)
	}
}

// Handler returns the viewer HTTP handler, or nil when the server is off.
func (s *Session) Handler() *server.Server {
	return s.server
}

// ViewerURL is the viewer page address when a web directory is served,
// the live stream address otherwise, or "" when the server is off.
func (s *Session) ViewerURL() string {
	if s.server == nil {
		return ""
	}
	host, port, err := net.SplitHostPort(s.Config.Addr)
	if err != nil {
		return ""
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	base := "http://" + net.JoinHostPort(host, port)
	if s.Config.WebDir != "" {
		return base + "/"
	}
	return base + "/api/stream"
}

// Run ticks the session until it ends.
func (s *Session) Run(ctx context.Context) error {
	if err := s.App.Run(ctx); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	return nil
}

// Close stops mDNS and releases the session and store.
func (s *Session) Close() {
	if s.mdns != nil {
		if err := s.mdns.Shutdown(); err != nil {
			log.Printf("Error stopping mDNS: %v", err)
		}
	}
	if err := s.App.Close(); err != nil {
		log.Printf("Error closing session: %v", err)
	}
	if err := s.Store.Close(); err != nil {
		log.Printf("Error closing store: %v", err)
	}
}
