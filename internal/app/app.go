// Package app runs the fingertip whiteboard session: it owns the canvas and
// session state, drains control events once per tick, and hands each
// composited frame to the configured sinks.
package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"github.com/ayusman/fingerboard/internal/canvas"
	"github.com/ayusman/fingerboard/internal/capture"
	"github.com/ayusman/fingerboard/internal/detector"
	"github.com/ayusman/fingerboard/internal/store"
)

// ErrQuit is returned by Tick once a Quit event has been applied.
var ErrQuit = errors.New("quit requested")

// Config holds configuration options for a session.
type Config struct {
	// Camera and Detector default to the real camera and the MediaPipe
	// detector (falling back to the mock detector) when nil.
	Camera   capture.Camera
	Detector detector.Detector
	CameraID int

	// Store, when set, persists pen style and records snapshots.
	Store *store.Store

	Policy     canvas.Policy
	Preprocess capture.Preprocess
	// SkipOnReadError keeps the loop running when a frame read fails.
	SkipOnReadError bool

	FPS int
	// SavePath is the PNG written on Save. PDFPath, when non-empty, also
	// gets a vector export of the journal.
	SavePath string
	PDFPath  string
	// SnapshotDir, when set, keeps a copy of every save under its
	// snapshot id.
	SnapshotDir string

	// MotionThreshold enables the motion gate when positive.
	MotionThreshold float64

	Queue *Queue
}

// App is a single whiteboard session.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	motion   *capture.MotionGate
	canvas   *canvas.Canvas
	queue    *Queue

	sinks []Sink

	// Session state, owned by the tick goroutine.
	drawing bool
	tool    Tool
	hand    bool
	tip     image.Point
	ticks   uint64
	quit    bool

	mu     sync.RWMutex
	status Status
}

// New creates a session with the given configuration.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.Queue == nil {
		config.Queue = NewQueue(DefaultQueueSize)
	}

	a := &App{
		config:   config,
		camera:   config.Camera,
		detector: config.Detector,
		queue:    config.Queue,
		tool:     ToolFreehand,
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(config.CameraID)
	}

	if a.detector == nil {
		// Try MediaPipe first, fall back to mock detector
		if mp, err := detector.NewMediaPipeDetector(detector.DefaultConfig()); err == nil {
			a.detector = mp
			log.Println("Using MediaPipe hand detection")
		} else {
			log.Printf("MediaPipe not available (%v), using mock detector", err)
			a.detector = detector.NewMockDetector()
		}
	}

	if config.MotionThreshold > 0 {
		a.motion = capture.NewMotionGate(config.MotionThreshold)
	}

	a.canvas = canvas.New(a.loadStyle())
	a.status = a.snapshotStatus()
	return a
}

// AddSink registers a sink that receives every composited view. Sinks must
// be added before Run.
func (a *App) AddSink(s Sink) {
	a.sinks = append(a.sinks, s)
}

// Queue returns the event queue control surfaces push into.
func (a *App) Queue() *Queue {
	return a.queue
}

// Canvas returns the session canvas. It must only be touched from the tick
// goroutine.
func (a *App) Canvas() *canvas.Canvas {
	return a.canvas
}

// Camera returns the frame source.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	return a.detector
}

// Store returns the configured store, or nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Status returns the status published by the most recent tick.
func (a *App) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Run opens the camera and ticks at the configured FPS until a Quit event,
// context cancellation, or a fatal read error.
func (a *App) Run(ctx context.Context) error {
	if err := a.camera.Open(); err != nil {
		return fmt.Errorf("open camera: %w", err)
	}
	defer func() {
		if err := a.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()
	a.camera.SetFPS(a.config.FPS)

	ticker := time.NewTicker(time.Second / time.Duration(a.config.FPS))
	defer ticker.Stop()

	log.Println("Whiteboard session started")
	for {
		if err := a.Tick(); err != nil {
			if errors.Is(err, ErrQuit) {
				log.Println("Whiteboard session ended")
				return nil
			}
			return err
		}

		select {
		case <-ctx.Done():
			log.Println("Whiteboard session cancelled")
			return nil
		case <-ticker.C:
		}
	}
}

// Close releases the canvas, motion gate and detector.
func (a *App) Close() error {
	if a.motion != nil {
		a.motion.Close()
	}
	if err := a.canvas.Close(); err != nil {
		log.Printf("Error closing canvas: %v", err)
	}
	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			return fmt.Errorf("close detector: %w", err)
		}
	}
	return nil
}
