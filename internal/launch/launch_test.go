package launch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ayusman/fingerboard/internal/app"
	"github.com/ayusman/fingerboard/internal/canvas"
	"github.com/ayusman/fingerboard/internal/config"
	"github.com/ayusman/fingerboard/internal/detector"
	"github.com/ayusman/fingerboard/internal/fixtures"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.SavePath = filepath.Join(dir, "board.png")
	return cfg
}

func testSources(t *testing.T) Sources {
	t.Helper()
	return Sources{
		Camera:   fixtures.Camera(t, 160, 120),
		Detector: detector.NewMockDetector(),
	}
}

func TestVariant_SessionConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ExportPDF = true
	cfg.SavePath = "out/board.png"

	tests := []struct {
		variant  Variant
		policy   canvas.Policy
		size     bool
		skipRead bool
	}{
		{variant: Plain, policy: canvas.MaskPolicy},
		{variant: GUI, policy: canvas.BlendPolicy, size: true, skipRead: true},
		{variant: Tray, policy: canvas.MaskPolicy},
	}

	for _, tt := range tests {
		t.Run(tt.variant.String(), func(t *testing.T) {
			sc := tt.variant.sessionConfig(cfg)
			if sc.Policy != tt.policy {
				t.Errorf("Policy = %v, want %v", sc.Policy, tt.policy)
			}
			if !sc.Preprocess.Mirror {
				t.Error("every variant mirrors the frame")
			}
			if (sc.Preprocess.Size == GUIFrameSize) != tt.size {
				t.Errorf("Preprocess.Size = %v", sc.Preprocess.Size)
			}
			if sc.SkipOnReadError != tt.skipRead {
				t.Errorf("SkipOnReadError = %v, want %v", sc.SkipOnReadError, tt.skipRead)
			}
			if sc.PDFPath != "out/board.pdf" {
				t.Errorf("PDFPath = %q, want out/board.pdf", sc.PDFPath)
			}
			if sc.SnapshotDir != cfg.SnapshotDir() {
				t.Errorf("SnapshotDir = %q, want %q", sc.SnapshotDir, cfg.SnapshotDir())
			}
		})
	}
}

func TestStart_WithServer(t *testing.T) {
	cfg := testConfig(t)
	s, err := Start(cfg, Plain, testSources(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	if s.Handler() == nil {
		t.Fatal("expected a viewer server with the default address")
	}
	if got := s.ViewerURL(); got != "http://127.0.0.1:8080/api/stream" {
		t.Errorf("ViewerURL() = %q", got)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("GET /api/snapshots status = %d", rec.Code)
	}
}

func TestStart_ServesWebDir(t *testing.T) {
	cfg := testConfig(t)
	cfg.WebDir = t.TempDir()
	page := `<img src="/api/stream">`
	if err := os.WriteFile(filepath.Join(cfg.WebDir, "index.html"), []byte(page), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := Start(cfg, Tray, testSources(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	if got := s.ViewerURL(); got != "http://127.0.0.1:8080/" {
		t.Errorf("ViewerURL() = %q, want the viewer page", got)
	}

	tests := []struct {
		path string
		code int
	}{
		{path: "/", code: http.StatusOK},
		{path: "/api/health", code: http.StatusOK},
		{path: "/missing.js", code: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != tt.code {
				t.Errorf("GET %s status = %d, want %d", tt.path, rec.Code, tt.code)
			}
		})
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Body.String() != page {
		t.Errorf("GET / body = %q, want %q", rec.Body.String(), page)
	}
}

func TestStart_WithoutServer(t *testing.T) {
	cfg := testConfig(t)
	cfg.Addr = ""
	s, err := Start(cfg, Tray, testSources(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	if s.Handler() != nil || s.ViewerURL() != "" {
		t.Error("server should be off without an address")
	}
	s.Serve(context.Background())
}

func TestSession_RunUntilQuit(t *testing.T) {
	cfg := testConfig(t)
	cfg.FPS = 100
	s, err := Start(cfg, GUI, testSources(t))
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer s.Close()

	s.App.AddSink(&scriptSink{queue: s.App.Queue(), script: map[int]app.Event{
		1: app.Save(),
		3: app.Quit(),
	}})

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	st := s.App.Status()
	if st.FrameWidth != GUIFrameSize.X || st.FrameHeight != GUIFrameSize.Y {
		t.Errorf("frame = %dx%d, want GUI size", st.FrameWidth, st.FrameHeight)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/snapshots", nil))
	var listed struct {
		Snapshots []json.RawMessage `json:"snapshots"`
	}
	json.NewDecoder(rec.Body).Decode(&listed)
	if len(listed.Snapshots) != 1 {
		t.Errorf("snapshots = %d, want 1", len(listed.Snapshots))
	}
}

// scriptSink pushes an event after the n-th view it is shown.
type scriptSink struct {
	queue  *app.Queue
	script map[int]app.Event
	shown  int
}

func (s *scriptSink) Show(v app.View) {
	s.shown++
	if e, ok := s.script[s.shown]; ok {
		s.queue.Push(e)
	}
}
