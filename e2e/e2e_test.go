package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/fingerboard/internal/app"
	"github.com/ayusman/fingerboard/internal/capture"
	"github.com/ayusman/fingerboard/internal/config"
	"github.com/ayusman/fingerboard/internal/detector"
	"github.com/ayusman/fingerboard/internal/fixtures"
	"github.com/ayusman/fingerboard/internal/launch"
	"github.com/ayusman/fingerboard/internal/store"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.DataDir = filepath.Join(dir, "data")
	cfg.SavePath = filepath.Join(dir, "whiteboard.png")
	cfg.ExportPDF = true
	cfg.FPS = 100
	return cfg
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestE2E_CompleteWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	det := detector.NewMockDetector()
	s, err := launch.Start(testConfig(t), launch.Plain, launch.Sources{
		Camera:   fixtures.Camera(t, 320, 240),
		Detector: det,
	})
	if err != nil {
		t.Fatalf("launch.Start() error = %v", err)
	}
	defer s.Close()

	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	client := ts.Client()

	control := func(t *testing.T, body string) {
		t.Helper()
		resp, err := client.Post(ts.URL+"/api/control", "application/json", strings.NewReader(body))
		if err != nil {
			t.Fatalf("control %s error = %v", body, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusAccepted {
			t.Fatalf("control %s status = %d", body, resp.StatusCode)
		}
	}

	done := make(chan error, 1)
	go func() { done <- s.Run(context.Background()) }()

	t.Run("Health", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/health")
		if err != nil {
			t.Fatalf("health error = %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("health status = %d", resp.StatusCode)
		}
	})

	t.Run("Draw", func(t *testing.T) {
		control(t, `{"action":"color","color":"#ff0000"}`)
		control(t, `{"action":"width","width":8}`)
		control(t, `{"action":"toggle_draw"}`)
		waitFor(t, "draw mode", func() bool { return s.App.Status().Drawing })

		for i := 0; i < 10; i++ {
			det.Enqueue(detector.HandAt(50+i*20, 100, 320, 240))
		}
		det.SetHands(detector.HandAt(250, 100, 320, 240))
		waitFor(t, "strokes", func() bool { return s.App.Status().Segments >= 9 })

		st := s.App.Status()
		if st.Color != "#ff0000" || st.Width != 8 {
			t.Errorf("style = %s/%d, want #ff0000/8", st.Color, st.Width)
		}
	})

	var snaps []store.Snapshot
	t.Run("Save", func(t *testing.T) {
		control(t, `{"action":"save"}`)
		waitFor(t, "snapshots", func() bool {
			resp, err := client.Get(ts.URL + "/api/snapshots")
			if err != nil {
				return false
			}
			defer resp.Body.Close()
			var listed struct {
				Snapshots []store.Snapshot `json:"snapshots"`
			}
			json.NewDecoder(resp.Body).Decode(&listed)
			snaps = listed.Snapshots
			return len(snaps) == 2
		})

		formats := map[store.SnapshotFormat]string{}
		for _, snap := range snaps {
			formats[snap.Format] = snap.ID
		}
		id, ok := formats[store.FormatPDF]
		if !ok || formats[store.FormatPNG] == "" {
			t.Fatalf("expected png and pdf snapshots, got %+v", snaps)
		}

		resp, err := client.Get(ts.URL + "/api/snapshots/" + id + "/file")
		if err != nil {
			t.Fatalf("get pdf error = %v", err)
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		if !bytes.HasPrefix(data, []byte("%PDF")) {
			t.Errorf("pdf file starts with %q", data[:min(len(data), 8)])
		}
	})

	t.Run("HistoryKeepsOlderSaves", func(t *testing.T) {
		fetch := func(t *testing.T, id string) []byte {
			t.Helper()
			resp, err := client.Get(ts.URL + "/api/snapshots/" + id + "/file")
			if err != nil {
				t.Fatalf("get snapshot %s error = %v", id, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("get snapshot %s status = %d", id, resp.StatusCode)
			}
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				t.Fatalf("read snapshot %s: %v", id, err)
			}
			return data
		}

		var firstID string
		for _, snap := range snaps {
			if snap.Format == store.FormatPNG {
				firstID = snap.ID
			}
		}
		if firstID == "" {
			t.Fatal("no png snapshot from the first save")
		}
		firstPNG := fetch(t, firstID)

		before := s.App.Status().Segments
		for i := 1; i <= 5; i++ {
			det.Enqueue(detector.HandAt(250, 100+i*20, 320, 240))
		}
		det.SetHands(detector.HandAt(250, 200, 320, 240))
		waitFor(t, "more strokes", func() bool { return s.App.Status().Segments >= before+5 })

		control(t, `{"action":"save"}`)
		var secondID string
		waitFor(t, "second save", func() bool {
			resp, err := client.Get(ts.URL + "/api/snapshots")
			if err != nil {
				return false
			}
			defer resp.Body.Close()
			var listed struct {
				Snapshots []store.Snapshot `json:"snapshots"`
			}
			json.NewDecoder(resp.Body).Decode(&listed)
			for _, snap := range listed.Snapshots {
				if snap.Format == store.FormatPNG && snap.ID != firstID {
					secondID = snap.ID
				}
			}
			return len(listed.Snapshots) == 4 && secondID != ""
		})

		if got := fetch(t, firstID); !bytes.Equal(got, firstPNG) {
			t.Error("first snapshot now serves a different image")
		}
		if got := fetch(t, secondID); bytes.Equal(got, firstPNG) {
			t.Error("second snapshot serves the first image")
		}
	})

	t.Run("ClearKeepsStyle", func(t *testing.T) {
		control(t, `{"action":"toggle_draw"}`)
		control(t, `{"action":"clear"}`)
		waitFor(t, "clear", func() bool {
			st := s.App.Status()
			return !st.Drawing && st.Ops == 0
		})
		if st := s.App.Status(); st.Color != "#ff0000" || st.Width != 8 {
			t.Errorf("style after clear = %s/%d", st.Color, st.Width)
		}
	})

	t.Run("Quit", func(t *testing.T) {
		control(t, `{"action":"quit"}`)
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("Run() error = %v", err)
			}
		case <-time.After(10 * time.Second):
			t.Fatal("session did not stop")
		}
	})
}

func TestE2E_StylePersistsAcrossRestarts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	cfg := testConfig(t)
	first, err := launch.Start(cfg, launch.GUI, launch.Sources{
		Camera:   fixtures.Camera(t, 160, 120),
		Detector: detector.NewMockDetector(),
	})
	if err != nil {
		t.Fatalf("launch.Start() error = %v", err)
	}
	first.App.Queue().Push(app.SetPenWidth(17))
	first.App.Queue().Push(app.SetTool(app.ToolCircle))
	if err := first.App.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	first.Close()

	second, err := launch.Start(cfg, launch.GUI, launch.Sources{
		Camera:   fixtures.Camera(t, 160, 120),
		Detector: detector.NewMockDetector(),
	})
	if err != nil {
		t.Fatalf("launch.Start() error = %v", err)
	}
	defer second.Close()

	if got := second.App.Canvas().Style().Width; got != 17 {
		t.Errorf("restored width = %d, want 17", got)
	}
	if err := second.App.Tick(); err != nil {
		t.Fatalf("Tick() error = %v", err)
	}
	if got := second.App.Status().Tool; got != app.ToolFreehand {
		t.Errorf("tool = %s, want freehand on a new session", got)
	}
}

func TestE2E_MotionGateSkipsStillFrames(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	tests := []struct {
		name      string
		camera    func(t *testing.T) capture.Camera
		wantCalls int
	}{
		{
			name:      "still scene",
			camera:    func(t *testing.T) capture.Camera { return fixtures.Camera(t, 160, 120) },
			wantCalls: 1,
		},
		{
			name: "changing scene",
			camera: func(t *testing.T) capture.Camera {
				cam := capture.NewMockCamera(fixtures.Sequence(t, 160, 120, 5), false)
				cam.Open()
				return cam
			},
			wantCalls: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.MotionThreshold = 1
			det := detector.NewMockDetector()
			s, err := launch.Start(cfg, launch.Plain, launch.Sources{Camera: tt.camera(t), Detector: det})
			if err != nil {
				t.Fatalf("launch.Start() error = %v", err)
			}
			defer s.Close()

			for i := 0; i < 5; i++ {
				if err := s.App.Tick(); err != nil {
					t.Fatalf("Tick() error = %v", err)
				}
			}
			if got := det.Calls(); got != tt.wantCalls {
				t.Errorf("detector calls = %d, want %d", got, tt.wantCalls)
			}
		})
	}
}
