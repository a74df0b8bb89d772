package server

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"gocv.io/x/gocv"

	"github.com/ayusman/fingerboard/internal/app"
)

// DefaultJPEGQuality is used for stream frames.
const DefaultJPEGQuality = 80

// FrameHub is an app.Sink that keeps the latest composited frame as JPEG
// for MJPEG viewers. Frames are only encoded while someone is watching.
type FrameHub struct {
	quality int
	viewers atomic.Int32

	mu     sync.Mutex
	frame  []byte
	seq    uint64
	notify chan struct{}
}

// NewFrameHub creates an empty hub.
func NewFrameHub() *FrameHub {
	return &FrameHub{
		quality: DefaultJPEGQuality,
		notify:  make(chan struct{}),
	}
}

// Show encodes the composite for viewers.
func (h *FrameHub) Show(v app.View) {
	if h.viewers.Load() == 0 || v.Composite == nil || v.Composite.Empty() {
		return
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *v.Composite, []int{int(gocv.IMWriteJpegQuality), h.quality})
	if err != nil {
		log.Printf("Error encoding stream frame: %v", err)
		return
	}
	data := append([]byte(nil), buf.GetBytes()...)
	buf.Close()

	h.Publish(data)
}

// Publish replaces the latest frame and wakes waiting viewers.
func (h *FrameHub) Publish(jpeg []byte) {
	h.mu.Lock()
	h.frame = jpeg
	h.seq++
	close(h.notify)
	h.notify = make(chan struct{})
	h.mu.Unlock()
}

// Viewers returns the number of connected stream clients.
func (h *FrameHub) Viewers() int {
	return int(h.viewers.Load())
}

// latest returns the newest frame, its sequence number, and a channel that
// is closed when a newer frame arrives.
func (h *FrameHub) latest() ([]byte, uint64, <-chan struct{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame, h.seq, h.notify
}

// StreamHandler serves MJPEG frames from a FrameHub.
type StreamHandler struct {
	hub *FrameHub
}

// NewStreamHandler creates a new StreamHandler for hub.
func NewStreamHandler(hub *FrameHub) *StreamHandler {
	return &StreamHandler{hub: hub}
}

// ServeHTTP streams MJPEG frames to connected clients.
func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.hub.viewers.Add(1)
	defer h.hub.viewers.Add(-1)

	w.Header().Set("Content-Type", "multipart/x-mixed-replace; boundary=frame")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	var sent uint64
	for {
		frame, seq, wait := h.hub.latest()
		if seq != sent && frame != nil {
			if err := writePart(w, frame); err != nil {
				return
			}
			sent = seq
		}

		select {
		case <-r.Context().Done():
			return
		case <-wait:
		}
	}
}

func writePart(w http.ResponseWriter, jpeg []byte) error {
	if _, err := fmt.Fprintf(w, "--frame\r\nContent-Type: image/jpeg\r\nContent-Length: %d\r\n\r\n", len(jpeg)); err != nil {
		return err
	}
	if _, err := w.Write(jpeg); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "\r\n"); err != nil {
		return err
	}
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}
