package app

import (
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/fingerboard/internal/canvas"
	"github.com/ayusman/fingerboard/internal/export"
	"github.com/ayusman/fingerboard/internal/store"
)

// ErrNothingToSave is returned by Save before the first frame sized the canvas.
var ErrNothingToSave = errors.New("canvas has no frame yet")

// Save writes the canvas to SavePath as PNG, and to PDFPath as a vector
// PDF when configured. Those files are overwritten on every save. With a
// SnapshotDir each export is also archived there as <id>.<format> and the
// snapshot row points at the archived copy.
// Snapshot bookkeeping failures are logged; the files stay on disk.
func (a *App) Save() ([]*store.Snapshot, error) {
	size := a.canvas.Size()
	if size.X == 0 || size.Y == 0 {
		return nil, ErrNothingToSave
	}

	img := a.canvas.Export()
	defer img.Close()

	writePNG := func(path string) error { return export.WritePNG(path, img) }
	if err := writePNG(a.config.SavePath); err != nil {
		return nil, fmt.Errorf("save canvas: %w", err)
	}
	log.Printf("Canvas saved as %s", a.config.SavePath)

	ops := a.canvas.Journal()
	var snaps []*store.Snapshot
	if snap := a.archive(a.config.SavePath, store.FormatPNG, size, len(ops), writePNG); snap != nil {
		snaps = append(snaps, snap)
	}

	if a.config.PDFPath != "" {
		writePDF := func(path string) error { return export.WritePDF(path, size, ops) }
		if err := writePDF(a.config.PDFPath); err != nil {
			log.Printf("Error exporting PDF: %v", err)
		} else {
			log.Printf("Canvas exported as %s", a.config.PDFPath)
			if snap := a.archive(a.config.PDFPath, store.FormatPDF, size, len(ops), writePDF); snap != nil {
				snaps = append(snaps, snap)
			}
		}
	}

	if a.config.Store != nil {
		for _, snap := range snaps {
			if err := a.config.Store.Snapshots().Create(snap); err != nil {
				log.Printf("Error recording snapshot %s: %v", snap.ID, err)
			}
		}
	}
	return snaps, nil
}

// archive builds the snapshot for an export already written to path. With a
// SnapshotDir the export is written again as <SnapshotDir>/<id>.<format>.
// It returns nil if archiving fails.
func (a *App) archive(path string, format store.SnapshotFormat, size image.Point, ops int, write func(string) error) *store.Snapshot {
	snap := a.newSnapshot(path, format, size, ops)
	if a.config.SnapshotDir == "" {
		return snap
	}

	snap.Path = filepath.Join(a.config.SnapshotDir, snap.ID+"."+string(format))
	if err := write(snap.Path); err != nil {
		log.Printf("Error archiving snapshot %s: %v", snap.ID, err)
		return nil
	}
	return snap
}

func (a *App) newSnapshot(path string, format store.SnapshotFormat, size image.Point, ops int) *store.Snapshot {
	return &store.Snapshot{
		ID:        uuid.New().String(),
		Path:      path,
		Format:    format,
		Width:     size.X,
		Height:    size.Y,
		Ops:       ops,
		CreatedAt: time.Now(),
	}
}

// loadStyle restores the pen style saved by a previous session.
func (a *App) loadStyle() canvas.Style {
	style := canvas.DefaultStyle()
	if a.config.Store == nil {
		return style
	}

	settings := a.config.Store.Settings()
	if hex, err := settings.Get(store.KeyPenColor); err == nil {
		if c, err := canvas.ParseHex(hex); err == nil {
			style.Color = c
		} else {
			log.Printf("Ignoring stored pen color: %v", err)
		}
	} else if !errors.Is(err, store.ErrNotFound) {
		log.Printf("Error loading pen color: %v", err)
	}
	style.Width = canvas.ClampWidth(settings.GetInt(store.KeyPenWidth, style.Width))
	return style
}

// persistStyle saves the current pen style. Failures are logged only.
func (a *App) persistStyle() {
	if a.config.Store == nil {
		return
	}
	style := a.canvas.Style()
	settings := a.config.Store.Settings()
	if err := settings.Set(store.KeyPenColor, canvas.Hex(style.Color)); err != nil {
		log.Printf("Error saving pen color: %v", err)
	}
	if err := settings.SetInt(store.KeyPenWidth, style.Width); err != nil {
		log.Printf("Error saving pen width: %v", err)
	}
}
