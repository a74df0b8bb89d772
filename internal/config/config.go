// Package config holds runtime settings for the fingerboard commands.
// Settings come from defaults overlaid with FINGERBOARD_* environment
// variables; the commands take no arguments.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Defaults.
const (
	DefaultCameraID = 0
	DefaultFPS      = 30
	DefaultSavePath = "whiteboard.png"
	DefaultAddr     = "127.0.0.1:8080"
	DefaultDirName  = ".fingerboard"
	DefaultDBName   = "fingerboard.db"
)

// Config holds settings shared by all variants.
type Config struct {
	// CameraID is the capture device index.
	CameraID int
	// FPS paces the tick loop.
	FPS int
	// SavePath is where the canvas PNG is written on save.
	SavePath string
	// ExportPDF also writes a vector PDF next to SavePath.
	ExportPDF bool
	// DataDir holds the settings/snapshot database.
	DataDir string
	// Addr is the viewer server listen address; empty disables the server.
	Addr string
	// WebDir, when set, is served at / next to the viewer API.
	WebDir string
	// Advertise announces the viewer server over mDNS.
	Advertise bool
	// MotionThreshold gates landmark detection on frame motion (percent of
	// changed pixels). Zero disables the gate.
	MotionThreshold float64
}

// Default returns the built-in settings.
func Default() Config {
	dataDir := DefaultDirName
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, DefaultDirName)
	}

	return Config{
		CameraID: DefaultCameraID,
		FPS:      DefaultFPS,
		SavePath: DefaultSavePath,
		DataDir:  dataDir,
		Addr:     DefaultAddr,
	}
}

// Load returns Default overlaid with the environment.
func Load() (Config, error) {
	return FromEnv(os.Getenv)
}

// FromEnv returns Default overlaid with values from getenv.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("FINGERBOARD_CAMERA"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 0 {
			return cfg, fmt.Errorf("FINGERBOARD_CAMERA: invalid device %q", v)
		}
		cfg.CameraID = id
	}
	if v := getenv("FINGERBOARD_FPS"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil || fps <= 0 {
			return cfg, fmt.Errorf("FINGERBOARD_FPS: invalid rate %q", v)
		}
		cfg.FPS = fps
	}
	if v := getenv("FINGERBOARD_SAVE_PATH"); v != "" {
		cfg.SavePath = v
	}
	if v := getenv("FINGERBOARD_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v, ok := lookup(getenv, "FINGERBOARD_ADDR"); ok {
		cfg.Addr = v
	}
	if v := getenv("FINGERBOARD_WEB_DIR"); v != "" {
		cfg.WebDir = v
	}
	if v := getenv("FINGERBOARD_PDF"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("FINGERBOARD_PDF: %w", err)
		}
		cfg.ExportPDF = b
	}
	if v := getenv("FINGERBOARD_MDNS"); v != "" {
		b, err := parseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("FINGERBOARD_MDNS: %w", err)
		}
		cfg.Advertise = b
	}
	if v := getenv("FINGERBOARD_MOTION"); v != "" {
		th, err := strconv.ParseFloat(v, 64)
		if err != nil || th < 0 {
			return cfg, fmt.Errorf("FINGERBOARD_MOTION: invalid threshold %q", v)
		}
		cfg.MotionThreshold = th
	}

	return cfg, nil
}

// DBPath returns the settings/snapshot database location.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, DefaultDBName)
}

// PDFPath returns the PDF export path derived from SavePath.
func (c Config) PDFPath() string {
	return strings.TrimSuffix(c.SavePath, filepath.Ext(c.SavePath)) + ".pdf"
}

// SnapshotDir returns where each save is archived under its snapshot id.
func (c Config) SnapshotDir() string {
	return filepath.Join(c.DataDir, "snapshots")
}

// EnsureDataDir creates DataDir if needed.
func (c Config) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}
	return nil
}

// lookup distinguishes "set to empty" from "unset" for variables where an
// empty value is meaningful. "off" is accepted as an explicit empty value.
func lookup(getenv func(string) string, key string) (string, bool) {
	v := getenv(key)
	if v == "" {
		return "", false
	}
	if v == "off" || v == "-" {
		return "", true
	}
	return v, true
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", v)
}
