package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/backmassage/clipstitch/internal/config"
)

func TestNewLogger_NoFile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LogFile = ""
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	l.Info("test message")
}

func TestNewLogger_WithFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.LogFile = filepath.Join(dir, "clipstitch.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Info("to file")
	l.Outlier("possible duplicate")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}
	b, _ := os.ReadFile(cfg.LogFile)
	if !bytes.Contains(b, []byte("INFO")) || !bytes.Contains(b, []byte("to file")) {
		t.Errorf("log file content: %s", string(b))
	}
	if !bytes.Contains(b, []byte("OUTLIER")) {
		t.Errorf("log file missing OUTLIER line: %s", string(b))
	}
}

func TestDebug_SuppressedAtQuiet(t *testing.T) {
	dir := t.TempDir()

	cfg := config.DefaultConfig() // Verbosity: "quiet"
	cfg.LogFile = filepath.Join(dir, "quiet.log")
	l, err := NewLogger(&cfg)
	if err != nil {
		t.Fatal(err)
	}
	l.Debug("hidden")
	l.Close()
	b, _ := os.ReadFile(cfg.LogFile)
	if bytes.Contains(b, []byte("hidden")) {
		t.Error("debug line should be suppressed at quiet verbosity")
	}

	cfg2 := config.DefaultConfig()
	cfg2.Verbosity = "info"
	cfg2.LogFile = filepath.Join(dir, "info.log")
	l2, err := NewLogger(&cfg2)
	if err != nil {
		t.Fatal(err)
	}
	l2.Debug("visible")
	l2.Close()
	b2, _ := os.ReadFile(cfg2.LogFile)
	if !bytes.Contains(b2, []byte("visible")) {
		t.Error("debug line should be written at info verbosity")
	}
}
