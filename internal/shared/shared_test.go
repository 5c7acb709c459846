package shared

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNormalizeDates(t *testing.T) {
	t.Run("Start Of Day", func(t *testing.T) {
		got, err := NormalizeStartDate("2024-03-01")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || *got != "2024-03-01T00:00:00" {
			t.Errorf("expected 2024-03-01T00:00:00, got %v", got)
		}
	})

	t.Run("End Of Day", func(t *testing.T) {
		got, err := NormalizeEndDate("2024-03-05")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got == nil || *got != "2024-03-05T23:59:59" {
			t.Errorf("expected 2024-03-05T23:59:59, got %v", got)
		}
	})

	t.Run("Empty Is Absent", func(t *testing.T) {
		for _, in := range []string{"", "   "} {
			got, err := NormalizeStartDate(in)
			if err != nil || got != nil {
				t.Errorf("NormalizeStartDate(%q) = %v, %v; want nil, nil", in, got, err)
			}
			got, err = NormalizeEndDate(in)
			if err != nil || got != nil {
				t.Errorf("NormalizeEndDate(%q) = %v, %v; want nil, nil", in, got, err)
			}
		}
	})

	t.Run("Invalid Dates", func(t *testing.T) {
		for _, in := range []string{"03/01/2024", "2024-13-01", "2024-03-01T10:00:00", "tomorrow"} {
			if _, err := NormalizeStartDate(in); !errors.Is(err, ErrInvalidInput) {
				t.Errorf("NormalizeStartDate(%q): expected ErrInvalidInput, got %v", in, err)
			}
		}
	})
}

func TestLogger(t *testing.T) {
	t.Run("WithLogger Adds Fields", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "gateway")
		logger.Info("hello")

		if !strings.Contains(buf.String(), "component=gateway") {
			t.Errorf("expected component field in %q", buf.String())
		}
	})

	t.Run("SetLogLevel Filters", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)
		SetLogLevel(logger, log.WarnLevel)
		logger.Info("quiet")

		if buf.Len() != 0 {
			t.Errorf("expected info to be filtered, got %q", buf.String())
		}
	})

	t.Run("NewFileLogger Creates Directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "logs", "tui.log")
		logger, f, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("to file")
		f.Close()

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("failed to read log: %v", err)
		}
		if !strings.Contains(string(data), "to file") {
			t.Errorf("expected log line in file, got %q", data)
		}
	})
}

func TestGenerateID(t *testing.T) {
	a, b := GenerateID(), GenerateID()
	if a == b {
		t.Error("expected distinct ids")
	}
	if len(a) != 36 {
		t.Errorf("expected uuid string length 36, got %d", len(a))
	}
}

func TestMarshalJSON(t *testing.T) {
	v := map[string]int{"a": 1}

	compact, err := MarshalJSON(v, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(compact) != `{"a":1}` {
		t.Errorf("unexpected compact output %s", compact)
	}

	pretty, err := MarshalJSON(v, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(pretty), "\n  \"a\": 1") {
		t.Errorf("unexpected pretty output %s", pretty)
	}

	if _, err := MarshalJSON(make(chan int), false); err == nil {
		t.Error("expected error marshaling a channel")
	}
}
