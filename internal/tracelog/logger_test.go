package tracelog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLogger_DisabledIsNoop(t *testing.T) {
	l, err := NewLogger(LogConfig{Enabled: false})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	l.Log(EventLifecycle, "CREATE_CONTEXT", 1, nil)
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var nilLogger *Logger
	nilLogger.Log(EventDraw, "DRAW_ARRAYS", 1, nil)
}

func TestLogger_WritesSortedDetailsAndFiltersLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	l, err := NewLogger(LogConfig{Enabled: true, Level: LevelInfo, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Log(EventDraw, "DRAW_ARRAYS", 3, map[string]interface{}{"count": 5})
	l.Log(EventLifecycle, "CREATE_CONTEXT", 3, map[string]interface{}{
		"version": 1,
		"config":  "0",
		"handle":  7,
	})

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "DRAW_ARRAYS") {
		t.Fatalf("debug event should be filtered at info level: %q", out)
	}
	want := `[LIFECYCLE] session=3 call=CREATE_CONTEXT config="0" handle=7 version=1`
	if !strings.Contains(out, want) {
		t.Fatalf("expected %q in %q", want, out)
	}
}

func TestLogger_Rotates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.log")
	if err := os.WriteFile(path, make([]byte, 1024*1024), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	l, err := NewLogger(LogConfig{Enabled: true, Level: LevelDebug, FilePath: path, MaxSizeMB: 1, MaxFiles: 2})
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	defer l.Close()

	l.Log(EventSession, "OPEN", 1, nil)

	if _, err := os.Stat(path + ".1"); err != nil {
		t.Fatalf("expected rotated file: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() == 0 || info.Size() >= 1024*1024 {
		t.Fatalf("expected a fresh log file, got size %d", info.Size())
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		"error":   LevelError,
		"bogus":   LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLogLevel(in); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
