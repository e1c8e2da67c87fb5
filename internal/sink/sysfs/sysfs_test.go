package sysfs

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestLED builds a fake LED class device in a temp dir and points the
// package root at it.
func newTestLED(t *testing.T, name string, max string) *LED {
	t.Helper()

	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, name), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name, "max_brightness"), []byte(max), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name, "brightness"), []byte("0"), 0o644); err != nil {
		t.Fatal(err)
	}

	old := Root
	Root = dir
	t.Cleanup(func() { Root = old })

	return NewLED(name)
}

func readBrightness(t *testing.T, name string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(Root, name, "brightness"))
	if err != nil {
		t.Fatal(err)
	}
	return string(raw)
}

func TestBeginReadsMaxBrightness(t *testing.T) {
	l := newTestLED(t, "led0", "100\n")
	if err := l.Begin(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.max != 100 {
		t.Errorf("max = %d, want 100", l.max)
	}
	if got := readBrightness(t, "led0"); got != "0" {
		t.Errorf("brightness after Begin = %q, want 0", got)
	}
}

func TestBeginMissingDevice(t *testing.T) {
	old := Root
	Root = t.TempDir()
	t.Cleanup(func() { Root = old })

	if err := NewLED("nope").Begin(); err == nil {
		t.Error("expected error for missing device")
	}
}

func TestBeginBadMaxBrightness(t *testing.T) {
	l := newTestLED(t, "led0", "junk")
	if err := l.Begin(); err == nil {
		t.Error("expected error for unparsable max_brightness")
	}
}

func TestDigitalWriteUsesMax(t *testing.T) {
	l := newTestLED(t, "led0", "100")
	if err := l.Begin(); err != nil {
		t.Fatal(err)
	}

	if err := l.DigitalWrite(true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readBrightness(t, "led0"); got != "100" {
		t.Errorf("brightness = %q, want 100", got)
	}
	if !l.DigitalRead() {
		t.Error("DigitalRead should report on")
	}

	if err := l.DigitalWrite(false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := readBrightness(t, "led0"); got != "0" {
		t.Errorf("brightness = %q, want 0", got)
	}
}

func TestPWMWriteScales(t *testing.T) {
	l := newTestLED(t, "led0", "100")
	if err := l.Begin(); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		level uint8
		want  string
	}{
		{0, "0"},
		{51, "20"},
		{128, "50"},
		{255, "100"},
	}
	for _, tt := range tests {
		if err := l.PWMWrite(tt.level); err != nil {
			t.Fatalf("level %d: unexpected error: %v", tt.level, err)
		}
		if got := readBrightness(t, "led0"); got != tt.want {
			t.Errorf("level %d: brightness = %q, want %q", tt.level, got, tt.want)
		}
	}
}
