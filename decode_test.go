package colorquant

import (
	"bytes"
	"errors"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestDecodeImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, testImage2x2()); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	m, format, err := DecodeImage(path)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" {
		t.Errorf("format = %q, want png", format)
	}
	if m.W != 2 || m.H != 2 {
		t.Fatalf("matrix size = %dx%d, want 2x2", m.W, m.H)
	}
	if got := m.At(1, 1); got != (Color{0, 0, 255, 128}) {
		t.Errorf("At(1, 1) = %v, want rgba(0,0,255,128)", got)
	}
}

func TestDecodeImageMissingFile(t *testing.T) {
	_, _, err := DecodeImage(filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("DecodeImage on a missing file = %v, want fs.ErrNotExist", err)
	}
}

func TestDecodeImageMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := DecodeImage(path); err == nil {
		t.Fatal("DecodeImage on junk bytes returned nil error")
	}
}

func TestDecodeImageReader(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage2x2()); err != nil {
		t.Fatal(err)
	}
	m, format, err := DecodeImageReader(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if format != "png" || m.W != 2 || m.H != 2 {
		t.Errorf("got format %q, size %dx%d", format, m.W, m.H)
	}
}
