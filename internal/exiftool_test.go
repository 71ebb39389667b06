package internal

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"photosort/internal/imagetest"
)

func newTestExiftool(t *testing.T) *ExiftoolExtractor {
	t.Helper()
	if _, err := exec.LookPath("exiftool"); err != nil {
		t.Skip("exiftool not installed")
	}
	et, err := NewExiftoolExtractor()
	if err != nil {
		t.Fatalf("NewExiftoolExtractor failed: %v", err)
	}
	t.Cleanup(func() { et.Close() })
	return et
}

func TestExiftoolExtractor_Extract(t *testing.T) {
	et := newTestExiftool(t)
	tempDir := t.TempDir()

	valid := filepath.Join(tempDir, "valid.jpg")
	noexif := filepath.Join(tempDir, "noexif.jpg")
	notes := filepath.Join(tempDir, "notes.txt")
	for path, data := range map[string][]byte{
		valid:  imagetest.JPEG(imagetest.WithDateTimeOriginal("2022:01:09 10:30:00")),
		noexif: imagetest.JPEG(nil),
		notes:  []byte("not an image"),
	} {
		if err := os.WriteFile(path, data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := et.Extract(valid)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	expected := time.Date(2022, time.January, 9, 10, 30, 0, 0, time.Local)
	if !got.Equal(expected) {
		t.Errorf("Expected %v, got %v", expected, got)
	}

	if _, err := et.Extract(noexif); ExtractKind(err) != KindTagMissing {
		t.Errorf("Expected %v, got %v", KindTagMissing, err)
	}
	if _, err := et.Extract(notes); ExtractKind(err) != KindUnsupportedFormat {
		t.Errorf("Expected %v, got %v", KindUnsupportedFormat, err)
	}
	if _, err := et.Extract(filepath.Join(tempDir, "missing.jpg")); ExtractKind(err) != KindIO {
		t.Errorf("Expected %v, got %v", KindIO, err)
	}
}
