package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"photosort/internal"
	"photosort/internal/imagetest"
)

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path string, data []byte, mtime time.Time) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestSort_EndToEnd(t *testing.T) {
	tempDir := t.TempDir()
	inputDir := filepath.Join(tempDir, "input")
	outputDir := filepath.Join(tempDir, "output")
	mtime := time.Date(2021, time.December, 25, 12, 0, 0, 0, time.Local)

	writeFile(t, filepath.Join(inputDir, "image.jpg"),
		imagetest.JPEG(imagetest.WithDateTimeOriginal("2022:01:09 10:30:00")), mtime)
	writeFile(t, filepath.Join(inputDir, "nested", "pic.png"), imagetest.PNG(nil), mtime)

	out, err := runRoot(t, "-s", inputDir, "-t", outputDir)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if !strings.Contains(out, "Found 2 files") {
		t.Errorf("Expected file count in output, got:\n%s", out)
	}
	if !strings.Contains(out, "Copied 2 files") {
		t.Errorf("Expected 2 copies in output, got:\n%s", out)
	}

	for _, rel := range []string{"2022/January/9/image.jpg", "2021/December/25/pic.png"} {
		if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("Expected %s in output: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(inputDir, "image.jpg")); err != nil {
		t.Errorf("Source should be left in place: %v", err)
	}

	// a rerun copies nothing
	out, err = runRoot(t, "--source-dir", inputDir, "--target-dir", outputDir)
	if err != nil {
		t.Fatalf("Second sort failed: %v", err)
	}
	if !strings.Contains(out, "Copied 0 files") || !strings.Contains(out, "Skipped copying 2 files") {
		t.Errorf("Expected everything skipped on rerun, got:\n%s", out)
	}
}

func TestSort_NestedTargetNotRescanned(t *testing.T) {
	tempDir := t.TempDir()
	inputDir := filepath.Join(tempDir, "photos")
	outputDir := filepath.Join(inputDir, "sorted")
	mtime := time.Date(2020, time.March, 1, 9, 0, 0, 0, time.Local)

	writeFile(t, filepath.Join(inputDir, "a.jpg"), []byte("plain bytes"), mtime)
	writeFile(t, filepath.Join(outputDir, "2019", "May", "1", "old.jpg"), []byte("already sorted"), mtime)

	out, err := runRoot(t, "-s", inputDir, "-t", outputDir)
	if err != nil {
		t.Fatalf("Sort failed: %v", err)
	}
	if !strings.Contains(out, "Found 1 files") {
		t.Errorf("Expected the target tree to be excluded from the scan, got:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(outputDir, "2020", "March", "1", "old.jpg")); !os.IsNotExist(err) {
		t.Error("Sorted files should not be sorted again")
	}
}

func TestSort_Errors(t *testing.T) {
	tempDir := t.TempDir()
	inputDir := filepath.Join(tempDir, "input")
	os.MkdirAll(inputDir, 0755)
	notDir := filepath.Join(tempDir, "file.txt")
	os.WriteFile(notDir, []byte("x"), 0644)

	testCases := []struct {
		name     string
		args     []string
		expected string
	}{
		{"missing target", []string{"-s", inputDir}, "--target-dir"},
		{"missing source", []string{"-t", filepath.Join(tempDir, "out")}, "--source-dir"},
		{"source does not exist", []string{"-s", filepath.Join(tempDir, "nope"), "-t", filepath.Join(tempDir, "out")}, "does not exist"},
		{"source is a file", []string{"-s", notDir, "-t", filepath.Join(tempDir, "out")}, "not a directory"},
		{"same directories", []string{"-s", inputDir, "-t", inputDir}, "same"},
		{"unknown flag", []string{"--move"}, "unknown flag"},
		{"positional argument", []string{"-s", inputDir, "-t", tempDir, "extra"}, "unknown command"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := runRoot(t, tc.args...)
			if err == nil {
				t.Fatal("Expected an error")
			}
			if !strings.Contains(err.Error(), tc.expected) {
				t.Errorf("Expected error mentioning %q, got %v", tc.expected, err)
			}
		})
	}
}

func TestSort_Version(t *testing.T) {
	for _, flag := range []string{"-V", "--version"} {
		out, err := runRoot(t, flag)
		if err != nil {
			t.Fatalf("%s failed: %v", flag, err)
		}
		if out != "photosort "+Version+"\n" {
			t.Errorf("Expected version line, got %q", out)
		}
	}
}

func TestNestedTarget(t *testing.T) {
	testCases := []struct {
		source   string
		target   string
		expected []string
	}{
		{"/photos", "/photos/sorted", []string{filepath.FromSlash("/photos/sorted")}},
		{"/photos", "/sorted", nil},
		{"/photos", "/photos-sorted", nil},
		{"/photos/in", "/photos", nil},
	}

	for _, tc := range testCases {
		conf := &internal.Config{SourceDir: filepath.FromSlash(tc.source), TargetDir: filepath.FromSlash(tc.target)}
		got := nestedTarget(conf)
		if len(got) != len(tc.expected) || (len(got) == 1 && got[0] != tc.expected[0]) {
			t.Errorf("%s in %s: expected %v, got %v", tc.target, tc.source, tc.expected, got)
		}
	}
}
