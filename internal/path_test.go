package internal

import (
	"path/filepath"
	"testing"
	"time"
)

func TestDestinationPath(t *testing.T) {
	root := filepath.FromSlash("/out")

	testCases := []struct {
		ts       time.Time
		name     string
		expected string
	}{
		{time.Date(2022, time.January, 9, 10, 30, 0, 0, time.Local), "image.jpg", "/out/2022/January/9/image.jpg"},
		{time.Date(2021, time.December, 25, 0, 0, 0, 0, time.Local), "pic.png", "/out/2021/December/25/pic.png"},
		{time.Date(2008, time.May, 30, 15, 56, 1, 0, time.Local), "Canon_40D.jpg", "/out/2008/May/30/Canon_40D.jpg"},
		{time.Date(2024, time.September, 1, 23, 59, 59, 0, time.Local), "nested/dir/a b.JPG", "/out/2024/September/1/a b.JPG"},
		{time.Date(999, time.February, 3, 0, 0, 0, 0, time.Local), "old.tif", "/out/0999/February/3/old.tif"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			expected := filepath.FromSlash(tc.expected)
			got := DestinationPath(root, tc.ts, filepath.FromSlash(tc.name))
			if got != expected {
				t.Errorf("Expected %s, got %s", expected, got)
			}
			if again := DestinationPath(root, tc.ts, filepath.FromSlash(tc.name)); again != got {
				t.Errorf("Expected identical output on second call, got %s then %s", got, again)
			}
		})
	}
}

func TestDestinationPath_UsesTimestampCalendar(t *testing.T) {
	// 2022-01-01 01:00 in UTC+3 is still New Year's Eve in UTC
	zone := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2022, time.January, 1, 1, 0, 0, 0, zone)

	got := DestinationPath("out", ts, "a.jpg")
	expected := filepath.Join("out", "2022", "January", "1", "a.jpg")
	if got != expected {
		t.Errorf("Expected %s, got %s", expected, got)
	}
}
