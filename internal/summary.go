package internal

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// Summary aggregates placements of one run. It is not safe for concurrent use;
// the batch driver owns it.
type Summary struct {
	Copied      int
	CopiedBytes int64
	Skipped     int
	ScanErrors  int
	Mismatched  []Placement              // skipped, but existing file differs in size
	Fallbacks   map[ExtractErrorKind]int // dated by mtime, by reason
	Unreadable  []Placement              // the placements counted in Fallbacks
	Failed      []*ProcessError
	ByCategory  map[ErrorCategory]int
	Duration    time.Duration
}

func NewSummary() *Summary {
	return &Summary{
		Fallbacks:  make(map[ExtractErrorKind]int),
		ByCategory: make(map[ErrorCategory]int),
	}
}

// Record adds one placement to the totals.
func (s *Summary) Record(p Placement) {
	switch p.Outcome {
	case OutcomeCopied:
		s.Copied++
		s.CopiedBytes += p.Bytes
	case OutcomeSkipped:
		s.Skipped++
		if p.SizeMismatch {
			s.Mismatched = append(s.Mismatched, p)
		}
	case OutcomeFailed:
		procErr := CategorizeError(p.Source, p.Err)
		s.Failed = append(s.Failed, procErr)
		s.ByCategory[procErr.Category]++
		return
	}
	if p.Timestamp.Source == SourceModTime && p.Timestamp.Fallback != nil {
		if kind := ExtractKind(p.Timestamp.Fallback); kind != KindUnsupportedFormat {
			s.Fallbacks[kind]++
			s.Unreadable = append(s.Unreadable, p)
		}
	}
}

// Total is the number of files that went through the pipeline.
func (s *Summary) Total() int {
	return s.Copied + s.Skipped + len(s.Failed)
}

// Display renders the end-of-run report. Colour follows fatih/color's
// NO_COLOR and terminal detection.
func (s *Summary) Display() string {
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	var b strings.Builder
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %d files in %s\n", green("Processed"), s.Total(), s.Duration.Round(time.Millisecond))
	fmt.Fprintf(&b, "%s %d files totalling %s\n", green("Copied"), s.Copied, humanize.Bytes(uint64(s.CopiedBytes)))

	if s.Skipped > 0 {
		fmt.Fprintf(&b, "%s copying %d files since they were already present at the target\n", cyan("Skipped"), s.Skipped)
	}
	if len(s.Mismatched) > 0 {
		fmt.Fprintf(&b, "%s %d of them exist at the target with a different size and were not copied - \n", yellow("Warning"), len(s.Mismatched))
		for _, p := range s.Mismatched {
			fmt.Fprintf(&b, "%s -> %s\n", p.Source, p.Destination)
		}
	}

	if n := s.fallbackCount(); n > 0 {
		fmt.Fprintf(&b, "%s reading the capture date for %d files. They were sorted by file modified time (%s) - \n",
			yellow("Warning"), n, s.fallbackBreakdown())
		for _, p := range s.Unreadable {
			fmt.Fprintf(&b, "%s -> %s (%s)\n", p.Source, p.Destination, ExtractKind(p.Timestamp.Fallback))
		}
	}

	if s.ScanErrors > 0 {
		fmt.Fprintf(&b, "%s to scan %d files.\n", red("Failed"), s.ScanErrors)
	}

	if len(s.Failed) > 0 {
		fmt.Fprintf(&b, "%s to copy %d files (%s). The following files were not copied - \n",
			red("Failed"), len(s.Failed), s.categoryBreakdown())
		for _, e := range s.Failed {
			fmt.Fprintf(&b, "%s\n", e.FilePath)
			fmt.Fprintf(&b, "   Category: %s | Severity: %s\n", e.Category, e.Severity)
			fmt.Fprintf(&b, "   Error: %v\n", e.OriginalErr)
			if e.Suggestion != "" {
				fmt.Fprintf(&b, "   Suggestion: %s\n", e.Suggestion)
			}
		}
	}
	return b.String()
}

func (s *Summary) categoryBreakdown() string {
	cats := make([]string, 0, len(s.ByCategory))
	for c := range s.ByCategory {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)

	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, fmt.Sprintf("%s: %d", c, s.ByCategory[ErrorCategory(c)]))
	}
	return strings.Join(parts, ", ")
}

func (s *Summary) fallbackCount() int {
	n := 0
	for _, c := range s.Fallbacks {
		n += c
	}
	return n
}

func (s *Summary) fallbackBreakdown() string {
	kinds := make([]ExtractErrorKind, 0, len(s.Fallbacks))
	for k := range s.Fallbacks {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	parts := make([]string, 0, len(kinds))
	for _, k := range kinds {
		parts = append(parts, fmt.Sprintf("%s: %d", k, s.Fallbacks[k]))
	}
	return strings.Join(parts, ", ")
}
