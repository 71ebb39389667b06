package internal

import (
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

// Sorter runs resolve → destination → place for each file. Every file is
// independent: a failure is recorded in its Placement and never stops the
// batch.
type Sorter struct {
	resolver   *Resolver
	targetRoot string
	logger     *zap.Logger
}

func NewSorter(resolver *Resolver, targetRoot string, logger *zap.Logger) *Sorter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sorter{resolver: resolver, targetRoot: targetRoot, logger: logger}
}

// SortFile sorts a single file into the target tree.
func (s *Sorter) SortFile(path string) Placement {
	ts, err := s.resolver.Resolve(path)
	if err != nil {
		s.logger.Error("failed to date file", zap.String("file", path), zap.Error(err))
		return Placement{Outcome: OutcomeFailed, Source: path, Err: err}
	}

	dest := DestinationPath(s.targetRoot, ts.Time, filepath.Base(path))
	p := Place(path, dest)
	p.Timestamp = ts

	switch p.Outcome {
	case OutcomeCopied:
		s.logger.Info("copied", zap.String("file", path), zap.String("dest", dest),
			zap.Stringer("date_source", ts.Source))
	case OutcomeSkipped:
		if p.SizeMismatch {
			s.logger.Warn("a different file with the same name and date is already present, not copied",
				zap.String("file", path), zap.String("dest", dest))
		} else {
			s.logger.Info("skipped, already present", zap.String("file", path), zap.String("dest", dest))
		}
	case OutcomeFailed:
		s.logger.Error("failed to copy", zap.String("file", path), zap.String("dest", dest), zap.Error(p.Err))
	}
	return p
}

// SortAll sorts files one after another and returns the run summary.
func (s *Sorter) SortAll(files []string) *Summary {
	start := time.Now()
	summary := NewSummary()
	for _, f := range files {
		summary.Record(s.SortFile(f))
	}
	summary.Duration = time.Since(start)
	return summary
}
