package internal

import (
    "errors"
    "fmt"
    "time"

    "github.com/spf13/afero"
    "go.uber.org/zap"
)

// ErrTimestampUnavailable means neither metadata nor the filesystem could
// date a file. It is fatal for that file only.
var ErrTimestampUnavailable = errors.New("no timestamp available")

// TimestampSource tells where a CaptureTimestamp came from.
type TimestampSource int

const (
    SourceMetadata TimestampSource = iota
    SourceModTime
)

func (s TimestampSource) String() string {
    if s == SourceMetadata {
        return "metadata"
    }
    return "modtime"
}

// CaptureTimestamp is the best-available date of a file. Fallback holds the
// extraction failure that forced SourceModTime, if any.
type CaptureTimestamp struct {
    Time     time.Time
    Source   TimestampSource
    Fallback error
}

// Resolver picks the embedded capture time and falls back to the mtime.
type Resolver struct {
    fs        afero.Fs
    extractor Extractor
    logger    *zap.Logger
}

// NewResolver returns a Resolver. A nil extractor dates every file by mtime.
func NewResolver(fsys afero.Fs, extractor Extractor, logger *zap.Logger) *Resolver {
    if logger == nil {
        logger = zap.NewNop()
    }
    return &Resolver{fs: fsys, extractor: extractor, logger: logger}
}

func (r *Resolver) Resolve(path string) (CaptureTimestamp, error) {
    var extractErr error
    if r.extractor != nil {
        t, err := r.extractor.Extract(path)
        if err == nil {
            r.logger.Debug("capture date from metadata", zap.String("file", path), zap.Time("date", t))
            return CaptureTimestamp{Time: t, Source: SourceMetadata}, nil
        }
        extractErr = err
        if kind := ExtractKind(err); kind != KindUnsupportedFormat {
            r.logger.Warn("could not read capture date, using file modified time",
                zap.String("file", path), zap.Stringer("reason", kind), zap.Error(err))
        }
    }

    t, err := getFileModTime(r.fs, path)
    if err != nil {
        return CaptureTimestamp{}, fmt.Errorf("%w: %s: %w", ErrTimestampUnavailable, path, err)
    }
    r.logger.Debug("capture date from file modified time", zap.String("file", path), zap.Time("date", t))
    return CaptureTimestamp{Time: t, Source: SourceModTime, Fallback: extractErr}, nil
}

// getFileModTime fallback to file modification time
func getFileModTime(fsys afero.Fs, path string) (time.Time, error) {
    fi, err := fsys.Stat(path)
    if err != nil {
        return time.Time{}, err
    }
    return fi.ModTime(), nil
}
