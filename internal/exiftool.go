package internal

import (
    "errors"
    "fmt"
    "strings"
    "time"

    "github.com/barasher/go-exiftool"
    "github.com/spf13/afero"
)

// ExiftoolExtractor reads DateTimeOriginal through a long-running exiftool
// process. It handles vendor quirks goexif does not, at the cost of needing
// the exiftool binary on PATH.
type ExiftoolExtractor struct {
    fs afero.Fs
    et *exiftool.Exiftool
}

func NewExiftoolExtractor() (*ExiftoolExtractor, error) {
    et, err := exiftool.NewExiftool()
    if err != nil {
        return nil, fmt.Errorf("failed to start exiftool: %w", err)
    }
    return &ExiftoolExtractor{fs: afero.NewOsFs(), et: et}, nil
}

func (e *ExiftoolExtractor) Extract(path string) (time.Time, error) {
    f, err := e.fs.Open(path)
    if err != nil {
        return time.Time{}, &ExtractError{Kind: KindIO, Path: path, Err: err}
    }
    container := DetectContainer(f, path)
    f.Close()
    if container == ContainerUnsupported {
        return time.Time{}, &ExtractError{Kind: KindUnsupportedFormat, Path: path}
    }

    infos := e.et.ExtractMetadata(path)
    if len(infos) == 0 {
        return time.Time{}, &ExtractError{Kind: KindNoMetadata, Path: path}
    }
    fi := infos[0]
    if fi.Err != nil {
        return time.Time{}, &ExtractError{Kind: KindNoMetadata, Path: path, Err: fi.Err}
    }

    s, err := fi.GetString("DateTimeOriginal")
    if err != nil {
        if errors.Is(err, exiftool.ErrKeyNotFound) {
            return time.Time{}, &ExtractError{Kind: KindTagMissing, Path: path, Err: err}
        }
        return time.Time{}, &ExtractError{Kind: KindMalformedValue, Path: path, Err: err}
    }
    // exiftool may append sub-seconds or a zone to the value
    s = strings.TrimSpace(s)
    if len(s) > len(exifDateLayout) {
        s = s[:len(exifDateLayout)]
    }
    t, err := parseExifDate(s)
    if err != nil {
        return time.Time{}, &ExtractError{Kind: KindMalformedValue, Path: path, Err: err}
    }
    return t, nil
}

func (e *ExiftoolExtractor) Close() error {
    return e.et.Close()
}
