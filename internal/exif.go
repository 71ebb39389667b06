package internal

import (
    "bytes"
    "errors"
    "fmt"
    "io"
    "io/fs"
    "strings"
    "time"

    "github.com/rwcarlsen/goexif/exif"
    "github.com/spf13/afero"
)

// exifDateLayout is the layout of EXIF DateTime* ASCII values.
const exifDateLayout = "2006:01:02 15:04:05"

// ExtractErrorKind classifies why no capture timestamp could be read.
type ExtractErrorKind int

const (
    KindUnsupportedFormat ExtractErrorKind = iota + 1
    KindNoMetadata
    KindTagMissing
    KindMalformedValue
    KindIO
)

func (k ExtractErrorKind) String() string {
    switch k {
    case KindUnsupportedFormat:
        return "unsupported_format"
    case KindNoMetadata:
        return "no_metadata"
    case KindTagMissing:
        return "tag_missing"
    case KindMalformedValue:
        return "malformed_value"
    case KindIO:
        return "io_error"
    default:
        return "unknown"
    }
}

// ExtractError is returned by an Extractor when a file yields no capture
// timestamp. It is never fatal: the resolver falls back to the mtime.
type ExtractError struct {
    Kind ExtractErrorKind
    Path string
    Err  error
}

func (e *ExtractError) Error() string {
    if e.Err == nil {
        return fmt.Sprintf("%s: %s", e.Kind, e.Path)
    }
    return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// ExtractKind reports the kind of an extraction failure, or 0 if err is not
// an *ExtractError.
func ExtractKind(err error) ExtractErrorKind {
    var ee *ExtractError
    if errors.As(err, &ee) {
        return ee.Kind
    }
    return 0
}

// Extractor reads the embedded original capture time of a file.
// Failures are reported as *ExtractError.
type Extractor interface {
    Extract(path string) (time.Time, error)
}

// ExifExtractor reads DateTimeOriginal with goexif. It never decodes pixels.
type ExifExtractor struct {
    fs afero.Fs
}

func NewExifExtractor(fsys afero.Fs) *ExifExtractor {
    return &ExifExtractor{fs: fsys}
}

func (e *ExifExtractor) Extract(path string) (time.Time, error) {
    f, err := e.fs.Open(path)
    if err != nil {
        return time.Time{}, &ExtractError{Kind: KindIO, Path: path, Err: err}
    }
    defer f.Close()

    container := DetectContainer(f, path)
    if _, err := f.Seek(0, io.SeekStart); err != nil {
        return time.Time{}, &ExtractError{Kind: KindIO, Path: path, Err: err}
    }

    var block []byte
    switch container {
    case ContainerJPEG:
        block, err = readJPEGExif(f)
    case ContainerPNG:
        block, err = readPNGExif(f)
    case ContainerTIFF:
        block, err = readTIFF(f)
    default:
        return time.Time{}, &ExtractError{Kind: KindUnsupportedFormat, Path: path}
    }
    if err == nil {
        err = checkTIFFBounds(block)
    }
    var x *exif.Exif
    if err == nil {
        x, err = decodeExif(block)
    }
    if err != nil {
        return time.Time{}, &ExtractError{Kind: decodeErrorKind(err), Path: path, Err: err}
    }

    tag, err := x.Get(exif.DateTimeOriginal)
    if err != nil {
        return time.Time{}, &ExtractError{Kind: KindTagMissing, Path: path, Err: err}
    }
    s, err := tag.StringVal()
    if err != nil {
        return time.Time{}, &ExtractError{Kind: KindMalformedValue, Path: path, Err: err}
    }
    t, err := parseExifDate(s)
    if err != nil {
        return time.Time{}, &ExtractError{Kind: KindMalformedValue, Path: path, Err: err}
    }
    return t, nil
}

// decodeExif decodes a TIFF block that already passed checkTIFFBounds. It
// tolerates non-critical goexif errors, which still return a usable
// (partially populated) *Exif, and turns goexif panics into errors.
func decodeExif(block []byte) (x *exif.Exif, err error) {
    defer func() {
        if r := recover(); r != nil {
            x, err = nil, fmt.Errorf("exif: decoder panic: %v", r)
        }
    }()

    x, err = exif.Decode(bytes.NewReader(block))
    if err != nil {
        if x != nil && !exif.IsCriticalError(err) {
            return x, nil
        }
        return nil, err
    }
    return x, nil
}

// ioFailure marks read errors that are not just "ran out of bytes".
type ioFailure struct{ err error }

func (e ioFailure) Error() string { return e.err.Error() }
func (e ioFailure) Unwrap() error { return e.err }

func decodeErrorKind(err error) ExtractErrorKind {
    var iof ioFailure
    var pe *fs.PathError
    if errors.As(err, &iof) || errors.As(err, &pe) {
        return KindIO
    }
    return KindNoMetadata
}

// parseExifDate parses an EXIF date as local time. Cameras pad the value
// with spaces or trailing NULs now and then.
func parseExifDate(s string) (time.Time, error) {
    s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
    return time.ParseInLocation(exifDateLayout, s, time.Local)
}
