package internal

import (
    "fmt"
    "io"
    "os"
    "path/filepath"
    "strings"

    "github.com/gabriel-vasile/mimetype"
    "github.com/spf13/afero"
)

// ContainerType is the image container a source file was sniffed as.
// Only JPEG, PNG and TIFF carry metadata we know how to read.
type ContainerType int

const (
    ContainerUnsupported ContainerType = iota
    ContainerJPEG
    ContainerPNG
    ContainerTIFF
)

func (c ContainerType) String() string {
    switch c {
    case ContainerJPEG:
        return "jpeg"
    case ContainerPNG:
        return "png"
    case ContainerTIFF:
        return "tiff"
    default:
        return "unsupported"
    }
}

var containerByMIME = map[string]ContainerType{
    "image/jpeg": ContainerJPEG,
    "image/png":  ContainerPNG,
    "image/tiff": ContainerTIFF,
}

var containerByExt = map[string]ContainerType{
    ".jpg":  ContainerJPEG,
    ".jpeg": ContainerJPEG,
    ".jpe":  ContainerJPEG,
    ".png":  ContainerPNG,
    ".tif":  ContainerTIFF,
    ".tiff": ContainerTIFF,
}

// DetectContainer sniffs the magic bytes at the start of r. When the content
// is inconclusive the extension of name decides.
func DetectContainer(r io.Reader, name string) ContainerType {
    mtype, err := mimetype.DetectReader(r)
    if err == nil && mtype != nil && mtype.String() != "application/octet-stream" {
        for m, c := range containerByMIME {
            if mtype.Is(m) {
                return c
            }
        }
        return ContainerUnsupported
    }
    return containerByExt[strings.ToLower(filepath.Ext(name))]
}

// ScanFiles walks root in lexical order and returns every regular file below
// it. Entries that cannot be read are skipped and counted; only a failure on
// root itself is returned as an error. Directories listed in exclude are not
// descended into.
func ScanFiles(fsys afero.Fs, root string, exclude ...string) ([]string, int, error) {
    var files []string
    scanErrors := 0

    skip := make(map[string]bool, len(exclude))
    for _, e := range exclude {
        skip[filepath.Clean(e)] = true
    }

    root = filepath.Clean(root)
    err := afero.Walk(fsys, root, func(path string, info os.FileInfo, err error) error {
        if err != nil {
            if path == root {
                return err
            }
            scanErrors++
            if info != nil && info.IsDir() {
                return filepath.SkipDir
            }
            return nil
        }
        if info.IsDir() {
            if path != root && skip[path] {
                return filepath.SkipDir
            }
            return nil
        }
        if info.Mode().IsRegular() {
            files = append(files, path)
        }
        return nil
    })
    if err != nil {
        return nil, scanErrors, fmt.Errorf("error scanning files: %w", err)
    }
    return files, scanErrors, nil
}
