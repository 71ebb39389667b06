package internal

import (
    "errors"
    "fmt"
    "io"
    "io/fs"
    "os"
    "path/filepath"
)

// Replaceable so tests can simulate filesystems without hard links or a
// failing rename.
var (
    linkFunc   = os.Link
    renameFunc = os.Rename
)

// Outcome of placing one file.
type Outcome int

const (
    OutcomeCopied Outcome = iota
    OutcomeSkipped
    OutcomeFailed
)

func (o Outcome) String() string {
    switch o {
    case OutcomeCopied:
        return "copied"
    case OutcomeSkipped:
        return "skipped"
    default:
        return "failed"
    }
}

// Placement is the result of sorting a single source file.
type Placement struct {
    Outcome     Outcome
    Source      string
    Destination string
    Bytes       int64
    // SizeMismatch is set on skips where the file already at Destination has
    // a different size than Source: likely a different photo with the same
    // name and date.
    SizeMismatch bool
    Timestamp    CaptureTimestamp
    Err          error
}

// PathTypeConflictError means the destination exists but is not a regular file.
type PathTypeConflictError struct {
    Path string
    Got  string
}

func (e *PathTypeConflictError) Error() string {
    return fmt.Sprintf("destination %s exists and is a %s, not a file", e.Path, e.Got)
}

// Place copies src to dest unless something already exists at dest. The
// source is never modified. A partially written copy is never visible under
// dest: data goes to a temp file that is only linked into place once
// complete, so concurrent placements of the same dest yield one copy.
func Place(src, dest string) Placement {
    p := Placement{Source: src, Destination: dest}
    fail := func(err error) Placement {
        p.Outcome = OutcomeFailed
        p.Err = err
        return p
    }

    destDir := filepath.Dir(dest)
    if err := os.MkdirAll(destDir, 0755); err != nil {
        return fail(fmt.Errorf("failed to create directory %s: %w", destDir, err))
    }

    if skipped, err := checkExisting(&p); err != nil {
        return fail(err)
    } else if skipped {
        return p
    }

    n, err := copyFileAtomic(src, dest)
    switch {
    case errors.Is(err, fs.ErrExist):
        // another placement won the race for dest
        p.Outcome = OutcomeSkipped
        return p
    case err != nil:
        return fail(fmt.Errorf("failed to copy file %s to %s: %w", src, dest, err))
    }
    p.Outcome = OutcomeCopied
    p.Bytes = n
    return p
}

// checkExisting marks p skipped if its destination exists.
func checkExisting(p *Placement) (bool, error) {
    fi, err := os.Lstat(p.Destination)
    if errors.Is(err, fs.ErrNotExist) {
        return false, nil
    } else if err != nil {
        return false, fmt.Errorf("failed to stat %s: %w", p.Destination, err)
    }
    if fi.IsDir() {
        return false, &PathTypeConflictError{Path: p.Destination, Got: "directory"}
    }
    p.Outcome = OutcomeSkipped
    if si, err := os.Stat(p.Source); err == nil && fi.Mode().IsRegular() {
        p.SizeMismatch = si.Size() != fi.Size()
    }
    return true, nil
}

// copyFileAtomic copies a file atomically (copy temp → link). It returns an
// error matching fs.ErrExist if dest appeared in the meantime.
func copyFileAtomic(src, dest string) (int64, error) {
    in, err := os.Open(src)
    if err != nil {
        return 0, err
    }
    defer in.Close()

    si, err := in.Stat()
    if err != nil {
        return 0, err
    }

    dir, name := filepath.Split(dest)
    tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
    if err != nil {
        return 0, err
    }
    tmpName := tmp.Name()
    defer func() {
        _ = tmp.Close()
        _ = os.Remove(tmpName)
    }()

    n, err := io.Copy(tmp, in)
    if err != nil {
        return 0, err
    }
    if err := tmp.Chmod(si.Mode().Perm()); err != nil {
        return 0, err
    }
    if err := tmp.Sync(); err != nil {
        return 0, err
    }
    if err := tmp.Close(); err != nil {
        return 0, err
    }
    // best-effort: keeps the mtime fallback stable if the tree is sorted again
    _ = os.Chtimes(tmpName, si.ModTime(), si.ModTime())

    if err := publish(tmpName, dest); err != nil {
        return 0, err
    }
    return n, nil
}

// publish makes tmp visible as dest without ever replacing an existing dest.
func publish(tmp, dest string) error {
    err := linkFunc(tmp, dest)
    if err == nil || errors.Is(err, fs.ErrExist) {
        return err
    }
    // no hard links here (FAT, some network mounts): check, then rename
    if _, serr := os.Lstat(dest); serr == nil {
        return fs.ErrExist
    }
    return renameFunc(tmp, dest)
}
