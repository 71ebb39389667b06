package internal

import (
    "fmt"
    "path/filepath"
    "strconv"
    "time"
)

// DestinationPath returns root/<year>/<Month>/<day>/<name> for t, e.g.
// /out/2022/January/9/image.jpg. Month names are always English and the day
// is not zero-padded.
func DestinationPath(root string, t time.Time, name string) string {
    return filepath.Join(root,
        fmt.Sprintf("%04d", t.Year()),
        t.Month().String(),
        strconv.Itoa(t.Day()),
        filepath.Base(name))
}
