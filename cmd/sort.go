package cmd

import (
    "fmt"
    "os"
    "path/filepath"
    "strings"

    "github.com/spf13/afero"
    "github.com/spf13/cobra"
    "github.com/spf13/viper"
    "go.uber.org/zap"
    "photosort/internal"
)

func runSort(cmd *cobra.Command, v *viper.Viper) error {
    conf, err := internal.LoadConfig(v)
    if err != nil {
        return err
    }

    info, err := os.Stat(conf.SourceDir)
    if err != nil || !info.IsDir() {
        return fmt.Errorf("source directory does not exist or is not a directory: %s", conf.SourceDir)
    }
    if err := os.MkdirAll(conf.TargetDir, 0755); err != nil {
        return fmt.Errorf("failed to create target directory %s: %w", conf.TargetDir, err)
    }

    logger, err := internal.NewLogger(conf.LogLevel, conf.LogFile)
    if err != nil {
        return err
    }
    defer logger.Sync()

    extractor, closeExtractor, err := newExtractor(conf)
    if err != nil {
        return err
    }
    defer closeExtractor()

    fsys := afero.NewOsFs()
    files, scanErrors, err := internal.ScanFiles(fsys, conf.SourceDir, nestedTarget(conf)...)
    if err != nil {
        return err
    }
    if scanErrors > 0 {
        logger.Warn("some entries could not be scanned", zap.Int("count", scanErrors))
    }
    fmt.Fprintf(cmd.OutOrStdout(), "Found %d files\n", len(files))

    resolver := internal.NewResolver(fsys, extractor, logger)
    summary := processFiles(files, conf.TargetDir, resolver, logger)
    summary.ScanErrors = scanErrors

    fmt.Fprintln(cmd.OutOrStdout(), summary.Display())
    return nil
}

func processFiles(files []string, targetDir string, resolver *internal.Resolver, logger *zap.Logger) *internal.Summary {
    return internal.NewSorter(resolver, targetDir, logger).SortAll(files)
}

func newExtractor(conf *internal.Config) (internal.Extractor, func(), error) {
    if conf.UseExifTool {
        et, err := internal.NewExiftoolExtractor()
        if err != nil {
            return nil, nil, err
        }
        return et, func() { _ = et.Close() }, nil
    }
    return internal.NewExifExtractor(afero.NewOsFs()), func() {}, nil
}

// nestedTarget returns the target directory, as seen from the walk, when it
// lives inside the source directory so already sorted files are not picked up.
func nestedTarget(conf *internal.Config) []string {
    src, err1 := filepath.Abs(conf.SourceDir)
    dst, err2 := filepath.Abs(conf.TargetDir)
    if err1 != nil || err2 != nil {
        return nil
    }
    rel, err := filepath.Rel(src, dst)
    if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
        return nil
    }
    return []string{filepath.Join(conf.SourceDir, rel)}
}
