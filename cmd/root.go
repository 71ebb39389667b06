package cmd

import (
    "github.com/spf13/cobra"
    "photosort/internal"
)

// Version is overwritten from the embedded VERSION file at startup.
var Version = "dev"

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
    v := internal.NewViper()

    cmd := &cobra.Command{
        Use:   "photosort",
        Short: "Sort photos into a year/month/day tree by capture date",
        Long: `Copy every file under the source directory into
<target>/<year>/<Month>/<day>/<name>, dated by the EXIF original capture time
of jpeg, png and tiff images, or by the file modified time otherwise.
Files already present at their destination are skipped; sources are never
modified.`,
        Args:         cobra.NoArgs,
        SilenceUsage: true,
        Version:      Version,
        RunE: func(cmd *cobra.Command, args []string) error {
            return runSort(cmd, v)
        },
    }
    cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

    cmd.Flags().StringP("source-dir", "s", "", "Directory to read photos from (required)")
    cmd.Flags().StringP("target-dir", "t", "", "Directory to sort photos into (required)")
    cmd.Flags().BoolP("version", "V", false, "Print version information")

    _ = v.BindPFlag("source_dir", cmd.Flags().Lookup("source-dir"))
    _ = v.BindPFlag("target_dir", cmd.Flags().Lookup("target-dir"))

    return cmd
}

func Execute() error {
    return rootCmd.Execute()
}

// ApplyVersion pushes Version into the root command.
func ApplyVersion() {
    rootCmd.Version = Version
}
