package internal

import (
    "fmt"
    "path/filepath"
    "strings"

    "github.com/spf13/viper"
)

type Config struct {
    SourceDir   string `mapstructure:"source_dir"`
    TargetDir   string `mapstructure:"target_dir"`
    UseExifTool bool   `mapstructure:"exiftool"`
    LogLevel    string `mapstructure:"log_level"`
    LogFile     string `mapstructure:"log_file"`
}

// NewViper returns a viper instance reading PHOTOSORT_* environment
// variables on top of the defaults. There is no config file.
func NewViper() *viper.Viper {
    v := viper.New()
    v.SetEnvPrefix("photosort")
    v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
    v.AutomaticEnv()

    // Set defaults:
    v.SetDefault("source_dir", "")
    v.SetDefault("target_dir", "")
    v.SetDefault("exiftool", false)
    v.SetDefault("log_level", "info")
    v.SetDefault("log_file", "")
    return v
}

func LoadConfig(v *viper.Viper) (*Config, error) {
    var cfg Config
    if err := v.Unmarshal(&cfg); err != nil {
        return nil, fmt.Errorf("failed to parse config: %w", err)
    }

    if cfg.SourceDir == "" {
        return nil, fmt.Errorf("missing required --source-dir")
    }
    if cfg.TargetDir == "" {
        return nil, fmt.Errorf("missing required --target-dir")
    }
    cfg.SourceDir = filepath.Clean(cfg.SourceDir)
    cfg.TargetDir = filepath.Clean(cfg.TargetDir)

    src, err := filepath.Abs(cfg.SourceDir)
    if err != nil {
        return nil, fmt.Errorf("invalid source directory %s: %w", cfg.SourceDir, err)
    }
    dst, err := filepath.Abs(cfg.TargetDir)
    if err != nil {
        return nil, fmt.Errorf("invalid target directory %s: %w", cfg.TargetDir, err)
    }
    if src == dst {
        return nil, fmt.Errorf("source and target directory are the same: %s", src)
    }

    return &cfg, nil
}
