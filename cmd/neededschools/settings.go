package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChicagoDave/neededschools/pkg/config"
)

// EnvPrefix prefixes every environment variable the CLI reads, e.g.
// NEEDEDSCHOOLS_DATABASE_URL.
const EnvPrefix = "NEEDEDSCHOOLS"

// dotEnvPath is loaded before flags are bound. Variables already present
// in the environment win.
var dotEnvPath = ".env"

func bindSettings(v *viper.Viper, cmd *cobra.Command) error {
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			return fmt.Errorf("loading %s: %w", dotEnvPath, err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", dotEnvPath, err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("binding flags: %w", err)
	}
	return nil
}

// loadProject reads the project at path (a directory or a YAML file) and
// applies flag and environment overrides.
func loadProject(v *viper.Viper, path string) (*config.Project, error) {
	var (
		p   *config.Project
		err error
	)
	if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
		p, err = config.LoadProject(path)
	} else {
		p, err = config.Load(path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}

	if v.IsSet("capacity") {
		p.Capacity = v.GetFloat64("capacity")
	}
	if v.IsSet("strict") {
		p.Strict = v.GetBool("strict")
	}
	if url := v.GetString("database-url"); url != "" {
		p.Database.URL = url
	}
	return p, nil
}

func newLogger(v *viper.Viper, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v.GetString("log-level"))); err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
