package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/fieldsweep/internal/config"
	"github.com/aretw0/fieldsweep/pkg/sweep"
)

// Globals are the persistent flags shared by every command.
type Globals struct {
	Dir        string
	ConfigPath string
	SweepPath  string
	Debug      bool
	LogFormat  string

	Stdin   io.Reader
	Stdout  io.Writer
	Stderr  io.Writer
	Environ []string
}

// App is the loaded configuration plus the process streams.
type App struct {
	Config config.Config
	Root   string
	Logger *slog.Logger

	globals Globals
}

// Setup resolves the working directory and loads the configuration.
func Setup(g Globals) (*App, error) {
	if g.Stdin == nil {
		g.Stdin = os.Stdin
	}
	if g.Stdout == nil {
		g.Stdout = os.Stdout
	}
	if g.Stderr == nil {
		g.Stderr = os.Stderr
	}
	if g.Environ == nil {
		g.Environ = os.Environ()
	}
	if g.Dir == "" {
		g.Dir = "."
	}
	root, err := filepath.Abs(g.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", g.Dir, err)
	}

	path := resolve(root, g.ConfigPath)
	if path == "" {
		if candidate := filepath.Join(root, config.DefaultFile); fileExists(candidate) {
			path = candidate
		}
	}
	cfg, err := config.Load(path, g.Environ)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:  cfg,
		Root:    root,
		Logger:  createLogger(g.Stderr, g.Debug, g.LogFormat),
		globals: g,
	}, nil
}

// Out is where command results are written.
func (a *App) Out() io.Writer { return a.globals.Stdout }

// SweepFlags carries sweep definitions given on the command line.
type SweepFlags struct {
	X, Y, Z string
	Points  []string
}

// LoadSweep reads the sweep file, when there is one, and applies flags over it.
// Axis flags replace the file's axis; point flags are appended.
func (a *App) LoadSweep(flags SweepFlags) (config.Sweep, error) {
	var s config.Sweep

	path := resolve(a.Root, a.globals.SweepPath)
	if path == "" {
		if candidate := filepath.Join(a.Root, config.DefaultSweepFile); fileExists(candidate) {
			path = candidate
		}
	}
	if path != "" {
		loaded, err := config.LoadSweep(path)
		if err != nil {
			return config.Sweep{}, err
		}
		s = loaded
		a.Logger.Debug("sweep file loaded", "path", path)
	}

	for name, value := range map[string]string{"x": flags.X, "y": flags.Y, "z": flags.Z} {
		if value == "" {
			continue
		}
		if err := s.SetAxisFlag(name, value); err != nil {
			return config.Sweep{}, fmt.Errorf("--%s: %w", name, err)
		}
	}
	for _, p := range flags.Points {
		v, err := sweep.ParseVector(p)
		if err != nil {
			return config.Sweep{}, fmt.Errorf("--point %q: %w", p, err)
		}
		s.Points = append(s.Points, v)
	}
	return s, nil
}
