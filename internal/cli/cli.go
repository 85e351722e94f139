// Package cli implements the archboard command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archboard/internal/config"
	"github.com/matzehuels/archboard/pkg/editor"
	errs "github.com/matzehuels/archboard/pkg/errors"
	"github.com/matzehuels/archboard/pkg/persist"
	"github.com/matzehuels/archboard/pkg/render"
	"github.com/matzehuels/archboard/pkg/render/canvas"
	"github.com/matzehuels/archboard/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "archboard"

	// defaultEnvFile is read from the working directory when present.
	defaultEnvFile = ".env"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config

	// Out receives command output; defaults to os.Stdout.
	Out io.Writer

	flags globalFlags
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	envFile    string
	backend    string
	storeDir   string
	namespace  string
	key        string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig resolves configuration: defaults, config file, .env, ARCHBOARD_*
// variables, then flags set on cmd.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	if err := config.LoadEnvFile(c.flags.envFile); err != nil {
		return err
	}

	path, required := c.flags.configPath, c.flags.configPath != ""
	if path == "" {
		if p, err := config.DefaultPath(); err == nil {
			path = p
		}
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Store.Backend = c.flags.backend
	}
	if flags.Changed("store-dir") {
		cfg.Store.Dir = c.flags.storeDir
	}
	if flags.Changed("namespace") {
		cfg.Store.Namespace = c.flags.namespace
	}
	if flags.Changed("key") {
		cfg.Store.Key = c.flags.key
	}
	if err := errs.ValidateKey(cfg.Store.Key); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c.Config = cfg
	c.Logger.Debug("configuration loaded", "path", path, "backend", cfg.Store.Backend, "rasterizer", cfg.Export.Rasterizer)
	return nil
}

// =============================================================================
// Editor Factory
// =============================================================================

// session is an editor bound to its backing store.
type session struct {
	Editor  *editor.Editor
	Adapter *persist.Adapter
	Loaded  persist.LoadResult
	store   store.Store
}

// Close releases the backing store.
func (s *session) Close() error { return s.store.Close() }

func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	s, err := store.Open(ctx, c.Config.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", c.Config.Store.Backend, err)
	}
	return s, nil
}

func (c *CLI) newAdapter(s store.Store) *persist.Adapter {
	a := persist.NewAdapter(s, c.Logger)
	a.Key = c.Config.Store.Key
	return a
}

// openSession loads the stored diagram into a new editor.
func (c *CLI) openSession(ctx context.Context) (*session, error) {
	s, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	a := c.newAdapter(s)
	ed, res := editor.Open(ctx, a, editor.Options{
		Rasterizer: c.rasterizer(),
		Logger:     c.Logger,
	})
	c.Logger.Debug("diagram loaded", "outcome", res.Outcome, "nodes", len(res.Diagram.Nodes), "edges", len(res.Diagram.Edges))
	return &session{Editor: ed, Adapter: a, Loaded: res, store: s}, nil
}

// rasterizer returns the PNG rasterizer selected by [export] rasterizer.
func (c *CLI) rasterizer() persist.Rasterizer {
	switch c.Config.Export.Rasterizer {
	case config.RasterizerCanvas:
		return canvas.New(c.Config.Export.Scale)
	case config.RasterizerGraphviz:
		return render.GraphvizRasterizer{Options: render.Options{EdgeTypes: true}}
	}
	return nil
}
