package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/agadir/agadir/internal/app"
	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrMissingDir reports a data directory (root or posts) that does not exist.
var ErrMissingDir = errors.New("missing directory")

// Config captures runtime configuration for the application.
type Config struct {
	App     app.Config
	Logging Logging
	Flags   map[string]string
	Args    []string
}

type Logging struct {
	FilePath string
	Trace    bool
}

// Error marks configuration problems so main can exit with a distinct code.
type Error struct {
	Err error
}

func (e *Error) Error() string { return e.Err.Error() }

func (e *Error) Unwrap() error { return e.Err }

// env holds the defaults read from the process environment. Flags override them.
type env struct {
	Root           string        `envconfig:"AGADIR"`
	Port           int           `envconfig:"AGADIR_PORT" default:"2222"`
	Listen         string        `envconfig:"AGADIR_LISTEN" default:"0.0.0.0"`
	RedrawInterval time.Duration `envconfig:"AGADIR_REDRAW_INTERVAL" default:"200ms"`
	IdleTimeout    time.Duration `envconfig:"AGADIR_IDLE_TIMEOUT" default:"1h"`
	Wrap           int           `envconfig:"AGADIR_WRAP" default:"80"`
	AcceptRate     float64       `envconfig:"AGADIR_ACCEPT_RATE" default:"20"`
	AdminAddr      string        `envconfig:"AGADIR_ADMIN_ADDR"`
	LogFile        string        `envconfig:"AGADIR_LOG_FILE"`
	Trace          bool          `envconfig:"AGADIR_TRACE"`
}

type options struct {
	port           int
	listen         string
	redrawInterval time.Duration
	idleTimeout    time.Duration
	wrap           int
	acceptRate     float64
	adminAddr      string
	logFile        string
	trace          bool
	root           string
}

func loadEnv() (env, error) {
	var e env
	if err := envconfig.Process("", &e); err != nil {
		return env{}, fmt.Errorf("read environment: %w", err)
	}
	if e.Root == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return env{}, fmt.Errorf("resolve home directory: %w", err)
		}
		e.Root = filepath.Join(home, ".agadir")
	}
	return e, nil
}

func bindFlags(fs *pflag.FlagSet, e env) *options {
	opts := &options{root: e.Root}
	fs.IntVarP(&opts.port, "port", "p", e.Port, "TCP port to listen on")
	fs.StringVar(&opts.listen, "listen", e.Listen, "address to bind")
	fs.DurationVar(&opts.redrawInterval, "redraw-interval", e.RedrawInterval, "interval between redraw passes")
	fs.DurationVar(&opts.idleTimeout, "idle-timeout", e.IdleTimeout, "close connections idle for this long (0 disables)")
	fs.IntVar(&opts.wrap, "wrap", e.Wrap, "column at which document bodies are wrapped")
	fs.Float64Var(&opts.acceptRate, "accept-rate", e.AcceptRate, "connections admitted per second")
	fs.StringVar(&opts.adminAddr, "admin-addr", e.AdminAddr, "address for the admin HTTP endpoint (empty disables it)")
	fs.StringVar(&opts.logFile, "log-file", e.LogFile, "path to the log file (default <root>/agadir.log)")
	fs.BoolVar(&opts.trace, "trace", e.Trace, "enable verbose JSON trace logging")
	return opts
}

func (o *options) config(args []string) Config {
	logFile := o.logFile
	if logFile == "" {
		logFile = filepath.Join(o.root, "agadir.log")
	}
	return Config{
		App: app.Config{
			Root:           o.root,
			Listen:         o.listen,
			Port:           o.port,
			RedrawInterval: o.redrawInterval,
			IdleTimeout:    o.idleTimeout,
			Wrap:           o.wrap,
			AcceptRate:     o.acceptRate,
			AdminAddr:      o.adminAddr,
		},
		Logging: Logging{
			FilePath: logFile,
			Trace:    o.trace,
		},
		Flags: map[string]string{
			"root":           o.root,
			"port":           strconv.Itoa(o.port),
			"listen":         o.listen,
			"redrawInterval": o.redrawInterval.String(),
			"idleTimeout":    o.idleTimeout.String(),
			"wrap":           strconv.Itoa(o.wrap),
			"acceptRate":     strconv.FormatFloat(o.acceptRate, 'f', -1, 64),
			"adminAddr":      o.adminAddr,
		},
		Args: append([]string(nil), args...),
	}
}

// LoadArgs parses args on top of the environment defaults.
func LoadArgs(args []string) (Config, error) {
	e, err := loadEnv()
	if err != nil {
		return Config{}, err
	}
	fs := pflag.NewFlagSet("agadir", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	opts := bindFlags(fs, e)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	return opts.config(args), nil
}

// NewCommand returns the root command. run receives a validated Config.
func NewCommand(version string, run func(cmd *cobra.Command, cfg Config) error) *cobra.Command {
	e, envErr := loadEnv()
	var opts *options
	cmd := &cobra.Command{
		Use:           "agadir",
		Short:         "Serve a blog over SSH",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return &Error{Err: envErr}
			}
			cfg := opts.config(changedFlags(cmd.Flags()))
			if err := Validate(cfg); err != nil {
				return &Error{Err: err}
			}
			return run(cmd, cfg)
		},
	}
	opts = bindFlags(cmd.Flags(), e)
	return cmd
}

// changedFlags reconstructs the explicitly set flags for trace output.
func changedFlags(fs *pflag.FlagSet) []string {
	var out []string
	fs.Visit(func(f *pflag.Flag) {
		out = append(out, "--"+f.Name+"="+f.Value.String())
	})
	return out
}

// Validate ensures required minimum configuration is present.
func Validate(cfg Config) error {
	a := cfg.App
	if a.Port < 1 || a.Port > 65535 {
		return fmt.Errorf("port must be in 1..65535 (got %d)", a.Port)
	}
	if a.RedrawInterval <= 0 {
		return fmt.Errorf("redraw interval must be > 0 (got %s)", a.RedrawInterval)
	}
	if a.IdleTimeout < 0 {
		return fmt.Errorf("idle timeout must be >= 0 (got %s)", a.IdleTimeout)
	}
	if a.Wrap < 1 {
		return fmt.Errorf("wrap must be >= 1 (got %d)", a.Wrap)
	}
	if a.AcceptRate <= 0 {
		return fmt.Errorf("accept rate must be > 0 (got %v)", a.AcceptRate)
	}
	for _, dir := range []string{a.Root, a.PostsDir()} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrMissingDir, dir)
		}
	}
	return nil
}
