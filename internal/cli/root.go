// Package cli wires the kiosk's commands: serve, snap and version.
package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GriffinCanCode/facekiosk/internal/config"
)

// Version is set at build time with -ldflags "-X .../internal/cli.Version=...".
var Version = "dev"

// options holds flags shared by every subcommand.
type options struct {
	configPath string
	addr       string
	endpoint   string
	backend    string
	device     string
	logLevel   string
	logFormat  string

	cfg *config.Config
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "kiosk",
		Short:         "Camera capture and face recognition kiosk",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			return o.load(cmd)
		},
	}
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	pf := root.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", "", "YAML config file (env vars still override it)")
	pf.StringVar(&o.endpoint, "endpoint", "", "recognition endpoint URL (default from RECOGNIZE_URL)")
	pf.StringVar(&o.backend, "camera", "", "camera backend: ffmpeg or opencv")
	pf.StringVar(&o.device, "device", "", "camera device, e.g. /dev/video0")
	pf.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	pf.StringVar(&o.logFormat, "log-format", "", "text or json")

	root.AddCommand(newServeCmd(o), newSnapCmd(o), newVersionCmd())
	return root
}

// load resolves configuration: defaults, then file, then env, then flags.
func (o *options) load(cmd *cobra.Command) error {
	var cfg *config.Config
	if o.configPath != "" {
		var err error
		if cfg, err = config.LoadFile(o.configPath); err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = config.Load()
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.HTTPAddr = o.addr
	}
	if flags.Changed("endpoint") {
		cfg.RecognizeURL = o.endpoint
	}
	if flags.Changed("camera") {
		cfg.Camera.Backend = o.backend
	}
	if flags.Changed("device") {
		cfg.Camera.Device = o.device
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg.Log, cmd.ErrOrStderr()))
	o.cfg = cfg
	return nil
}

// ExitError ends the process with Code; its message has already been shown.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }

// Execute runs the root command and exits on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		var exit *ExitError
		if errors.As(err, &exit) {
			os.Exit(exit.Code)
		}
		fmt.Fprintf(os.Stderr, "🚨 %v\n", err)
		os.Exit(1)
	}
}
