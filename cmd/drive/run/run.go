// Package run implements the drive command.
package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	"github.com/muesli/coral"
	"github.com/srerickson/drive"
	"github.com/srerickson/drive/drivers/local"
	"github.com/srerickson/drive/logger"
)

const defaultCfg = `.drive.yaml`

// app is the state shared by all sub-commands in one invocation.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer
	log            logr.Logger

	cfgFile string
	root    string
	verbose bool
}

// CLI runs the drive command with args (including the program name).
// Errors are printed to stderr and returned.
func CLI(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	a := &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		log:    logger.New(stderr),
	}
	rootCmd := a.rootCmd()
	if len(args) > 0 {
		args = args[1:]
	}
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err.Error())
		return err
	}
	return nil
}

func (a *app) rootCmd() *coral.Command {
	rootCmd := &coral.Command{
		Use:           "drive",
		Short:         "A command line tool for storage drivers",
		Long:          "A command line tool for reading and writing files through a storage driver.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*coral.Command, []string) {
			if a.verbose {
				logger.SetVerbosity(drive.LevelDebug)
			}
		},
	}
	rootCmd.SetIn(a.stdin)
	rootCmd.SetOut(a.stdout)
	rootCmd.SetErr(a.stderr)
	rootCmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "config file (default is HOME/"+defaultCfg+")")
	rootCmd.PersistentFlags().StringVarP(&a.root, "root", "r", "", "override the config's 'root' setting (uses the local driver)")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log driver operations")
	rootCmd.AddCommand(
		a.putCmd(),
		a.getCmd(),
		a.statCmd(),
		a.existsCmd(),
		a.removeCmd(),
		a.copyCmd(),
		a.moveCmd(),
		a.uploadCmd(),
		a.configCmd(),
	)
	return rootCmd
}

// config returns the effective driver configuration: the config file with
// the --root flag applied.
func (a *app) config() (drive.Config, error) {
	if a.root != "" && a.cfgFile == "" {
		return drive.Config{Driver: drive.DriverLocal, Root: a.root}, nil
	}
	var cfg drive.Config
	name := a.cfgFile
	if name == "" {
		home, err := os.UserHomeDir()
		if err == nil {
			name = filepath.Join(home, defaultCfg)
		}
	}
	if name != "" {
		var err error
		cfg, err = drive.ReadConfig(name)
		switch {
		case err == nil:
			a.log.V(drive.LevelDebug).Info("read config", "file", name)
		case errors.Is(err, os.ErrNotExist) && a.cfgFile == "":
			// the default config file is optional
		default:
			return drive.Config{}, err
		}
	}
	if a.root != "" {
		cfg = drive.Config{Driver: drive.DriverLocal, Root: a.root}
	}
	if cfg.Driver == "" {
		return drive.Config{}, errors.New("no storage root configured: use --root or a config file")
	}
	return cfg, nil
}

// driver returns a new driver for the effective configuration.
func (a *app) driver() (drive.Driver, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case drive.DriverLocal:
		d, err := local.New(cfg, local.WithLogger(a.log))
		if err != nil {
			return nil, err
		}
		a.log.V(drive.LevelDebug).Info("storage driver settings", "driver", cfg.Driver, "root", d.Root())
		return d, nil
	default:
		return nil, fmt.Errorf("invalid storage driver: '%s'", cfg.Driver)
	}
}

func writeOptions(public bool) *drive.WriteOptions {
	if public {
		return &drive.WriteOptions{Visibility: drive.VisibilityPublic}
	}
	return nil
}
