package main

import (
	"codeberg.org/miketth/picoclip/pkg/driveconfig"
	"codeberg.org/miketth/picoclip/pkg/drives"
	"codeberg.org/miketth/picoclip/pkg/picoclip"
	"codeberg.org/miketth/picoclip/pkg/provision"
	"codeberg.org/miketth/picoclip/pkg/selectionstore/json"
	"codeberg.org/miketth/picoclip/pkg/selectionstore/memory"
	"codeberg.org/miketth/picoclip/pkg/selectionstore/sqlite"
	"codeberg.org/miketth/picoclip/pkg/slots"
	"errors"
	"fmt"
	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"log"
)

var errCommandFailed = errors.New("command failed")

func main() {
	err := run()
	if err != nil {
		log.Fatalf("error: %+v", err)
	}
}

func run() error {
	a := &app{}
	err := newRootCmd(a).Execute()
	return multierr.Append(err, a.teardown())
}

type options struct {
	drive   string
	debug   bool
	yes     bool
	state   string
	lsblk   string
	payload string
}

type app struct {
	opts options

	log     *zap.SugaredLogger
	ui      *presenter
	locator *drives.Locator
	ctrl    *picoclip.Controller

	// directories watched for new mount points, mountRoots() when nil
	mountRoots []string
	closeState func() error
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "picoclip",
		Short:         "Manage text slots on a Raspberry Pi Pico keyboard drive",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.opts.drive, "drive", "", "mount point of the drive to use")
	flags.BoolVar(&a.opts.debug, "debug", false, "enable debug logging")
	flags.BoolVarP(&a.opts.yes, "yes", "y", false, "answer yes to every confirmation")
	flags.StringVar(&a.opts.state, "state", "json", "selection state backend: json, sqlite or memory")
	flags.StringVar(&a.opts.lsblk, "lsblk", "", "path to the lsblk binary (default: looked up in $PATH)")

	root.AddCommand(
		newDrivesCmd(a),
		newShowCmd(a),
		newSaveCmd(a),
		newReloadCmd(a),
		newClearCmd(a),
		newConfigCmd(a),
		newCheckCmd(a),
		newInitCmd(a),
		newWatchCmd(a),
	)

	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	log, err := newLogger(a.opts.debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.log = log

	selections, closeState, err := openSelectionStore(a.opts.state, log)
	if err != nil {
		return fmt.Errorf("open selection store: %w", err)
	}
	a.closeState = closeState

	payload := a.opts.payload
	if payload == "" {
		payload = provision.DefaultPayloadDir()
	}

	a.ui = newPresenter(cmd.OutOrStdout(), cmd.ErrOrStderr())
	a.locator = drives.NewLocator(log)
	a.locator.Path = a.opts.lsblk
	a.ctrl = picoclip.NewController(
		a.locator,
		slots.NewStore(slots.NewFiles(log), log),
		driveconfig.NewStore(log),
		provision.FromDir(payload, log),
		selections,
		a.ui,
		newConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr(), a.opts.yes),
		log,
	)

	return nil
}

// teardown runs after every command, including failed ones.
func (a *app) teardown() error {
	var closeErr error
	if a.closeState != nil {
		if err := a.closeState(); err != nil {
			closeErr = fmt.Errorf("close selection store: %w", err)
		}
	}
	if a.log != nil {
		_ = a.log.Sync()
	}

	if closeErr != nil {
		return closeErr
	}
	if a.ui != nil && a.ui.failed > 0 {
		return errCommandFailed
	}
	return nil
}

func openSelectionStore(kind string, log *zap.SugaredLogger) (picoclip.SelectionStore, func() error, error) {
	switch kind {
	case "memory":
		return memory.NewSelectionStore(), func() error { return nil }, nil
	case "json":
		path, err := xdg.StateFile("picoclip/selections.json")
		if err != nil {
			return nil, nil, fmt.Errorf("get state file: %w", err)
		}
		store, err := json.NewSelectionStore(path)
		if err != nil {
			return nil, nil, fmt.Errorf("create json store: %w", err)
		}
		return store, store.Close, nil
	case "sqlite":
		path, err := xdg.StateFile("picoclip/selections.db")
		if err != nil {
			return nil, nil, fmt.Errorf("get state file: %w", err)
		}
		store, err := sqlite.NewSelectionStore(path, log)
		if err != nil {
			return nil, nil, fmt.Errorf("create sqlite store: %w", err)
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown state backend %q", kind)
	}
}

// resolveDrive picks the --drive flag, then the last used drive if it is
// still attached, then the first attached drive.
func (a *app) resolveDrive() picoclip.Drive {
	if a.opts.drive != "" {
		drive := drives.FromPath(a.opts.drive)
		if !drive.Valid {
			a.log.Warnw("drive path is not a directory", "path", a.opts.drive)
		}
		return drive
	}

	attached := a.locator.List()
	if sel, ok := a.ctrl.LastSelection(); ok {
		if drive, ok := drives.Find(attached, sel.DrivePath); ok {
			return drive
		}
	}
	if len(attached) > 0 {
		return attached[0]
	}

	return picoclip.NoDrive()
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	// stdout carries command output
	loggerConfig.OutputPaths = []string{"stderr"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	loggerConfig.DisableStacktrace = !debug
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
