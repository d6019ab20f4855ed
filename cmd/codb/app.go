package main

import (
	"errors"
	"io"

	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/oshokin/codb/kv"
	"github.com/oshokin/codb/kv/store"
)

var errUsage = errors.New("usage")

// flagOverrides maps global flags onto configuration keys.
var flagOverrides = map[string]string{
	"backend":   "backend",
	"path":      "disk.path",
	"log-level": "log.level",
}

// session carries what every command needs: loaded options, the logger and the output.
type session struct {
	stdout io.Writer
	opts   kv.Options
	logger *zap.Logger
}

// newApp builds the codb application writing results to stdout.
func newApp(stdout, stderr io.Writer) *cli.App {
	s := &session{
		stdout: stdout,
		logger: zap.NewNop(),
	}

	return &cli.App{
		Name:      "codb",
		Usage:     "Embedded key-value store",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags(),
		Before:    s.setup,
		After:     s.teardown,
		Commands: []*cli.Command{
			s.demoCommand(),
			s.putCommand(),
			s.getCommand(),
			s.deleteCommand(),
			s.hasCommand(),
			s.statsCommand(),
			s.sizeCommand(),
			s.pingCommand(),
		},
	}
}

// globalFlags returns the flags shared by every command.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "YAML configuration file",
		},
		&cli.StringFlag{
			Name:    "backend",
			Aliases: []string{"b"},
			Usage:   "Storage backend: memory, disk",
		},
		&cli.StringFlag{
			Name:    "path",
			Aliases: []string{"p"},
			Usage:   "bbolt file used by the disk backend",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level: debug, info, warn, error",
		},
	}
}

// setup loads options and builds the logger before any command runs.
func (s *session) setup(c *cli.Context) error {
	overrides := make(map[string]any, len(flagOverrides))

	for flag, key := range flagOverrides {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}

	opts, err := kv.LoadOptions(
		kv.WithConfigFile(c.String("config")),
		kv.WithOverrides(overrides),
	)
	if err != nil {
		return err
	}

	logger, err := kv.NewLogger(opts.Log)
	if err != nil {
		return err
	}

	s.opts = opts
	s.logger = logger

	return nil
}

// teardown flushes buffered log entries.
func (s *session) teardown(*cli.Context) error {
	// Sync fails on some terminals; the error is not actionable.
	_ = s.logger.Sync()

	return nil
}

// withDB opens the configured store, runs fn and closes the store.
// Close failures are combined with fn's error.
func (s *session) withDB(fn func(db store.DB) error) (err error) {
	db, err := kv.Open(s.opts, kv.WithLogger(s.logger))
	if err != nil {
		return err
	}

	defer func() {
		err = multierr.Append(err, db.Close())
	}()

	return fn(db)
}
