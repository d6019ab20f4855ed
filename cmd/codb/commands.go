package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/codb/kv/store"
)

// statsReport is the YAML document printed by the stats command.
type statsReport struct {
	Backend   string `yaml:"backend"`
	KeyCount  uint64 `yaml:"key_count"`
	SizeBytes int64  `yaml:"size_bytes"`
	Size      string `yaml:"size"`
}

// demoCommand stores a=1 and reads it back.
func (s *session) demoCommand() *cli.Command {
	return &cli.Command{
		Name:  "demo",
		Usage: "Put a=1, read it back and print it",
		Action: func(*cli.Context) error {
			return s.withDB(func(db store.DB) error {
				if err := db.Put([]byte("a"), []byte("1"), nil); err != nil {
					return err
				}

				value, err := db.Get([]byte("a"), nil)
				if err != nil {
					return err
				}

				fmt.Fprintf(s.stdout, "value = %q\n", value)

				return nil
			})
		},
	}
}

func (s *session) putCommand() *cli.Command {
	return &cli.Command{
		Name:      "put",
		Usage:     "Insert or overwrite a record",
		ArgsUsage: "<key> <value>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 2); err != nil {
				return err
			}

			return s.withDB(func(db store.DB) error {
				return db.Put([]byte(c.Args().Get(0)), []byte(c.Args().Get(1)), nil)
			})
		},
	}
}

func (s *session) getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Print the value stored under a key",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}

			return s.withDB(func(db store.DB) error {
				value, err := db.Get([]byte(c.Args().Get(0)), nil)
				if err != nil {
					return err
				}

				fmt.Fprintf(s.stdout, "%s\n", value)

				return nil
			})
		},
	}
}

func (s *session) deleteCommand() *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Aliases:   []string{"del", "rm"},
		Usage:     "Remove a record; removing a missing key succeeds",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}

			return s.withDB(func(db store.DB) error {
				return db.Delete([]byte(c.Args().Get(0)), nil)
			})
		},
	}
}

func (s *session) hasCommand() *cli.Command {
	return &cli.Command{
		Name:      "has",
		Usage:     "Print whether a key exists",
		ArgsUsage: "<key>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}

			return s.withDB(func(db store.DB) error {
				found, err := db.Has([]byte(c.Args().Get(0)), nil)
				if err != nil {
					return err
				}

				fmt.Fprintln(s.stdout, strconv.FormatBool(found))

				return nil
			})
		},
	}
}

func (s *session) statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print key count and size as YAML",
		Action: func(*cli.Context) error {
			return s.withDB(func(db store.DB) error {
				size := db.Size()

				report := statsReport{
					Backend:   s.opts.Backend,
					KeyCount:  db.Stats().KeyCount,
					SizeBytes: size,
					Size:      humanSize(size),
				}

				encoder := yaml.NewEncoder(s.stdout)
				encoder.SetIndent(2)

				if err := encoder.Encode(report); err != nil {
					return fmt.Errorf("encode stats: %w", err)
				}

				return encoder.Close()
			})
		},
	}
}

func (s *session) sizeCommand() *cli.Command {
	return &cli.Command{
		Name:  "size",
		Usage: "Print the bytes held by keys and values",
		Action: func(*cli.Context) error {
			return s.withDB(func(db store.DB) error {
				size := db.Size()
				fmt.Fprintf(s.stdout, "%d bytes (%s)\n", size, humanSize(size))

				return nil
			})
		},
	}
}

func (s *session) pingCommand() *cli.Command {
	return &cli.Command{
		Name:  "ping",
		Usage: "Check that the store opens and answers",
		Action: func(*cli.Context) error {
			return s.withDB(func(db store.DB) error {
				if err := db.Ping(); err != nil {
					return err
				}

				fmt.Fprintln(s.stdout, "ok")

				return nil
			})
		},
	}
}

// requireArgs fails with errUsage unless exactly n positional arguments are given.
func requireArgs(c *cli.Context, n int) error {
	if c.Args().Len() != n {
		return fmt.Errorf("%w: codb %s %s", errUsage, c.Command.Name, c.Command.ArgsUsage)
	}

	return nil
}

// humanSize renders a byte count in IEC units; negative sizes are unknown.
func humanSize(size int64) string {
	if size < 0 {
		return "unknown"
	}

	return humanize.IBytes(uint64(size))
}
