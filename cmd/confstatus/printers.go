package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hazyhaar/confstatus/dbregistry"
)

func newPrintersCmd(f *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "printers",
		Short: "Inspect and steer the printers table",
	}
	cmd.AddCommand(newPrintersListCmd(f))
	cmd.AddCommand(newPrintersEnableCmd(f, true))
	cmd.AddCommand(newPrintersEnableCmd(f, false))
	cmd.AddCommand(newPrintersEditCmd(f, "label NAME LABEL", "Override the label of a printer", cobra.ExactArgs(2),
		func(r *dbregistry.Row, args []string) { r.Label = args[1] }))
	cmd.AddCommand(newPrintersEditCmd(f, "modes NAME [MODE...]", "Restrict a printer to modes; no mode admits all", cobra.MinimumNArgs(1),
		func(r *dbregistry.Row, args []string) { r.Modes = args[1:] }))
	cmd.AddCommand(newPrintersResetCmd(f))
	return cmd
}

// withStore runs fn against the printers table.
func (f *rootFlags) withStore(ctx context.Context, fn func(*dbregistry.Store) error) error {
	cfg, logger, err := f.load(os.Stderr)
	if err != nil {
		return err
	}
	db, store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(store)
}

// listing is one line of printers list: a bound printer, a table row, or both.
type listing struct {
	Name    string   `yaml:"name"`
	Bound   bool     `yaml:"bound"`
	Label   string   `yaml:"label,omitempty"`
	Modes   []string `yaml:"modes,omitempty"`
	Enabled bool     `yaml:"enabled"`
	Row     bool     `yaml:"row"`
}

func newPrintersListCmd(f *rootFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bound printers and table rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := f.load(os.Stderr)
			if err != nil {
				return err
			}
			a, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			rows, err := a.store.List(cmd.Context())
			if err != nil {
				return err
			}
			out := mergeListing(a.store.Bound(), rows)
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				defer enc.Close()
				return enc.Encode(out)
			case "table", "":
				return writeTable(cmd.OutOrStdout(), out)
			default:
				return fmt.Errorf("printers list: unknown format %q", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "table", "table or yaml")
	return cmd
}

func mergeListing(bound []string, rows []dbregistry.Row) []listing {
	byName := make(map[string]*listing)
	var names []string
	for _, name := range bound {
		byName[name] = &listing{Name: name, Bound: true, Enabled: true}
		names = append(names, name)
	}
	for _, r := range rows {
		l, ok := byName[r.Name]
		if !ok {
			l = &listing{Name: r.Name}
			byName[r.Name] = l
			names = append(names, r.Name)
		}
		l.Row = true
		l.Label = r.Label
		l.Modes = r.Modes
		l.Enabled = r.Enabled
	}
	slices.Sort(names)
	out := make([]listing, 0, len(names))
	for _, name := range names {
		out = append(out, *byName[name])
	}
	return out
}

func writeTable(w io.Writer, ls []listing) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBOUND\tENABLED\tLABEL\tMODES")
	for _, l := range ls {
		label, modes := l.Label, strings.Join(l.Modes, ",")
		if label == "" {
			label = "-"
		}
		if modes == "" {
			modes = "all"
		}
		fmt.Fprintf(tw, "%s\t%t\t%t\t%s\t%s\n", l.Name, l.Bound, l.Enabled, label, modes)
	}
	return tw.Flush()
}

func newPrintersEnableCmd(f *rootFlags, enabled bool) *cobra.Command {
	use, short := "enable NAME", "Expose a printer"
	if !enabled {
		use, short = "disable NAME", "Hide a printer"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.withStore(cmd.Context(), func(s *dbregistry.Store) error {
				err := s.SetEnabled(cmd.Context(), args[0], enabled)
				if errors.Is(err, dbregistry.ErrNotFound) {
					return s.Upsert(cmd.Context(), dbregistry.Row{Name: args[0], Enabled: enabled})
				}
				return err
			})
		},
	}
}

func newPrintersEditCmd(f *rootFlags, use, short string, args cobra.PositionalArgs, edit func(*dbregistry.Row, []string)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.withStore(cmd.Context(), func(s *dbregistry.Store) error {
				row, err := s.Get(cmd.Context(), args[0])
				if errors.Is(err, dbregistry.ErrNotFound) {
					row, err = dbregistry.Row{Name: args[0], Enabled: true}, nil
				}
				if err != nil {
					return err
				}
				edit(&row, args)
				return s.Upsert(cmd.Context(), row)
			})
		},
	}
}

func newPrintersResetCmd(f *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset NAME",
		Short: "Drop the table row of a printer, restoring its defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return f.withStore(cmd.Context(), func(s *dbregistry.Store) error {
				return s.Delete(cmd.Context(), args[0])
			})
		},
	}
}
