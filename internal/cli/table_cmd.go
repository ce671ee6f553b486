package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/frame"
	"github.com/koustreak/dbframe/internal/objects"
)

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe SCHEMA TABLE",
		Short: "Show the columns of a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				t, err := a.table(ctx, db, args[0], args[1])
				if err != nil {
					return err
				}
				meta, err := t.Meta(ctx)
				if err != nil {
					return err
				}
				return printColumns(cmd.OutOrStdout(), meta.Columns)
			})
		},
	}
}

// readOptions selects rows for select and export.
type readOptions struct {
	columns []string
	where   string
	limit   int
}

func (o *readOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&o.columns, "columns", nil, "Columns to read, comma separated (default all)")
	cmd.Flags().StringVar(&o.where, "where", "", "SQL predicate appended as WHERE")
	cmd.Flags().IntVar(&o.limit, "limit", 0, "Maximum number of rows (0 reads all)")
	cmd.MarkFlagsMutuallyExclusive("columns", "where")
	cmd.MarkFlagsMutuallyExclusive("columns", "limit")
}

func (o *readOptions) clause() string {
	var parts []string
	if o.where != "" {
		parts = append(parts, "WHERE "+o.where)
	}
	if o.limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", o.limit))
	}
	return strings.Join(parts, " ")
}

func (o *readOptions) read(ctx context.Context, t *objects.Table) (*frame.Frame, error) {
	if len(o.columns) > 0 {
		return t.SelectColumns(ctx, o.columns...)
	}
	if c := o.clause(); c != "" {
		return t.Select(ctx, c)
	}
	return t.All(ctx)
}

func newSelectCmd(a *app) *cobra.Command {
	var opts readOptions
	cmd := &cobra.Command{
		Use:   "select SCHEMA TABLE",
		Short: "Print table rows as CSV",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				t, err := a.table(ctx, db, args[0], args[1])
				if err != nil {
					return err
				}
				f, err := opts.read(ctx, t)
				if err != nil {
					return err
				}
				return f.WriteCSV(cmd.OutOrStdout())
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newTableCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Rename or drop a table",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "rename SCHEMA TABLE NEW_NAME",
		Short: "Rename a table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				t, err := a.table(ctx, db, args[0], args[1])
				if err != nil {
					return err
				}
				if err := t.Rename(ctx, args[2]); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "renamed table %s.%s to %s\n", args[0], args[1], t.Name())
				return err
			})
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "drop SCHEMA TABLE",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				t, err := a.table(ctx, db, args[0], args[1])
				if err != nil {
					return err
				}
				if err := t.Delete(ctx); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "dropped table %s.%s\n", args[0], args[1])
				return err
			})
		},
	})
	return cmd
}

func newColumnsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "columns",
		Short: "Rename table columns",
	}

	var all []string
	rename := &cobra.Command{
		Use:   "rename SCHEMA TABLE [OLD=NEW ...]",
		Short: "Rename columns, either all at once (--all) or by OLD=NEW pairs",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			spec, err := renameSpec(all, args[2:])
			if err != nil {
				return err
			}
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				t, err := a.table(ctx, db, args[0], args[1])
				if err != nil {
					return err
				}
				if err := t.RenameColumns(ctx, spec); err != nil {
					return err
				}
				meta, err := t.Meta(ctx)
				if err != nil {
					return err
				}
				return printColumns(cmd.OutOrStdout(), meta.Columns)
			})
		},
	}
	rename.Flags().StringSliceVar(&all, "all", nil, "New names for every column, in table order")
	cmd.AddCommand(rename)
	return cmd
}

// renameSpec builds a full rename from --all or a partial rename from
// OLD=NEW arguments. Exactly one form must be given.
func renameSpec(all, pairs []string) (objects.RenameSpec, error) {
	switch {
	case len(all) > 0 && len(pairs) > 0:
		return nil, errs.New(errs.ErrKindInvalidInput, "use either --all or OLD=NEW pairs, not both")
	case len(all) > 0:
		return objects.FullRename(all...), nil
	case len(pairs) == 0:
		return nil, errs.New(errs.ErrKindInvalidInput, "nothing to rename: give --all or OLD=NEW pairs")
	}

	renames := make([]objects.ColumnRename, 0, len(pairs))
	for _, p := range pairs {
		old, name, ok := strings.Cut(p, "=")
		if !ok || old == "" || name == "" {
			return nil, errs.Newf(errs.ErrKindInvalidInput, "rename %q must be OLD=NEW", p)
		}
		renames = append(renames, objects.ColumnRename{Old: old, New: name})
	}
	return objects.PartialRename(renames...), nil
}
