package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbframe/internal/errs"
	"github.com/koustreak/dbframe/internal/filestore"
	"github.com/koustreak/dbframe/internal/frame"
	"github.com/koustreak/dbframe/internal/objects"
)

// source names where a CSV comes from or goes to: a local file or an
// object in the configured store.
type source struct {
	file   string
	object string
}

func (s *source) bind(cmd *cobra.Command, verb string) {
	cmd.Flags().StringVar(&s.file, "file", "", "Local CSV file to "+verb)
	cmd.Flags().StringVar(&s.object, "object", "", "CSV object to "+verb+", as BUCKET/KEY")
	cmd.MarkFlagsMutuallyExclusive("file", "object")
	cmd.MarkFlagsOneRequired("file", "object")
}

func (s *source) ref(a *app) (filestore.Ref, error) {
	return filestore.ParseRef(s.object, a.cfg.FileStore.DefaultBucket)
}

func (s *source) readFrame(ctx context.Context, a *app) (*frame.Frame, error) {
	if s.file != "" {
		fh, err := os.Open(s.file)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindNotFound, "open "+s.file, err)
		}
		defer fh.Close()
		return frame.ReadCSV(fh)
	}

	ref, err := s.ref(a)
	if err != nil {
		return nil, err
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return filestore.ReadFrame(ctx, store, ref)
}

func (s *source) writeFrame(ctx context.Context, a *app, f *frame.Frame) (string, error) {
	if s.file != "" {
		fh, err := os.Create(s.file)
		if err != nil {
			return "", errs.Wrap(errs.ErrKindInvalidInput, "create "+s.file, err)
		}
		if err := f.WriteCSV(fh); err != nil {
			_ = fh.Close()
			return "", err
		}
		return s.file, fh.Close()
	}

	ref, err := s.ref(a)
	if err != nil {
		return "", err
	}
	store, err := a.openStore(ctx)
	if err != nil {
		return "", err
	}
	defer store.Close()
	if _, err := filestore.WriteFrame(ctx, store, ref, f); err != nil {
		return "", err
	}
	return ref.String(), nil
}

func newImportCmd(a *app) *cobra.Command {
	var (
		src    source
		atomic bool
	)
	cmd := &cobra.Command{
		Use:   "import SCHEMA TABLE",
		Short: "Create or replace a table from a CSV file or object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := src.readFrame(cmd.Context(), a)
			if err != nil {
				return err
			}
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				s, err := db.Schema(ctx, args[0])
				if err != nil {
					return err
				}
				replace := s.CreateOrReplaceTable
				if atomic {
					replace = s.ReplaceTableAtomic
				}
				t, err := replace(ctx, args[1], f)
				if err != nil {
					return err
				}
				a.log.InfoWith("table loaded", map[string]any{
					"schema": s.Name(),
					"table":  t.Name(),
					"rows":   f.NumRows(),
				})
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "loaded %d rows into %s.%s\n", f.NumRows(), s.Name(), t.Name())
				return err
			})
		},
	}
	src.bind(cmd, "read")
	cmd.Flags().BoolVar(&atomic, "atomic", false, "Replace the table inside one transaction")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		dst  source
		opts readOptions
	)
	cmd := &cobra.Command{
		Use:   "export SCHEMA TABLE",
		Short: "Write table rows to a CSV file or object",
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
				where, err := dst.writeFrame(ctx, a, f)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "exported %d rows to %s\n", f.NumRows(), where)
				return err
			})
		},
	}
	dst.bind(cmd, "write")
	opts.bind(cmd)
	return cmd
}
