package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/dbframe/internal/objects"
)

func newSchemasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				names, err := db.Meta(ctx)
				if err != nil {
					return err
				}
				return printLines(cmd.OutOrStdout(), names)
			})
		},
	}
}

func newSchemaCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Create, rename or drop a schema",
	}
	cmd.AddCommand(newSchemaCreateCmd(a))
	cmd.AddCommand(newSchemaRenameCmd(a))
	cmd.AddCommand(newSchemaDropCmd(a))
	return cmd
}

func newSchemaCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create SCHEMA",
		Short: "Create a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				s, err := db.CreateSchema(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "created schema %s\n", s.Name())
				return err
			})
		},
	}
}

func newSchemaRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename SCHEMA NEW_NAME",
		Short: "Rename a schema",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				s, err := db.Schema(ctx, args[0])
				if err != nil {
					return err
				}
				if err := s.Rename(ctx, args[1]); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "renamed schema %s to %s\n", args[0], s.Name())
				return err
			})
		},
	}
}

func newSchemaDropCmd(a *app) *cobra.Command {
	var cascade bool
	cmd := &cobra.Command{
		Use:   "drop SCHEMA",
		Short: "Drop a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				s, err := db.Schema(ctx, args[0])
				if err != nil {
					return err
				}
				if err := s.Delete(ctx, cascade); err != nil {
					return err
				}
				_, err = fmt.Fprintf(cmd.OutOrStdout(), "dropped schema %s\n", args[0])
				return err
			})
		},
	}
	cmd.Flags().BoolVar(&cascade, "cascade", false, "Also drop the tables in the schema")
	return cmd
}

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables SCHEMA",
		Short: "List the tables in a schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDB(cmd, func(ctx context.Context, db *objects.Database) error {
				s, err := db.Schema(ctx, args[0])
				if err != nil {
					return err
				}
				meta, err := s.Meta(ctx)
				if err != nil {
					return err
				}
				return printLines(cmd.OutOrStdout(), meta.Tables)
			})
		},
	}
}
