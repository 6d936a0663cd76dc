package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yuku/pgcrud"
)

var errNotFound = errors.New("row not found")

// printJSON writes v as one JSON line.
func printJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func printRows(w io.Writer, rows []*pgcrud.Row) error {
	for _, row := range rows {
		if err := printJSON(w, row); err != nil {
			return err
		}
	}
	return nil
}

func addIDColumnFlag(cmd *cobra.Command, idColumn *string) {
	cmd.Flags().StringVar(idColumn, "id-column", "id", "Column that identifies the row")
}

func newCreateTableCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create-table NAME COLUMN=TYPE...",
		Short: "Create a table unless it already exists",
		Example: `  pgcrud create-table blog_posts "id=SERIAL PRIMARY KEY" "title=VARCHAR(200) NOT NULL" \
    "published=BOOLEAN DEFAULT FALSE"`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			columns, err := parseColumns(args[1:])
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				return s.CreateTable(ctx, args[0], columns)
			})
		},
	}
}

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "create TABLE COLUMN=VALUE...",
		Short:   "Insert a row and print it",
		Example: `  pgcrud create users "name=Jane Doe" email=jane@example.com`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(args[1:], a.typedValues)
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				row, err := s.Create(ctx, args[0], fields)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), row)
			})
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	var idColumn string
	cmd := &cobra.Command{
		Use:   "get TABLE ID",
		Short: "Print the row with the given id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := parseValue(args[1], a.typedValues)
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				row, err := s.Get(ctx, args[0], id, pgcrud.IDColumn(idColumn))
				if err != nil {
					return err
				}
				if row == nil {
					return fmt.Errorf("%w: %s.%s = %v", errNotFound, args[0], idColumn, id)
				}
				return printJSON(cmd.OutOrStdout(), row)
			})
		},
	}
	addIDColumnFlag(cmd, &idColumn)
	return cmd
}

func newListCmd(a *app) *cobra.Command {
	var (
		where []string
		opts  pgcrud.ListOptions
	)
	cmd := &cobra.Command{
		Use:     "list TABLE",
		Short:   "Print the rows of a table, one JSON object per line",
		Example: `  pgcrud list users --where active=true --order-by "name DESC" --limit 2 --offset 0`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conditions, err := parseFields(where, a.typedValues)
			if err != nil {
				return err
			}
			if len(conditions) > 0 {
				opts.Conditions = conditions
			}
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				rows, err := s.List(ctx, args[0], opts)
				if err != nil {
					return err
				}
				return printRows(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "Equality condition COLUMN=VALUE (repeatable, ANDed)")
	cmd.Flags().StringVar(&opts.OrderBy, "order-by", "", "ORDER BY column list, e.g. \"name DESC, id\"")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum number of rows (0 for no limit)")
	cmd.Flags().IntVar(&opts.Offset, "offset", 0, "Number of rows to skip")
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var idColumn string
	cmd := &cobra.Command{
		Use:     "update TABLE ID COLUMN=VALUE...",
		Short:   "Update the row with the given id and print it",
		Example: `  pgcrud update products 3 stock_quantity=20`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := parseValue(args[1], a.typedValues)
			fields, err := parseFields(args[2:], a.typedValues)
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				row, err := s.Update(ctx, args[0], id, fields, pgcrud.IDColumn(idColumn))
				if err != nil {
					return err
				}
				if row == nil {
					return fmt.Errorf("%w: %s.%s = %v", errNotFound, args[0], idColumn, id)
				}
				return printJSON(cmd.OutOrStdout(), row)
			})
		},
	}
	addIDColumnFlag(cmd, &idColumn)
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var idColumn string
	cmd := &cobra.Command{
		Use:   "delete TABLE ID",
		Short: "Delete the row with the given id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := parseValue(args[1], a.typedValues)
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				deleted, err := s.Delete(ctx, args[0], id, pgcrud.IDColumn(idColumn))
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]bool{"deleted": deleted})
			})
		},
	}
	addIDColumnFlag(cmd, &idColumn)
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	var where []string
	cmd := &cobra.Command{
		Use:   "count TABLE",
		Short: "Print the number of matching rows",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conditions, err := parseFields(where, a.typedValues)
			if err != nil {
				return err
			}
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				n, err := s.Count(ctx, args[0], conditions)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"count": n})
			})
		},
	}
	cmd.Flags().StringArrayVar(&where, "where", nil, "Equality condition COLUMN=VALUE (repeatable, ANDed)")
	return cmd
}

func newExecCmd(a *app) *cobra.Command {
	var fetch bool
	cmd := &cobra.Command{
		Use:     "exec SQL [PARAM...]",
		Short:   "Run a parameterized statement",
		Example: `  pgcrud exec --fetch 'SELECT * FROM products WHERE price > $1 ORDER BY price DESC' 50`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := parseParams(args[1:], a.typedValues)
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				rows, err := s.Execute(ctx, args[0], fetch, params...)
				if err != nil {
					return err
				}
				return printRows(cmd.OutOrStdout(), rows)
			})
		},
	}
	cmd.Flags().BoolVar(&fetch, "fetch", false, "Return result rows instead of committing in a transaction")
	return cmd
}

type info struct {
	Database string           `json:"database"`
	Stats    pgcrud.PoolStats `json:"stats"`
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Check connectivity and print pool settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				if err := s.Ping(ctx); err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), info{
					Database: s.Config().String(),
					Stats:    s.Stats(),
				})
			})
		},
	}
}
