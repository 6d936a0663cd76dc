package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/yuku/pgcrud"
)

var demoUserColumns = []pgcrud.Column{
	{Name: "id", Type: "SERIAL PRIMARY KEY"},
	{Name: "name", Type: "VARCHAR(100) NOT NULL"},
	{Name: "email", Type: "VARCHAR(100) UNIQUE NOT NULL"},
	{Name: "created_at", Type: "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
}

func newDemoCmd(a *app) *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Walk through create, get, update, list and delete on a users table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd, func(ctx context.Context, s store) error {
				return runDemo(ctx, s, cmd.OutOrStdout(), table)
			})
		},
	}
	cmd.Flags().StringVar(&table, "table", "users", "Table to use")
	return cmd
}

func runDemo(ctx context.Context, s store, w io.Writer, table string) error {
	step := func(n int, msg string) {
		log.Info().Int("step", n).Str("table", table).Msg(msg)
	}

	step(0, "Creating table")
	if err := s.CreateTable(ctx, table, demoUserColumns); err != nil {
		return err
	}

	step(1, "Creating a new user")
	user, err := s.Create(ctx, table, pgcrud.Fields{"name": "Jane Doe", "email": "jane@example.com"})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("insert into %s returned no row", table)
	}
	if err := printJSON(w, user); err != nil {
		return err
	}
	id, ok := user.Get("id")
	if !ok {
		return fmt.Errorf("table %s has no id column", table)
	}

	step(2, "Reading the user")
	got, err := s.Get(ctx, table, id)
	if err != nil {
		return err
	}
	if err := printJSON(w, got); err != nil {
		return err
	}

	step(3, "Updating the user")
	updated, err := s.Update(ctx, table, id, pgcrud.Fields{"name": "Jane Smith"})
	if err != nil {
		return err
	}
	if err := printJSON(w, updated); err != nil {
		return err
	}

	step(4, "Listing all users")
	users, err := s.List(ctx, table, pgcrud.ListOptions{OrderBy: "name"})
	if err != nil {
		return err
	}
	if err := printRows(w, users); err != nil {
		return err
	}

	step(5, "Deleting the user")
	deleted, err := s.Delete(ctx, table, id)
	if err != nil {
		return err
	}
	return printJSON(w, map[string]bool{"deleted": deleted})
}
