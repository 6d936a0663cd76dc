package pgcrud_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/yuku/pgcrud"
)

func Example() {
	ctx := context.Background()

	cfg, err := pgcrud.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	m, err := pgcrud.New(ctx, cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	err = m.CreateTable(ctx, "users", []pgcrud.Column{
		{Name: "id", Type: "SERIAL PRIMARY KEY"},
		{Name: "name", Type: "VARCHAR(100) NOT NULL"},
		{Name: "email", Type: "VARCHAR(100) UNIQUE NOT NULL"},
		{Name: "created_at", Type: "TIMESTAMP DEFAULT CURRENT_TIMESTAMP"},
	})
	if err != nil {
		log.Fatal(err)
	}

	user, err := m.Create(ctx, "users", pgcrud.Fields{
		"name":  "Alice Johnson",
		"email": "alice@example.com",
	})
	if pgcrud.IsUniqueViolation(err) {
		fmt.Println("user already exists")
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	id, _ := user.Get("id")
	if _, err := m.Update(ctx, "users", id, pgcrud.Fields{"name": "Alice Smith"}); err != nil {
		log.Fatal(err)
	}

	users, err := m.List(ctx, "users", pgcrud.ListOptions{OrderBy: "created_at DESC", Limit: 10})
	if err != nil {
		log.Fatal(err)
	}
	out, _ := json.Marshal(users)
	fmt.Println(string(out))
}

func ExampleManager_List() {
	ctx := context.Background()
	m, err := pgcrud.New(ctx, pgcrud.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	// Second page of active users, ten per page.
	rows, err := m.List(ctx, "users", pgcrud.ListOptions{
		Conditions: pgcrud.Fields{"active": true},
		OrderBy:    "name ASC, id",
		Limit:      10,
		Offset:     10,
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range rows {
		name, _ := row.Get("name")
		fmt.Println(name)
	}
}

func ExampleManager_Get() {
	ctx := context.Background()
	m, err := pgcrud.New(ctx, pgcrud.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	row, err := m.Get(ctx, "users", "alice@example.com", pgcrud.IDColumn("email"))
	if err != nil {
		log.Fatal(err)
	}
	if row == nil {
		fmt.Println("not found")
		return
	}
	fmt.Println(row.Map())
}
