package pgcrud

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/yuku/pgcrud/internal/pgconst"
)

// Fields maps column names to values for Create, Update and equality filters.
type Fields map[string]any

// Column is one column declaration for CreateTable. Type is emitted
// verbatim, e.g. "SERIAL PRIMARY KEY" or "VARCHAR(100) NOT NULL".
type Column struct {
	Name string
	Type string
}

// ListOptions narrows a List call. Zero values mean "not set": no filter,
// no ordering, no limit, no offset.
type ListOptions struct {
	// Conditions are ANDed equality predicates.
	Conditions Fields

	// OrderBy is a comma separated list of "column [ASC|DESC]" terms.
	OrderBy string

	Limit  int
	Offset int
}

// statement is a built SQL text with its positional arguments.
type statement struct {
	sql  string
	args []any
}

func checkTable(table string) error {
	if !pgconst.IsValidQualifiedName(table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}
	return nil
}

func checkColumn(col string) error {
	if !pgconst.IsValidPostgreSQLIdentifier(col) {
		return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, col)
	}
	return nil
}

// sortedColumns returns the keys of f in lexical order, validating each.
func sortedColumns(f Fields) ([]string, error) {
	cols := make([]string, 0, len(f))
	for col := range f {
		if err := checkColumn(col); err != nil {
			return nil, err
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols, nil
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}

// whereEquals renders "a = $n AND b = $n+1 ..." starting at placeholder
// start, appending the values to args.
func whereEquals(cond Fields, start int, args []any) (string, []any, error) {
	cols, err := sortedColumns(cond)
	if err != nil {
		return "", nil, err
	}
	clauses := make([]string, len(cols))
	for i, col := range cols {
		clauses[i] = col + " = " + placeholder(start+i)
		args = append(args, cond[col])
	}
	return strings.Join(clauses, " AND "), args, nil
}

func buildInsert(table string, fields Fields) (statement, error) {
	if len(fields) == 0 {
		return statement{}, ErrEmptyFields
	}
	if err := checkTable(table); err != nil {
		return statement{}, err
	}
	cols, err := sortedColumns(fields)
	if err != nil {
		return statement{}, err
	}

	placeholders := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		placeholders[i] = placeholder(i + 1)
		args[i] = fields[col]
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	return statement{sql: sql, args: args}, nil
}

func buildSelectByID(table, idColumn string, id any) (statement, error) {
	if err := checkTable(table); err != nil {
		return statement{}, err
	}
	if err := checkColumn(idColumn); err != nil {
		return statement{}, err
	}
	sql := fmt.Sprintf("SELECT * FROM %s WHERE %s = $1", table, idColumn)
	return statement{sql: sql, args: []any{id}}, nil
}

// buildSelect renders SELECT * with clauses in the fixed order
// WHERE, ORDER BY, LIMIT, OFFSET.
func buildSelect(table string, opts ListOptions) (statement, error) {
	if err := checkTable(table); err != nil {
		return statement{}, err
	}

	var b strings.Builder
	var args []any
	b.WriteString("SELECT * FROM ")
	b.WriteString(table)

	if len(opts.Conditions) > 0 {
		where, whereArgs, err := whereEquals(opts.Conditions, 1, args)
		if err != nil {
			return statement{}, err
		}
		args = whereArgs
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}

	if opts.OrderBy != "" {
		orderBy, err := parseOrderBy(opts.OrderBy)
		if err != nil {
			return statement{}, err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(orderBy)
	}

	if opts.Limit > 0 {
		args = append(args, opts.Limit)
		b.WriteString(" LIMIT ")
		b.WriteString(placeholder(len(args)))
	}

	if opts.Offset > 0 {
		args = append(args, opts.Offset)
		b.WriteString(" OFFSET ")
		b.WriteString(placeholder(len(args)))
	}

	return statement{sql: b.String(), args: args}, nil
}

func buildCount(table string, conditions Fields) (statement, error) {
	if err := checkTable(table); err != nil {
		return statement{}, err
	}
	sql := "SELECT COUNT(*) FROM " + table
	if len(conditions) == 0 {
		return statement{sql: sql}, nil
	}
	where, args, err := whereEquals(conditions, 1, nil)
	if err != nil {
		return statement{}, err
	}
	return statement{sql: sql + " WHERE " + where, args: args}, nil
}

func buildUpdate(table, idColumn string, id any, fields Fields) (statement, error) {
	if len(fields) == 0 {
		return statement{}, ErrEmptyFields
	}
	if err := checkTable(table); err != nil {
		return statement{}, err
	}
	if err := checkColumn(idColumn); err != nil {
		return statement{}, err
	}
	cols, err := sortedColumns(fields)
	if err != nil {
		return statement{}, err
	}

	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = col + " = " + placeholder(i+1)
		args = append(args, fields[col])
	}
	args = append(args, id)

	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s RETURNING *",
		table, strings.Join(sets, ", "), idColumn, placeholder(len(args)))
	return statement{sql: sql, args: args}, nil
}

func buildDelete(table, idColumn string, id any) (statement, error) {
	if err := checkTable(table); err != nil {
		return statement{}, err
	}
	if err := checkColumn(idColumn); err != nil {
		return statement{}, err
	}
	sql := fmt.Sprintf("DELETE FROM %s WHERE %s = $1", table, idColumn)
	return statement{sql: sql, args: []any{id}}, nil
}

func buildCreateTable(table string, columns []Column) (statement, error) {
	if len(columns) == 0 {
		return statement{}, ErrEmptyFields
	}
	if err := checkTable(table); err != nil {
		return statement{}, err
	}
	defs := make([]string, len(columns))
	for i, c := range columns {
		if err := checkColumn(c.Name); err != nil {
			return statement{}, err
		}
		defs[i] = c.Name + " " + c.Type
	}
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", table, strings.Join(defs, ", "))
	return statement{sql: sql}, nil
}

// parseOrderBy validates "col [ASC|DESC], ..." and returns it normalised.
func parseOrderBy(orderBy string) (string, error) {
	terms := strings.Split(orderBy, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		parts := strings.Fields(term)
		switch len(parts) {
		case 1:
		case 2:
			dir := strings.ToUpper(parts[1])
			if dir != "ASC" && dir != "DESC" {
				return "", fmt.Errorf("%w: order direction %q", ErrInvalidIdentifier, parts[1])
			}
			parts[1] = dir
		default:
			return "", fmt.Errorf("%w: order term %q", ErrInvalidIdentifier, strings.TrimSpace(term))
		}
		if err := checkColumn(parts[0]); err != nil {
			return "", err
		}
		out = append(out, strings.Join(parts, " "))
	}
	return strings.Join(out, ", "), nil
}
