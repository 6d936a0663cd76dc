package main

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/yuku/pgcrud"
)

var (
	integerLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)$`)
	floatLiteral   = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][-+]?[0-9]+)?$`)
)

// parseValue turns a command-line argument into a bind parameter. "null"
// is NULL; anything else is sent as text and the server converts it to the
// column type. With typed set, plain decimal integers, floats and
// true/false are bound as Go values instead.
func parseValue(s string, typed bool) any {
	if s == "null" {
		return nil
	}
	if !typed {
		return s
	}
	if integerLiteral.MatchString(s) {
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		return s
	}
	if floatLiteral.MatchString(s) {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	}
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

func splitAssignment(arg string) (string, string, error) {
	key, value, ok := strings.Cut(arg, "=")
	if !ok || key == "" {
		return "", "", fmt.Errorf("expected KEY=VALUE, got %q", arg)
	}
	return key, value, nil
}

// parseFields parses KEY=VALUE arguments into Fields.
func parseFields(args []string, typed bool) (pgcrud.Fields, error) {
	fields := make(pgcrud.Fields, len(args))
	for _, arg := range args {
		key, value, err := splitAssignment(arg)
		if err != nil {
			return nil, err
		}
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("column %q given more than once", key)
		}
		fields[key] = parseValue(value, typed)
	}
	return fields, nil
}

// parseColumns parses NAME=TYPE arguments, keeping their order.
func parseColumns(args []string) ([]pgcrud.Column, error) {
	columns := make([]pgcrud.Column, 0, len(args))
	for _, arg := range args {
		name, typ, err := splitAssignment(arg)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(typ) == "" {
			return nil, fmt.Errorf("column %q has no type", name)
		}
		columns = append(columns, pgcrud.Column{Name: name, Type: typ})
	}
	return columns, nil
}

func parseParams(args []string, typed bool) []any {
	params := make([]any, len(args))
	for i, arg := range args {
		params[i] = parseValue(arg, typed)
	}
	return params
}
