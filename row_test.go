package pgcrud

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRow(t *testing.T) {
	row := NewRow([]string{"id", "name", "email"}, []any{int32(1), "Ann", nil})

	assert.Equal(t, 3, row.Len())
	assert.Equal(t, []string{"id", "name", "email"}, row.Columns())
	assert.Equal(t, []any{int32(1), "Ann", nil}, row.Values())

	v, ok := row.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Ann", v)

	v, ok = row.Get("email")
	assert.True(t, ok, "NULL columns are present")
	assert.Nil(t, v)

	_, ok = row.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, map[string]any{"id": int32(1), "name": "Ann", "email": nil}, row.Map())
}

func TestRow_CopiesAreIndependent(t *testing.T) {
	cols := []string{"a", "b"}
	row := NewRow(cols, []any{1, 2})
	cols[0] = "z"

	assert.Equal(t, []string{"a", "b"}, row.Columns())

	got := row.Columns()
	got[1] = "y"
	assert.Equal(t, []string{"a", "b"}, row.Columns())

	m := row.Map()
	m["a"] = 100
	v, _ := row.Get("a")
	assert.Equal(t, 1, v)
}

func TestRow_ShortValues(t *testing.T) {
	row := NewRow([]string{"a", "b"}, []any{1})
	v, ok := row.Get("b")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestRow_MarshalJSON(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	row := NewRow(
		[]string{"name", "id", "created_at", "note"},
		[]any{"Ann", int32(1), created, nil},
	)

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"Ann","id":1,"created_at":"2024-01-02T03:04:05Z","note":null}`, string(data))

	rows := []*Row{row, NewRow(nil, nil)}
	data, err = json.Marshal(rows)
	require.NoError(t, err)
	assert.Equal(t, `[{"name":"Ann","id":1,"created_at":"2024-01-02T03:04:05Z","note":null},{}]`, string(data))
}

func TestRow_MarshalJSONError(t *testing.T) {
	row := NewRow([]string{"ch"}, []any{make(chan int)})
	_, err := json.Marshal(row)
	assert.Error(t, err)
}

func TestRow_DuplicateColumns(t *testing.T) {
	row := NewRow([]string{"id", "name", "id"}, []any{int32(1), "Ann", int32(7)})

	assert.Equal(t, 3, row.Len())
	assert.Equal(t, []string{"id", "name", "id"}, row.Columns())
	assert.Equal(t, []any{int32(1), "Ann", int32(7)}, row.Values())

	v, ok := row.Get("id")
	assert.True(t, ok)
	assert.Equal(t, int32(1), v, "first column with the name wins")
	assert.Equal(t, map[string]any{"id": int32(1), "name": "Ann"}, row.Map())

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"id":1,"name":"Ann"}`, string(data))
}
