package manager

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

// Field maps one entity field to one column. Get reads the value to bind on
// INSERT/UPDATE; Set stores a fetched driver value back onto the entity.
type Field[T any] struct {
	Column string
	Get    func(T) any
	Set    func(T, any) error
}

// StringField maps a string field. NULL reads back as "".
func StringField[T any](column string, get func(T) string, set func(T, string)) Field[T] {
	return Field[T]{
		Column: column,
		Get:    func(e T) any { return get(e) },
		Set: func(e T, v any) error {
			s, err := cast.ToStringE(v)
			if err != nil {
				return err
			}
			set(e, s)
			return nil
		},
	}
}

// FloatField maps a float64 field.
func FloatField[T any](column string, get func(T) float64, set func(T, float64)) Field[T] {
	return Field[T]{
		Column: column,
		Get:    func(e T) any { return get(e) },
		Set: func(e T, v any) error {
			f, err := cast.ToFloat64E(v)
			if err != nil {
				return err
			}
			set(e, f)
			return nil
		},
	}
}

// IntField maps an int field.
func IntField[T any](column string, get func(T) int, set func(T, int)) Field[T] {
	return Field[T]{
		Column: column,
		Get:    func(e T) any { return get(e) },
		Set: func(e T, v any) error {
			n, err := cast.ToIntE(v)
			if err != nil {
				return err
			}
			set(e, n)
			return nil
		},
	}
}

// Mapping describes how an entity type is stored: its table, id column and
// the ordered field/column pairs used for every statement.
type Mapping[T types.Entity] struct {
	Table    string
	IDColumn string
	New      func() T
	Fields   []Field[T]
}

func (m Mapping[T]) validate() error {
	if m.Table == "" || m.IDColumn == "" || m.New == nil || len(m.Fields) == 0 {
		return fmt.Errorf("incomplete mapping for table %q", m.Table)
	}
	for _, f := range m.Fields {
		if f.Column == "" || f.Get == nil || f.Set == nil {
			return fmt.Errorf("incomplete field mapping in table %q", m.Table)
		}
	}
	return nil
}

func (m Mapping[T]) columns() []string {
	cols := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		cols[i] = f.Column
	}
	return cols
}

func (m Mapping[T]) insertStmt() string {
	cols := m.columns()
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", m.Table, strings.Join(cols, ", "), marks)
}

func (m Mapping[T]) updateStmt() string {
	sets := make([]string, len(m.Fields))
	for i, f := range m.Fields {
		sets[i] = f.Column + " = ?"
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", m.Table, strings.Join(sets, ", "), m.IDColumn)
}

func (m Mapping[T]) selectStmt() string {
	return fmt.Sprintf("SELECT %s, %s FROM %s", m.IDColumn, strings.Join(m.columns(), ", "), m.Table)
}

func (m Mapping[T]) selectAllStmt() string {
	return m.selectStmt() + " ORDER BY " + m.IDColumn
}

func (m Mapping[T]) selectByIDStmt() string {
	return m.selectStmt() + " WHERE " + m.IDColumn + " = ?"
}

func (m Mapping[T]) deleteStmt() string {
	return fmt.Sprintf("DELETE FROM %s WHERE %s = ?", m.Table, m.IDColumn)
}

// values returns the bind values for item in column order.
func (m Mapping[T]) values(item T) []any {
	vals := make([]any, len(m.Fields))
	for i, f := range m.Fields {
		vals[i] = f.Get(item)
	}
	return vals
}

// fromRow rebuilds an entity from a fetched row and checks its invariants.
func (m Mapping[T]) fromRow(row types.Row) (T, error) {
	item := m.New()
	raw, ok := row[m.IDColumn]
	if !ok {
		return item, fmt.Errorf("%w: row has no %s", types.ErrQuery, m.IDColumn)
	}
	id, err := cast.ToInt64E(raw)
	if err != nil || id <= 0 {
		return item, fmt.Errorf("%w: bad %s %v", types.ErrQuery, m.IDColumn, raw)
	}
	item.SetEntityID(id)

	for _, f := range m.Fields {
		if err := f.Set(item, row[f.Column]); err != nil {
			return item, fmt.Errorf("%w: column %s: %w", types.ErrQuery, f.Column, err)
		}
	}
	if err := item.Validate(); err != nil {
		return item, err
	}
	return item, nil
}

// clone copies item through the mapping so the cache never shares a pointer
// with callers.
func (m Mapping[T]) clone(item T) T {
	c := m.New()
	c.SetEntityID(item.EntityID())
	for _, f := range m.Fields {
		// Values produced by Get always round-trip through Set.
		_ = f.Set(c, f.Get(item))
	}
	return c
}
