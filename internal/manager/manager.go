// Package manager provides generic CRUD over any entity type described by a
// declarative field mapping, with an in-memory cache that mirrors the table.
package manager

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mesh-intelligence/wawi/pkg/types"
)

// Manager performs CRUD for one entity type and keeps the full row set
// cached. After every successful operation the cache equals the table.
// A Manager is not safe for concurrent use.
type Manager[T types.Entity] struct {
	conn    types.Conn
	mapping Mapping[T]
	items   []T
	log     zerolog.Logger
}

// RemoveOption adjusts Remove and RemoveMany.
type RemoveOption func(*removeOptions)

type removeOptions struct {
	silent bool
}

// Silent makes removing a missing id a successful no-op.
func Silent() RemoveOption {
	return func(o *removeOptions) { o.silent = true }
}

// New builds a Manager over conn and loads the table into the cache.
func New[T types.Entity](ctx context.Context, conn types.Conn, mapping Mapping[T], log zerolog.Logger) (*Manager[T], error) {
	if err := mapping.validate(); err != nil {
		return nil, err
	}
	m := &Manager[T]{
		conn:    conn,
		mapping: mapping,
		log:     log.With().Str("table", mapping.Table).Logger(),
	}
	if err := m.LoadAll(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

// SetConn switches the manager to another connection. The cache is left as
// is; call LoadAll to resynchronize.
func (m *Manager[T]) SetConn(conn types.Conn) {
	m.conn = conn
}

// LoadAll replaces the cache with the current table contents in id order.
// Rows that cannot be turned into a valid entity are logged and skipped.
// On error the cache is left unchanged.
func (m *Manager[T]) LoadAll(ctx context.Context) error {
	rows, err := m.conn.FetchAll(ctx, m.mapping.selectAllStmt())
	if err != nil {
		return fmt.Errorf("load %s: %w", m.mapping.Table, err)
	}

	items := make([]T, 0, len(rows))
	for _, row := range rows {
		item, err := m.mapping.fromRow(row)
		if err != nil {
			m.log.Warn().Err(err).Interface("id", row[m.mapping.IDColumn]).Msg("skipping unreadable row")
			continue
		}
		items = append(items, item)
	}
	m.items = items
	m.log.Info().Int("count", len(items)).Msg("loaded")
	return nil
}

// Items returns a copy of the cache in load/creation order.
func (m *Manager[T]) Items() []T {
	out := make([]T, len(m.items))
	for i, item := range m.items {
		out[i] = m.mapping.clone(item)
	}
	return out
}

// Len returns the number of cached items.
func (m *Manager[T]) Len() int { return len(m.items) }

// Get returns a copy of the cached item with the given id.
func (m *Manager[T]) Get(id int64) (T, bool) {
	if i := m.index(id); i >= 0 {
		return m.mapping.clone(m.items[i]), true
	}
	var zero T
	return zero, false
}

// Fetch reads one item straight from storage, bypassing the cache.
// Returns an error wrapping types.ErrNotFound if no row has the id.
func (m *Manager[T]) Fetch(ctx context.Context, id int64) (T, error) {
	var zero T
	rows, err := m.conn.FetchAll(ctx, m.mapping.selectByIDStmt(), id)
	if err != nil {
		return zero, fmt.Errorf("fetch %s %d: %w", m.mapping.Table, id, err)
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("fetch %s %d: %w", m.mapping.Table, id, types.ErrNotFound)
	}
	item, err := m.mapping.fromRow(rows[0])
	if err != nil {
		return zero, fmt.Errorf("fetch %s %d: %w", m.mapping.Table, id, err)
	}
	return item, nil
}

// Add validates item, inserts it, assigns the generated id to item and
// appends it to the cache. Validation failures return before storage is
// touched. Items that already carry an id are rejected with types.ErrState.
func (m *Manager[T]) Add(ctx context.Context, item T) error {
	if id := item.EntityID(); id != 0 {
		return fmt.Errorf("add %s: item already has id %d: %w", m.mapping.Table, id, types.ErrState)
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("add %s: %w", m.mapping.Table, err)
	}

	id, err := m.conn.Insert(ctx, m.mapping.insertStmt(), m.mapping.IDColumn, m.mapping.values(item)...)
	if err != nil {
		return fmt.Errorf("add %s: %w", m.mapping.Table, err)
	}
	item.SetEntityID(id)
	m.items = append(m.items, m.mapping.clone(item))

	m.log.Info().Int64("id", id).Msg("added")
	return nil
}

// Update writes every mapped column of item to the row with item's id and
// replaces the cached entry in place. Items without an id are rejected with
// types.ErrState; a missing row returns types.ErrNotFound.
func (m *Manager[T]) Update(ctx context.Context, item T) error {
	id := item.EntityID()
	if id == 0 {
		return fmt.Errorf("update %s: item has no id: %w", m.mapping.Table, types.ErrState)
	}
	if err := item.Validate(); err != nil {
		return fmt.Errorf("update %s %d: %w", m.mapping.Table, id, err)
	}

	args := append(m.mapping.values(item), id)
	n, err := m.conn.Exec(ctx, m.mapping.updateStmt(), args...)
	if err != nil {
		return fmt.Errorf("update %s %d: %w", m.mapping.Table, id, err)
	}
	if n == 0 {
		m.drop(id)
		return fmt.Errorf("update %s %d: %w", m.mapping.Table, id, types.ErrNotFound)
	}

	if i := m.index(id); i >= 0 {
		m.items[i] = m.mapping.clone(item)
	} else if err := m.LoadAll(ctx); err != nil {
		// The row exists but was never cached; reload keeps order by id.
		return fmt.Errorf("update %s %d: %w", m.mapping.Table, id, err)
	}

	m.log.Info().Int64("id", id).Msg("updated")
	return nil
}

// Remove deletes the row with id and drops it from the cache. A missing row
// returns types.ErrNotFound unless Silent is given.
func (m *Manager[T]) Remove(ctx context.Context, id int64, opts ...RemoveOption) error {
	var o removeOptions
	for _, opt := range opts {
		opt(&o)
	}

	n, err := m.conn.Exec(ctx, m.mapping.deleteStmt(), id)
	if err != nil {
		return fmt.Errorf("remove %s %d: %w", m.mapping.Table, id, err)
	}
	m.drop(id)

	if n == 0 {
		if o.silent {
			m.log.Debug().Int64("id", id).Msg("remove of missing id ignored")
			return nil
		}
		return fmt.Errorf("remove %s %d: %w", m.mapping.Table, id, types.ErrNotFound)
	}
	m.log.Info().Int64("id", id).Msg("removed")
	return nil
}

// RemoveItem removes item by its id.
func (m *Manager[T]) RemoveItem(ctx context.Context, item T, opts ...RemoveOption) error {
	return m.Remove(ctx, item.EntityID(), opts...)
}

// RemoveMany removes each id in turn and does not stop at failures. It
// returns the ids that were removed and, if any failed, a *types.BatchError
// carrying the cause for each failed id.
func (m *Manager[T]) RemoveMany(ctx context.Context, ids []int64, opts ...RemoveOption) ([]int64, error) {
	var removed []int64
	failed := make(map[int64]error)
	for _, id := range ids {
		if err := m.Remove(ctx, id, opts...); err != nil {
			failed[id] = err
			continue
		}
		removed = append(removed, id)
	}
	if len(failed) > 0 {
		m.log.Warn().Int("removed", len(removed)).Int("failed", len(failed)).Msg("batch remove incomplete")
		return removed, &types.BatchError{Failed: failed}
	}
	return removed, nil
}

func (m *Manager[T]) index(id int64) int {
	for i, item := range m.items {
		if item.EntityID() == id {
			return i
		}
	}
	return -1
}

func (m *Manager[T]) drop(id int64) {
	if i := m.index(id); i >= 0 {
		m.items = append(m.items[:i], m.items[i+1:]...)
	}
}
