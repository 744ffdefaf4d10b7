package memory

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pulse-companion-be/internal/repository/specification"

	"github.com/patrickmn/go-cache"
)

// ErrUnsupportedSpecification is returned for specifications the in-memory
// store cannot evaluate.
var ErrUnsupportedSpecification = errors.New("specification not supported by memory repository")

// columnFunc exposes a record's column value by its database column name.
type columnFunc[T any] func(record *T, column string) (any, bool)

// table keeps copies of records in a go-cache instance that never expires.
type table[T any] struct {
	cache  *cache.Cache
	idOf   func(*T) string
	column columnFunc[T]
}

func newTable[T any](idOf func(*T) string, column columnFunc[T]) *table[T] {
	return &table[T]{
		cache:  cache.New(cache.NoExpiration, 0),
		idOf:   idOf,
		column: column,
	}
}

func (t *table[T]) put(record *T) {
	cp := *record
	t.cache.Set(t.idOf(record), &cp, cache.NoExpiration)
}

func (t *table[T]) delete(id string) {
	t.cache.Delete(id)
}

func (t *table[T]) deleteWhere(column string, value any) {
	for key, item := range t.cache.Items() {
		if v, ok := t.column(item.Object.(*T), column); ok && v == value {
			t.cache.Delete(key)
		}
	}
}

// query evaluates specs in order. Filters narrow the rows, OrderBy clauses are
// applied as a stable multi-key sort and Pagination is applied last.
func (t *table[T]) query(specs ...specification.Specification) ([]*T, error) {
	items := t.cache.Items()
	rows := make([]*T, 0, len(items))
	for _, item := range items {
		cp := *item.Object.(*T)
		rows = append(rows, &cp)
	}
	sort.Slice(rows, func(i, j int) bool { return t.idOf(rows[i]) < t.idOf(rows[j]) })

	var orders []specification.OrderBy
	var page *specification.Pagination
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.OrderBy:
			orders = append(orders, s)
		case specification.Pagination:
			p := s
			page = &p
		default:
			keep, err := t.predicate(spec)
			if err != nil {
				return nil, err
			}
			rows = filter(rows, keep)
		}
	}

	if len(orders) > 0 {
		sort.SliceStable(rows, func(i, j int) bool {
			for _, o := range orders {
				a, _ := t.column(rows[i], o.Field)
				b, _ := t.column(rows[j], o.Field)
				c := compare(a, b)
				if c == 0 {
					continue
				}
				if o.Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	if page != nil {
		if page.Offset >= len(rows) {
			return []*T{}, nil
		}
		if page.Offset > 0 {
			rows = rows[page.Offset:]
		}
		if page.Limit > 0 && page.Limit < len(rows) {
			rows = rows[:page.Limit]
		}
	}
	return rows, nil
}

func (t *table[T]) predicate(spec specification.Specification) (func(*T) bool, error) {
	equals := func(column string, want any) func(*T) bool {
		return func(r *T) bool {
			v, ok := t.column(r, column)
			return ok && v == want
		}
	}

	switch s := spec.(type) {
	case specification.ByPatientKey:
		return equals("id", s.ID), nil
	case specification.ByPatientID:
		return equals("patient_id", s.PatientID), nil
	case specification.AlertsOnly:
		return equals("should_alert", true), nil
	case specification.RecordedSince:
		return func(r *T) bool {
			v, _ := t.column(r, "recorded_at")
			ts, ok := v.(time.Time)
			return ok && !ts.Before(s.Since)
		}, nil
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedSpecification, spec)
}

func filter[T any](rows []*T, keep func(*T) bool) []*T {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func compare(a, b any) int {
	switch av := a.(type) {
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case int:
		if bv, ok := b.(int); ok {
			return av - bv
		}
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	}
	return 0
}
