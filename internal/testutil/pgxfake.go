// Package testutil holds fakes shared by repository and handler tests.
package testutil

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SimpleRow is a pgx.Row backed by a scan function; a nil function behaves like no rows.
type SimpleRow struct {
	scan func(dest ...any) error
}

func NewSimpleRow(scanner func(dest ...any) error) SimpleRow {
	return SimpleRow{scan: scanner}
}

// ValuesRow returns a row that assigns values to the scan destinations in order.
func ValuesRow(values ...any) SimpleRow {
	return NewSimpleRow(func(dest ...any) error { return AssignAll(dest, values) })
}

// ErrRow returns a row whose Scan fails with err.
func ErrRow(err error) SimpleRow {
	return NewSimpleRow(func(...any) error { return err })
}

func (r SimpleRow) Scan(dest ...any) error {
	if r.scan == nil {
		return pgx.ErrNoRows
	}
	return r.scan(dest...)
}

// Rows is an in-memory pgx.Rows over fixed value tuples.
type Rows struct {
	Data [][]any
	idx  int
}

func NewRows(data ...[]any) *Rows {
	return &Rows{Data: data}
}

func (r *Rows) Next() bool {
	if r.idx >= len(r.Data) {
		return false
	}
	r.idx++
	return true
}

func (r *Rows) Scan(dest ...any) error {
	if r.idx == 0 || r.idx > len(r.Data) {
		return pgx.ErrNoRows
	}
	return AssignAll(dest, r.Data[r.idx-1])
}

func (r *Rows) Err() error { return nil }

func (r *Rows) Close() {}

func (r *Rows) CommandTag() pgconn.CommandTag { return pgconn.CommandTag{} }

func (r *Rows) Conn() *pgx.Conn { return nil }

func (r *Rows) FieldDescriptions() []pgconn.FieldDescription { return nil }

func (r *Rows) Values() ([]any, error) {
	return nil, fmt.Errorf("values not supported in test rows")
}

func (r *Rows) RawValues() [][]byte { return nil }

// AssignAll copies values into scan destinations, allocating pointers for
// nullable destinations such as **string.
func AssignAll(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("unexpected scan args: got %d want %d", len(dest), len(values))
	}
	for i := range dest {
		if err := assign(dest[i], values[i]); err != nil {
			return fmt.Errorf("column %d: %w", i, err)
		}
	}
	return nil
}

func assign(dest any, val any) error {
	dv := reflect.ValueOf(dest)
	if dv.Kind() != reflect.Pointer || dv.IsNil() {
		return fmt.Errorf("destination %T is not a pointer", dest)
	}
	target := dv.Elem()
	if val == nil {
		target.Set(reflect.Zero(target.Type()))
		return nil
	}
	v := reflect.ValueOf(val)
	switch {
	case v.Type().AssignableTo(target.Type()):
		target.Set(v)
	case target.Kind() == reflect.Pointer && v.Type().AssignableTo(target.Type().Elem()):
		p := reflect.New(target.Type().Elem())
		p.Elem().Set(v)
		target.Set(p)
	case v.Kind() == target.Kind() && v.Type().ConvertibleTo(target.Type()):
		target.Set(v.Convert(target.Type()))
	default:
		return fmt.Errorf("cannot assign %T to %T", val, dest)
	}
	return nil
}

// Call records one statement sent to FakeSQL.
type Call struct {
	Query string
	Args  []any
}

// FakeSQL implements the SQL executor contract with per-method hooks.
type FakeSQL struct {
	mu         sync.Mutex
	Calls      []Call
	OnExec     func(query string, args []any) (pgconn.CommandTag, error)
	OnQueryRow func(query string, args []any) pgx.Row
	OnQuery    func(query string, args []any) (pgx.Rows, error)
}

func (f *FakeSQL) record(query string, args []any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Query: query, Args: args})
}

func (f *FakeSQL) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.record(query, args)
	if f.OnExec == nil {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return f.OnExec(query, args)
}

func (f *FakeSQL) QueryRow(_ context.Context, query string, args ...any) pgx.Row {
	f.record(query, args)
	if f.OnQueryRow == nil {
		return SimpleRow{}
	}
	return f.OnQueryRow(query, args)
}

func (f *FakeSQL) Query(_ context.Context, query string, args ...any) (pgx.Rows, error) {
	f.record(query, args)
	if f.OnQuery == nil {
		return NewRows(), nil
	}
	return f.OnQuery(query, args)
}

// LastCall returns the most recent statement, or an empty Call.
func (f *FakeSQL) LastCall() Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return Call{}
	}
	return f.Calls[len(f.Calls)-1]
}
