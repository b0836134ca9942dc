// Package ledger is the durable record of users, posts, engagement,
// notifications and messages. Writes go through Store.WithTx; reads used by
// the feed assembler run on the pool.
package ledger

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"
)

type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// conn carries the read queries shared by Store and Tx.
type conn struct {
	q       dbtx
	dialect string
}

type Store struct {
	conn
	db    *sql.DB
	clock Clock
}

// New wraps an already migrated database.
func New(db *sql.DB, dialect string, opts ...Option) *Store {
	s := &Store{
		conn:  conn{q: db, dialect: dialect},
		db:    db,
		clock: systemClock{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Tx is a scoped write transaction. It is only valid inside the function
// passed to WithTx.
type Tx struct {
	conn
	clock Clock
}

// Now is the ledger time used for every row stamped in this transaction.
func (tx *Tx) Now() time.Time {
	return tx.clock.Now().UTC().Truncate(time.Microsecond)
}

// WithTx begins a transaction, runs fn and commits when fn returns nil. Any
// error or panic rolls the transaction back; panics are re-raised.
//
// Store methods must not be called from inside fn: on sqlite the pool holds a
// single connection.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx *Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return translate(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
			return
		}
		err = translate(sqlTx.Commit())
	}()

	err = fn(ctx, &Tx{conn: conn{q: sqlTx, dialect: s.dialect}, clock: s.clock})
	return err
}

func (c conn) rebind(query string) string {
	if c.dialect != DriverPostgres {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.q.ExecContext(ctx, c.rebind(query), args...)
	return res, translate(err)
}

func (c conn) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	rows, err := c.q.QueryContext(ctx, c.rebind(query), args...)
	return rows, translate(err)
}

func (c conn) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return c.q.QueryRowContext(ctx, c.rebind(query), args...)
}

// insert runs an INSERT ... RETURNING id statement.
func (c conn) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	if err := c.queryRow(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
		return 0, translate(err)
	}
	return id, nil
}

// affected runs a statement and reports how many rows it touched.
func (c conn) affected(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullable(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}

func ptr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
