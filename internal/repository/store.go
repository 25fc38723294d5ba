package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"

	"github.com/joseph-ayodele/study-notebook/internal/common"
	"github.com/joseph-ayodele/study-notebook/internal/entity"
)

// RecordStore is a schema-less record API over one ent driver: insert a
// record, patch records matching a predicate, select records. Every failure
// comes back as *common.StoreError.
type RecordStore struct {
	drv     *entsql.Driver
	dialect string
	logger  *slog.Logger
}

func NewRecordStore(db *DB, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{drv: db.Driver, dialect: db.Dialect, logger: logger}
}

// Insert adds one row built from rec.
func (s *RecordStore) Insert(ctx context.Context, table string, rec entity.Record) error {
	if len(rec) == 0 {
		return s.fail("insert", table, errors.New("empty record"))
	}
	cols := sortedKeys(rec)
	vals := make([]any, len(cols))
	for i, c := range cols {
		vals[i] = rec[c]
	}
	query, args := entsql.Dialect(s.dialect).
		Insert(table).
		Columns(cols...).
		Values(vals...).
		Query()

	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return s.fail("insert", table, err)
	}
	s.logger.Debug("record inserted", "table", table, "columns", len(cols))
	return nil
}

// Update sets the columns of patch on every row whose columns equal match.
// Matching no row is not an error.
func (s *RecordStore) Update(ctx context.Context, table string, patch, match entity.Record) error {
	if len(patch) == 0 {
		return s.fail("update", table, errors.New("empty patch"))
	}
	if len(match) == 0 {
		return s.fail("update", table, errors.New("update without match predicate"))
	}
	upd := entsql.Dialect(s.dialect).Update(table)
	for _, c := range sortedKeys(patch) {
		upd.Set(c, patch[c])
	}
	preds := make([]*entsql.Predicate, 0, len(match))
	for _, c := range sortedKeys(match) {
		preds = append(preds, entsql.EQ(c, match[c]))
	}
	query, args := upd.Where(entsql.And(preds...)).Query()

	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return s.fail("update", table, err)
	}
	n, _ := res.RowsAffected()
	s.logger.Debug("records updated", "table", table, "rows_affected", n)
	return nil
}

// Select reads the rows matching q. Text columns come back as string.
func (s *RecordStore) Select(ctx context.Context, table string, q entity.SelectQuery) ([]entity.Record, error) {
	b := entsql.Dialect(s.dialect)
	sel := b.Select(q.Columns...).From(b.Table(table))
	if len(q.Where) > 0 {
		preds := make([]*entsql.Predicate, 0, len(q.Where))
		for _, c := range q.Where {
			p, err := predicate(c)
			if err != nil {
				return nil, s.fail("select", table, err)
			}
			preds = append(preds, p)
		}
		sel.Where(entsql.And(preds...))
	}
	if len(q.OrderBy) > 0 {
		sel.OrderBy(q.OrderBy...)
	}
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	query, args := sel.Query()

	rows := &entsql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, s.fail("select", table, err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, s.fail("select", table, err)
	}
	var out []entity.Record
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, s.fail("select", table, err)
		}
		rec := make(entity.Record, len(cols))
		for i, c := range cols {
			if b, ok := vals[i].([]byte); ok {
				rec[c] = string(b)
				continue
			}
			rec[c] = vals[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.fail("select", table, err)
	}
	return out, nil
}

func predicate(c entity.Cond) (*entsql.Predicate, error) {
	switch c.Op {
	case entity.CondEQ, "":
		return entsql.EQ(c.Column, c.Value), nil
	case entity.CondLTE:
		return entsql.LTE(c.Column, c.Value), nil
	case entity.CondGTE:
		return entsql.GTE(c.Column, c.Value), nil
	default:
		return nil, fmt.Errorf("unsupported operator %q on %s", c.Op, c.Column)
	}
}

func (s *RecordStore) fail(op, table string, err error) error {
	se := toStoreError(op, table, err)
	s.logger.Error("record store failure", "op", op, "table", table, "code", se.Code, "error", err)
	return se
}

// toStoreError lifts backend errors into a StoreError, keeping the SQLSTATE
// or SQLite result code when there is one.
func toStoreError(op, table string, err error) *common.StoreError {
	se := &common.StoreError{
		Op:      op,
		Table:   table,
		Code:    common.StoreErrorCode,
		Message: err.Error(),
		Cause:   err,
	}
	var pgErr *pgconn.PgError
	var liteErr *sqlite.Error
	switch {
	case errors.As(err, &pgErr):
		se.Code = pgErr.Code
		se.Message = pgErr.Message
	case errors.As(err, &liteErr):
		se.Code = fmt.Sprintf("SQLITE_%d", liteErr.Code())
	case errors.Is(err, context.Canceled):
		se.Code = "CANCELED"
	case errors.Is(err, context.DeadlineExceeded):
		se.Code = "DEADLINE_EXCEEDED"
	}
	return se
}

func sortedKeys(r entity.Record) []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
