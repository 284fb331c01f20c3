package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibard/nibard/dialect"
	"github.com/nibard/nibard/value"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		stmt Statement
		want Kind
	}{
		{Table("todos").Select(), KindSelect},
		{Insert("todos").Set("label", "a"), KindInsert},
		{Update("todos").Set("done", true), KindUpdate},
		{Delete("todos"), KindDelete},
		{CreateTable("todos").Column(Column("id", dialect.Auto).PrimaryKey()), KindDDL},
		{CreateIndex("todos_label").On("todos", "label"), KindDDL},
		{AlterTable("todos").RenameTo("tasks"), KindDDL},
		{DropTable("todos"), KindDDL},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			query, _ := build(t, dialect.SQLite, tt.stmt)
			assert.Equal(t, tt.want, KindOf(query))
		})
	}
	assert.Equal(t, KindOther, KindOf("PRAGMA foreign_keys = ON"))
	assert.Equal(t, KindSelect, KindOf("  select 1"))
	assert.Equal(t, "Kind(9)", Kind(9).String())
}

func TestStatsDriver(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)

	var (
		mu   sync.Mutex
		slow []QueryEvent
	)
	stats := NewStatsDriver(drv,
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, e QueryEvent) {
			mu.Lock()
			defer mu.Unlock()
			slow = append(slow, e)
		}),
	)
	assert.Equal(t, time.Duration(-1), stats.SlowThreshold())
	assert.Equal(t, dialect.Postgres, stats.Dialect())

	mock.ExpectQuery("SELECT * FROM todos").WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
	mock.ExpectExec("INSERT INTO todos (label) VALUES ($1)").
		WithArgs("dup").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	mock.ExpectExec("DELETE FROM todos WHERE id IN ($1, $2)").WithArgs(1, 2).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM todos").WillReturnError(errors.New("locked"))

	rows, err := QueryAll(ctx, stats, Table("todos").Select())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	_, err = Exec(ctx, stats, Insert("todos").Set("label", "dup"))
	require.Error(t, err)
	_, err = Exec(ctx, stats, Delete("todos").Filter(Col("id").In(1, 2)))
	require.NoError(t, err)
	_, err = Exec(ctx, stats, Delete("todos"))
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	s := stats.QueryStats().Stats()
	assert.Equal(t, int64(1), s.Count(KindSelect))
	assert.Equal(t, int64(1), s.Count(KindInsert))
	assert.Equal(t, int64(2), s.Count(KindDelete))
	assert.Equal(t, int64(0), s.Count(KindUpdate))
	assert.Equal(t, int64(4), s.Total())
	assert.Equal(t, int64(3), s.Params)
	assert.Equal(t, int64(1), s.Constraints)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(4), s.Slow)
	assert.True(t, strings.HasPrefix(s.String(), "select=1 insert=1 update=0 delete=2 ddl=0 params=3 "), s.String())
	assert.Contains(t, s.String(), "errors=1 constraints=1")

	require.Len(t, slow, 4)
	assert.Equal(t, KindInsert, slow[1].Kind)
	assert.Equal(t, []any{value.Text("dup")}, slow[1].Args)
	assert.Error(t, slow[1].Err)
	assert.Equal(t, "DELETE FROM todos WHERE id IN ($1, $2)", slow[2].Query)

	stats.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, stats.QueryStats().Stats())
	assert.Equal(t, time.Duration(0), StatsSnapshot{}.AvgDuration())
}

func TestStatsDriverThreshold(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.SQLite)
	var buf bytes.Buffer
	stats := NewStatsDriver(drv, WithSlowQueryLog(slog.New(slog.NewTextHandler(&buf, nil))))
	assert.Equal(t, 100*time.Millisecond, stats.SlowThreshold())

	mock.ExpectExec("DELETE FROM todos").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := Exec(ctx, stats, Delete("todos"))
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.QueryStats().Stats().Slow)
	assert.Empty(t, buf.String())

	stats = NewStatsDriver(drv, WithSlowThreshold(-1), WithSlowQueryLog(slog.New(slog.NewTextHandler(&buf, nil))))
	mock.ExpectExec("DELETE FROM todos").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = Exec(ctx, stats, Delete("todos"))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `msg="slow statement" kind=delete`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsTx(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.SQLite)
	shared := &QueryStats{}
	stats := NewStatsDriver(drv, WithQueryStats(shared))

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO todos (label) VALUES (?)").WithArgs("a").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery("SELECT COUNT(*) FROM todos").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(int64(1)))
	mock.ExpectCommit()

	tx, err := stats.Tx(ctx)
	require.NoError(t, err)
	_, err = Exec(ctx, tx, Insert("todos").Set("label", "a"))
	require.NoError(t, err)
	row, err := QueryRow(ctx, tx, Table("todos").Select(CountAll()))
	require.NoError(t, err)
	assert.Equal(t, 1, row.Len())
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Same(t, shared, stats.QueryStats())
	s := shared.Stats()
	assert.Equal(t, int64(1), s.Count(KindInsert))
	assert.Equal(t, int64(1), s.Count(KindSelect))
	assert.Equal(t, int64(1), s.Params)
}

func debugLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

func TestDebugDriver(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.Postgres)

	var buf bytes.Buffer
	debug := NewDebugDriver(drv, DebugWithLogger(debugLogger(&buf)))

	mock.ExpectExec("UPDATE todos SET done = $1").WithArgs(true).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id FROM todos").WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := Exec(ctx, debug, Update("todos").Set("done", true))
	require.NoError(t, err)

	tx, err := debug.Tx(ctx)
	require.NoError(t, err)
	rows, err := QueryAll(ctx, tx, Table("todos").Select(Col("id")))
	require.NoError(t, err)
	assert.Empty(t, rows)
	require.NoError(t, tx.Rollback())
	require.NoError(t, mock.ExpectationsWereMet())

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], `msg=exec kind=update query="UPDATE todos SET done = $1" params=1`)
	assert.Contains(t, lines[0], "dialect=postgres")
	assert.Contains(t, lines[1], "msg=begin")
	assert.Contains(t, lines[2], `msg="tx query" kind=select query="SELECT id FROM todos" params=0`)
	assert.Contains(t, lines[3], "msg=rollback")
}

func TestDebugOverStats(t *testing.T) {
	ctx := context.Background()
	drv, mock := mockDriver(t, dialect.SQLite)
	var buf bytes.Buffer
	stats := NewStatsDriver(drv)
	r := NewDebugDriver(stats, DebugWithLogger(debugLogger(&buf)))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS todos (id INTEGER PRIMARY KEY AUTOINCREMENT)").
		WillReturnResult(sqlmock.NewResult(0, 0))
	_, err := Exec(ctx, r, CreateTable("todos").Column(Column("id", dialect.Auto).PrimaryKey()))
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, int64(1), stats.QueryStats().Stats().Count(KindDDL))
	assert.Contains(t, buf.String(), "kind=ddl")
	assert.Equal(t, dialect.SQLite, r.Dialect())
}

func TestOpenWithStats(t *testing.T) {
	ctx := context.Background()
	drv, err := OpenWithStats("sqlite:" + filepath.Join(t.TempDir(), "stats.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = drv.Close() })

	_, err = Exec(ctx, drv, CreateTable("todos").Column(Column("id", dialect.Auto).PrimaryKey()))
	require.NoError(t, err)
	_, err = Exec(ctx, drv, Insert("todos").Set("id", 1))
	require.NoError(t, err)
	_, err = Exec(ctx, drv, Insert("todos").Set("id", 1))
	require.Error(t, err)

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), s.Count(KindDDL))
	assert.Equal(t, int64(2), s.Count(KindInsert))
	assert.Equal(t, int64(1), s.Constraints)
	assert.Equal(t, int64(0), s.Errors)
}
