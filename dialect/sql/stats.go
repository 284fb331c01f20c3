package sql

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/nibard/nibard"
	"github.com/nibard/nibard/dialect"
)

// Kind is the kind of a rendered statement, taken from its leading keyword.
type Kind uint8

// Statement kinds.
const (
	KindOther Kind = iota
	KindSelect
	KindInsert
	KindUpdate
	KindDelete
	KindDDL
	numKinds
)

var kindNames = [numKinds]string{"other", "select", "insert", "update", "delete", "ddl"}

func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// KindOf classifies a query rendered by this package.
func KindOf(query string) Kind {
	word, _, _ := strings.Cut(strings.TrimSpace(query), " ")
	switch strings.ToUpper(word) {
	case "SELECT":
		return KindSelect
	case "INSERT":
		return KindInsert
	case "UPDATE":
		return KindUpdate
	case "DELETE":
		return KindDelete
	case "CREATE", "ALTER", "DROP":
		return KindDDL
	default:
		return KindOther
	}
}

// QueryStats counts the statements sent through a StatsDriver. It is safe
// for concurrent use.
type QueryStats struct {
	statements  [numKinds]atomic.Int64
	params      atomic.Int64
	duration    atomic.Int64
	slow        atomic.Int64
	errors      atomic.Int64
	constraints atomic.Int64
}

func (s *QueryStats) record(e QueryEvent, slow bool) {
	s.statements[e.Kind].Add(1)
	s.params.Add(int64(len(e.Args)))
	s.duration.Add(int64(e.Duration))
	if slow {
		s.slow.Add(1)
	}
	switch {
	case e.Err == nil:
	case nibard.IsConstraintError(e.Err):
		s.constraints.Add(1)
	default:
		s.errors.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	snap := StatsSnapshot{
		Params:      s.params.Load(),
		Duration:    time.Duration(s.duration.Load()),
		Slow:        s.slow.Load(),
		Errors:      s.errors.Load(),
		Constraints: s.constraints.Load(),
	}
	for k := range s.statements {
		snap.statements[k] = s.statements[k].Load()
	}
	return snap
}

// Reset sets every counter to zero.
func (s *QueryStats) Reset() {
	for k := range s.statements {
		s.statements[k].Store(0)
	}
	s.params.Store(0)
	s.duration.Store(0)
	s.slow.Store(0)
	s.errors.Store(0)
	s.constraints.Store(0)
}

// StatsSnapshot is a point-in-time copy of QueryStats.
type StatsSnapshot struct {
	statements [numKinds]int64
	// Params is the number of values bound across all statements.
	Params   int64
	Duration time.Duration
	Slow     int64
	// Errors counts failed statements other than constraint violations,
	// which are counted in Constraints.
	Errors      int64
	Constraints int64
}

// Count returns the number of statements of kind k.
func (s StatsSnapshot) Count(k Kind) int64 {
	if k >= numKinds {
		return 0
	}
	return s.statements[k]
}

// Total returns the number of statements of every kind.
func (s StatsSnapshot) Total() int64 {
	var n int64
	for _, c := range s.statements {
		n += c
	}
	return n
}

// AvgDuration returns the mean time per statement.
func (s StatsSnapshot) AvgDuration() time.Duration {
	if n := s.Total(); n > 0 {
		return s.Duration / time.Duration(n)
	}
	return 0
}

// String formats the snapshot as space separated key=value pairs.
func (s StatsSnapshot) String() string {
	var b strings.Builder
	for k := KindSelect; k < numKinds; k++ {
		fmt.Fprintf(&b, "%s=%d ", k, s.statements[k])
	}
	if n := s.statements[KindOther]; n > 0 {
		fmt.Fprintf(&b, "other=%d ", n)
	}
	fmt.Fprintf(&b, "params=%d duration=%s avg=%s slow=%d errors=%d constraints=%d",
		s.Params, s.Duration, s.AvgDuration(), s.Slow, s.Errors, s.Constraints)
	return b.String()
}

// QueryEvent describes one statement sent through a StatsDriver.
type QueryEvent struct {
	Kind     Kind
	Query    string
	Args     []any
	Duration time.Duration
	Err      error
}

// SlowQueryHook is called for every statement slower than the threshold.
type SlowQueryHook func(context.Context, QueryEvent)

// StatsDriver counts the statements run through a driver by kind, along
// with bound parameters, slow statements and failures.
type StatsDriver struct {
	dialect.Driver
	stats     *QueryStats
	threshold time.Duration
	hook      SlowQueryHook
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is counted as
// slow. The default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) { s.threshold = d }
}

// WithSlowQueryHook sets the function called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) { s.hook = hook }
}

// WithSlowQueryLog logs slow statements as warnings on logger, or on the
// default logger when logger is nil.
func WithSlowQueryLog(logger *slog.Logger) StatsOption {
	if logger == nil {
		logger = slog.Default()
	}
	return WithSlowQueryHook(func(ctx context.Context, e QueryEvent) {
		logger.WarnContext(ctx, "slow statement",
			"kind", e.Kind, "duration", e.Duration, "query", e.Query, "params", len(e.Args))
	})
}

// WithQueryStats makes the driver count into stats, so several drivers can
// share one set of counters.
func WithQueryStats(stats *QueryStats) StatsOption {
	return func(s *StatsDriver) { s.stats = stats }
}

// NewStatsDriver wraps drv with statement counting.
//
//	drv, _ := sql.Open("postgres://localhost/todos")
//	sd := sql.NewStatsDriver(drv, sql.WithSlowQueryLog(nil))
//	_, err := sql.QueryAll(ctx, sd, sql.Table("todos").Select())
//	fmt.Println(sd.QueryStats().Stats())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Driver:    drv,
		stats:     &QueryStats{},
		threshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the counters of the driver.
func (d *StatsDriver) QueryStats() *QueryStats { return d.stats }

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration { return d.threshold }

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, query, args, func() error { return d.Driver.Query(ctx, query, args, v) })
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, query, args, func() error { return d.Driver.Exec(ctx, query, args, v) })
}

func (d *StatsDriver) observe(ctx context.Context, query string, args any, run func() error) error {
	start := time.Now()
	err := run()
	e := QueryEvent{Kind: KindOf(query), Query: query, Duration: time.Since(start), Err: err}
	e.Args, _ = args.([]any)
	slow := e.Duration > d.threshold
	d.stats.record(e, slow)
	if slow && d.hook != nil {
		d.hook(ctx, e)
	}
	return err
}

// Tx starts a transaction whose statements are counted too.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &StatsTx{Tx: tx, driver: d}, nil
}

// StatsTx is a transaction started by a StatsDriver.
type StatsTx struct {
	dialect.Tx
	driver *StatsDriver
}

// Query implements dialect.ExecQuerier.
func (tx *StatsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, query, args, func() error { return tx.Tx.Query(ctx, query, args, v) })
}

// Exec implements dialect.ExecQuerier.
func (tx *StatsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.driver.observe(ctx, query, args, func() error { return tx.Tx.Exec(ctx, query, args, v) })
}

// DebugDriver logs every statement at debug level before running it.
type DebugDriver struct {
	dialect.Driver
	logger *slog.Logger
}

// DebugOption configures a DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLogger sets the logger statements are written to. The default
// is slog.Default().
func DebugWithLogger(logger *slog.Logger) DebugOption {
	return func(d *DebugDriver) { d.logger = logger }
}

// NewDebugDriver wraps drv with statement logging. It can wrap a
// StatsDriver, and the other way around.
func NewDebugDriver(drv dialect.Driver, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{Driver: drv, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func logStatement(ctx context.Context, l *slog.Logger, d dialect.Dialect, msg, query string, args any) {
	var n int
	if a, ok := args.([]any); ok {
		n = len(a)
	}
	l.DebugContext(ctx, msg, "kind", KindOf(query), "query", query, "params", n, "args", args, "dialect", d)
}

// Query implements dialect.ExecQuerier.
func (d *DebugDriver) Query(ctx context.Context, query string, args, v any) error {
	logStatement(ctx, d.logger, d.Dialect(), "query", query, args)
	return d.Driver.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (d *DebugDriver) Exec(ctx context.Context, query string, args, v any) error {
	logStatement(ctx, d.logger, d.Dialect(), "exec", query, args)
	return d.Driver.Exec(ctx, query, args, v)
}

// Tx starts a transaction that logs its statements and its outcome.
func (d *DebugDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	d.logger.DebugContext(ctx, "begin", "dialect", d.Dialect())
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &DebugTx{Tx: tx, logger: d.logger}, nil
}

// DebugTx is a transaction started by a DebugDriver.
type DebugTx struct {
	dialect.Tx
	logger *slog.Logger
}

// Query implements dialect.ExecQuerier.
func (tx *DebugTx) Query(ctx context.Context, query string, args, v any) error {
	logStatement(ctx, tx.logger, tx.Dialect(), "tx query", query, args)
	return tx.Tx.Query(ctx, query, args, v)
}

// Exec implements dialect.ExecQuerier.
func (tx *DebugTx) Exec(ctx context.Context, query string, args, v any) error {
	logStatement(ctx, tx.logger, tx.Dialect(), "tx exec", query, args)
	return tx.Tx.Exec(ctx, query, args, v)
}

// Commit commits the transaction.
func (tx *DebugTx) Commit() error {
	tx.logger.Debug("commit", "dialect", tx.Dialect())
	return tx.Tx.Commit()
}

// Rollback rolls the transaction back.
func (tx *DebugTx) Rollback() error {
	tx.logger.Debug("rollback", "dialect", tx.Dialect())
	return tx.Tx.Rollback()
}

var (
	_ dialect.Driver = (*StatsDriver)(nil)
	_ dialect.Tx     = (*StatsTx)(nil)
	_ dialect.Driver = (*DebugDriver)(nil)
	_ dialect.Tx     = (*DebugTx)(nil)
	_ Runner         = (*StatsDriver)(nil)
	_ Runner         = (*StatsTx)(nil)
	_ Runner         = (*DebugDriver)(nil)
	_ Runner         = (*DebugTx)(nil)
)

// OpenWithStats opens the database named by dsn and counts its statements.
func OpenWithStats(dsn string, opts ...StatsOption) (*StatsDriver, error) {
	drv, err := Open(dsn)
	if err != nil {
		return nil, err
	}
	return NewStatsDriver(drv, opts...), nil
}
