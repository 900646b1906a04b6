package database

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/zezman/directory/pkg/errors"
)

const (
	tracerName = "github.com/zezman/directory/pkg/database"

	// maxStatementLength caps db.statement on spans and in slow query logs.
	maxStatementLength = 2048
)

// Span attribute keys set by TraceQuery and RecordRows.
const (
	attrRows     = attribute.Key("db.rows")
	attrNotFound = attribute.Key("db.not_found")
)

var slowQueryCfg struct {
	mu        sync.RWMutex
	threshold time.Duration
	logger    *slog.Logger
}

// SetSlowQueryLogging makes TraceQuery log a warning for every query slower
// than threshold. A zero threshold disables it.
func SetSlowQueryLogging(threshold time.Duration, logger *slog.Logger) {
	slowQueryCfg.mu.Lock()
	defer slowQueryCfg.mu.Unlock()
	slowQueryCfg.threshold = threshold
	slowQueryCfg.logger = logger
}

func getSlowQueryConfig() (time.Duration, *slog.Logger) {
	slowQueryCfg.mu.RLock()
	defer slowQueryCfg.mu.RUnlock()
	return slowQueryCfg.threshold, slowQueryCfg.logger
}

type tracedQueryKey struct{}

// tracedQuery is the in-flight state of one TraceQuery call.
type tracedQuery struct {
	span      trace.Span
	operation string
	statement string
	start     time.Time
	rows      atomic.Int64 // -1 until RecordRows is called
}

// TraceQuery starts a client span for a database operation. Call the returned
// func with the operation's error when it completes:
//
//	ctx, end := database.TraceQuery(ctx, "SearchBusinesses", query)
//	defer func() { end(err) }()
//
// A missing row (pgx.ErrNoRows or a NOT_FOUND app error) is tagged on the
// span but does not mark it failed.
func TraceQuery(ctx context.Context, operation, statement string) (context.Context, func(error)) {
	q := &tracedQuery{
		operation: operation,
		statement: compactStatement(statement),
		start:     time.Now(),
	}
	q.rows.Store(-1)

	ctx, q.span = otel.Tracer(tracerName).Start(ctx, "db."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", q.statement),
		),
	)
	ctx = context.WithValue(ctx, tracedQueryKey{}, q)

	return ctx, func(err error) { q.end(ctx, err) }
}

// RecordRows attaches the number of rows a traced query returned or changed.
// It is a no-op when ctx does not come from TraceQuery.
func RecordRows(ctx context.Context, n int) {
	q, ok := ctx.Value(tracedQueryKey{}).(*tracedQuery)
	if !ok {
		return
	}
	q.rows.Store(int64(n))
	q.span.SetAttributes(attrRows.Int(n))
}

func (q *tracedQuery) end(ctx context.Context, err error) {
	switch {
	case err == nil:
	case isNotFound(err):
		q.span.SetAttributes(attrNotFound.Bool(true))
	default:
		q.span.RecordError(err)
		q.span.SetStatus(codes.Error, err.Error())
	}
	q.span.End()

	threshold, logger := getSlowQueryConfig()
	if threshold <= 0 || logger == nil {
		return
	}
	elapsed := time.Since(q.start)
	if elapsed < threshold {
		return
	}

	attrs := []any{
		slog.String("operation", q.operation),
		slog.String("statement", q.statement),
		slog.Duration("duration", elapsed),
	}
	if rows := q.rows.Load(); rows >= 0 {
		attrs = append(attrs, slog.Int64("rows", rows))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	logger.WarnContext(ctx, "slow query detected", attrs...)
}

func isNotFound(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, apperrors.ErrNotFound)
}

// compactStatement collapses the indentation of multi-line SQL literals to
// single spaces and truncates at maxStatementLength bytes.
func compactStatement(statement string) string {
	s := strings.Join(strings.Fields(statement), " ")
	if len(s) > maxStatementLength {
		s = s[:maxStatementLength] + "..."
	}
	return s
}
