package database

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/Kumar-Vedant/CrowdGraph-sub000/internal/metrics"
)

// metricsTracer implements pgx.QueryTracer to feed the db_* metrics.
type metricsTracer struct{}

var _ pgx.QueryTracer = (*metricsTracer)(nil)

type queryContextKey struct{}

type queryContext struct {
	startTime time.Time
	queryName string
}

func (t *metricsTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	qctx := queryContext{
		startTime: time.Now(),
		queryName: queryLabel(data.SQL),
	}
	return context.WithValue(ctx, queryContextKey{}, qctx)
}

func (t *metricsTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	qctx, ok := ctx.Value(queryContextKey{}).(queryContext)
	if !ok {
		return
	}

	duration := time.Since(qctx.startTime).Seconds()
	metrics.DBQueryDuration.WithLabelValues(qctx.queryName).Observe(duration)

	if data.Err != nil {
		metrics.DBErrorsTotal.WithLabelValues(qctx.queryName).Inc()
	}
}

// queryLabel reduces a SQL statement to its leading verb and first named
// table, keeping label cardinality bounded. "SELECT ... FROM proposals ..."
// becomes "select_proposals".
func queryLabel(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "unknown"
	}

	verb := strings.ToLower(fields[0])

	var table string
	for i, field := range fields {
		switch strings.ToUpper(field) {
		case "FROM", "INTO", "UPDATE", "TABLE":
			for _, candidate := range fields[i+1:] {
				switch strings.ToUpper(candidate) {
				case "IF", "NOT", "EXISTS":
					continue
				}
				table = strings.ToLower(strings.Trim(candidate, `"(,`))
				break
			}
		}
		if table != "" {
			break
		}
	}

	if table == "" {
		return verb
	}
	return verb + "_" + table
}
