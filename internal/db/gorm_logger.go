package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/arencloud/sitedeploy/internal/logging"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// gormLogger implements gorm's logger.Interface on top of logging.Logger.
// Statements are summarized (operation + table); raw SQL is never logged.
type gormLogger struct {
	l     logging.Logger
	level logger.LogLevel
}

func newGormLogger(l logging.Logger, lvl logger.LogLevel) *gormLogger {
	return &gormLogger{l: l, level: lvl}
}

func (g *gormLogger) LogMode(l logger.LogLevel) logger.Interface {
	c := *g
	c.level = l
	return &c
}

func (g *gormLogger) Info(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Info {
		g.l.Debug("gorm", "msg", msg, "args", data)
	}
}

func (g *gormLogger) Warn(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Warn {
		g.l.Info("gorm_warn", "msg", msg, "args", data)
	}
}

func (g *gormLogger) Error(_ context.Context, msg string, data ...interface{}) {
	if g.level >= logger.Error {
		g.l.Error("gorm_error", "msg", msg, "args", data)
	}
}

func (g *gormLogger) Trace(_ context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	sql, rows := fc()
	op, table := summarizeSQL(sql)
	fields := []any{"op", op, "table", table, "rows", rows, "durationMs", float64(time.Since(begin)) / 1e6}
	switch {
	case err != nil && errors.Is(err, gorm.ErrRecordNotFound):
		// lookups of unknown ids are expected
		if g.level >= logger.Info {
			g.l.Debug("gorm_sql", append(fields, "notFound", true)...)
		}
	case err != nil:
		if g.level >= logger.Error {
			g.l.Error("gorm_sql", append(fields, "error", err.Error())...)
		}
	case g.level >= logger.Info:
		g.l.Debug("gorm_sql", fields...)
	}
}

// summarizeSQL returns the statement's operation and target table, e.g. ("INSERT", "deployments").
func summarizeSQL(sql string) (op string, table string) {
	q := strings.ToUpper(strings.Join(strings.Fields(sql), " "))
	if q == "" {
		return "", ""
	}
	op, _, _ = strings.Cut(q, " ")
	rest, ok := afterTableKeyword(q)
	if !ok {
		return op, ""
	}
	if ws := strings.Fields(rest); len(ws) > 0 {
		table = strings.Trim(ws[0], "`\"(")
	}
	return op, strings.ToLower(table)
}

func afterTableKeyword(q string) (string, bool) {
	for _, prefix := range []string{"UPDATE ", "INSERT INTO ", "DELETE FROM "} {
		if strings.HasPrefix(q, prefix) {
			return q[len(prefix):], true
		}
	}
	for _, kw := range []string{" FROM ", " INTO "} {
		if idx := strings.Index(q, kw); idx >= 0 {
			return q[idx+len(kw):], true
		}
	}
	return "", false
}
