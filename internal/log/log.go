package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
)

// LevelAudit sits between INFO and WARN so audit trails survive LOG_LEVEL=info.
const LevelAudit = slog.Level(2)

// UserIDKey is the fiber.Ctx local holding the authenticated user's id.
const UserIDKey = "user_id"

var (
	logger atomic.Pointer[slog.Logger]
	sink   atomic.Pointer[sinkBox]
)

type sinkBox struct{ w io.Writer }

func init() {
	Init(os.Stdout, "info")
}

// Init points the event log at w. Safe to call again (tests swap the sink).
func Init(w io.Writer, level string) {
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       parseLevel(level),
		ReplaceAttr: replaceAttr,
	})
	logger.Store(slog.New(h))
	sink.Store(&sinkBox{w: w})
}

// Output returns a writer that always forwards to the sink most recently passed to Init,
// for access-log middleware that should share the event stream.
func Output() io.Writer { return forward{} }

type forward struct{}

func (forward) Write(p []byte) (int, error) { return sink.Load().w.Write(p) }

func Logger() *slog.Logger { return logger.Load() }

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) > 0 {
		return a
	}
	switch a.Key {
	case slog.TimeKey:
		a.Key = "ts"
		a.Value = slog.StringValue(a.Value.Time().UTC().Format("2006-01-02T15:04:05Z07:00"))
	case slog.MessageKey:
		a.Key = "action"
	case slog.LevelKey:
		if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelAudit {
			a.Value = slog.StringValue("AUDIT")
		}
	}
	return a
}

func write(level slog.Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	l := logger.Load()
	ctx := context.Background()
	if c != nil {
		ctx = c.UserContext()
	}
	if !l.Enabled(ctx, level) {
		return
	}
	attrs := make([]slog.Attr, 0, 9)
	if c != nil {
		attrs = append(attrs,
			slog.String("ip", c.IP()),
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
		)
		if st := c.Response().StatusCode(); st != 0 {
			attrs = append(attrs, slog.Int("status", st))
		}
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			attrs = append(attrs, slog.String("req_id", rid))
		}
		if uid, ok := c.Locals(UserIDKey).(int64); ok && uid != 0 {
			attrs = append(attrs, slog.Int64("user_id", uid))
		}
	}
	if err != nil {
		attrs = append(attrs, slog.String("err", err.Error()))
	}
	if len(fields) > 0 {
		attrs = append(attrs, slog.Any("fields", fields))
	}
	l.LogAttrs(ctx, level, action, attrs...)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelInfo, c, action, nil, fields)
}
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(LevelAudit, c, action, nil, fields)
}
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(slog.LevelWarn, c, action, nil, fields)
}
func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(slog.LevelError, c, action, err, fields)
}
