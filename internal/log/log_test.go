package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	Init(&buf, level)
	t.Cleanup(func() { Init(os.Stdout, "info") })
	return &buf
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &m), line)
		out = append(out, m)
	}
	return out
}

func TestWriteWithoutContext(t *testing.T) {
	buf := capture(t, "info")

	Info(nil, "boot", map[string]any{"port": "8080"})
	Error(nil, "db.open.fail", errors.New("disk full"), nil)

	got := lines(t, buf)
	require.Len(t, got, 2)
	assert.Equal(t, "boot", got[0]["action"])
	assert.Equal(t, "INFO", got[0]["level"])
	assert.NotEmpty(t, got[0]["ts"])
	assert.Equal(t, map[string]any{"port": "8080"}, got[0]["fields"])
	assert.Equal(t, "ERROR", got[1]["level"])
	assert.Equal(t, "disk full", got[1]["err"])
}

func TestAuditLevelName(t *testing.T) {
	buf := capture(t, "info")
	Audit(nil, "hotel.create", nil)
	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "AUDIT", got[0]["level"])
}

func TestLevelFilter(t *testing.T) {
	buf := capture(t, "warn")
	Info(nil, "dropped", nil)
	Audit(nil, "dropped.too", nil)
	Security(nil, "kept", nil)
	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "kept", got[0]["action"])
	assert.Equal(t, "WARN", got[0]["level"])
}

func TestRequestFields(t *testing.T) {
	buf := capture(t, "info")
	app := fiber.New()
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("requestid", "rid-1")
		c.Locals(UserIDKey, int64(7))
		Audit(c, "probe", nil)
		return c.SendStatus(fiber.StatusNoContent)
	})
	_, err := app.Test(httptest.NewRequest("GET", "/x", nil))
	require.NoError(t, err)

	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "GET", got[0]["method"])
	assert.Equal(t, "/x", got[0]["path"])
	assert.Equal(t, "rid-1", got[0]["req_id"])
	assert.EqualValues(t, 7, got[0]["user_id"])
}

func TestOutputFollowsInit(t *testing.T) {
	out := Output()
	buf := capture(t, "info")
	_, err := out.Write([]byte("{\"action\":\"raw\"}\n"))
	require.NoError(t, err)
	got := lines(t, buf)
	require.Len(t, got, 1)
	assert.Equal(t, "raw", got[0]["action"])
}
