package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discard(t *testing.T) {
	t.Helper()
	prev := output
	SetOutput(io.Discard)
	t.Cleanup(func() { SetOutput(prev) })
}

func TestComponentSharesOneLogger(t *testing.T) {
	discard(t)
	a, b := Component("dataset"), Component("server")
	assert.Same(t, a.Logger, b.Logger)
	assert.Same(t, sharedLogger(), a.Logger)
	assert.Equal(t, "dataset", a.Data["component"])
	assert.Equal(t, "server", b.Data["component"])
}

func TestComponentEntryFields(t *testing.T) {
	discard(t)
	l := sharedLogger()
	lvl := l.GetLevel()
	l.SetLevel(logrus.InfoLevel)
	t.Cleanup(func() { l.SetLevel(lvl) })
	hook := test.NewLocal(l)
	t.Cleanup(hook.Reset)

	Component("store").WithError(errors.New("boom")).Info("saved")

	e := hook.LastEntry()
	require.NotNil(t, e)
	assert.Equal(t, "saved", e.Message)
	assert.Equal(t, "store", e.Data["component"])
	assert.Equal(t, "boom", e.Data["error"])
}

func TestSetOutputRedirectsSharedLogger(t *testing.T) {
	var buf bytes.Buffer
	prev := output
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })

	assert.Same(t, &buf, sharedLogger().Out)
}

func TestNewWritesJSONOutsideLocal(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	prev := output
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })

	New().WithField("component", "store").WithError(errors.New("boom")).Info("saved")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "store", line["component"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "saved", line["msg"])
}

func TestLevelFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	var buf bytes.Buffer
	prev := output
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(prev) })

	New().Info("hidden")
	assert.Empty(t, buf.String())
}

func TestRequestID(t *testing.T) {
	discard(t)
	r := httptest.NewRequest("GET", "/", nil)
	assert.NotEmpty(t, RequestID(r))

	r.Header.Set("X-Request-ID", "abc")
	assert.Equal(t, "abc", RequestID(r))
	assert.Equal(t, "abc", Component("server").WithRequest(r).Data["req_id"])
}

func TestWithNilError(t *testing.T) {
	l := New()
	assert.Same(t, l.Entry, l.WithError(nil))
}
