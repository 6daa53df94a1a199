package busbridge

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCaptureLogger(buf *bytes.Buffer) *logiface.Logger[logiface.Event] {
	return stumpy.L.New(
		stumpy.L.WithStumpy(stumpy.WithWriter(buf), stumpy.WithTimeField(``)),
		stumpy.L.WithLevel(logiface.LevelDebug),
	).Logger()
}

func TestLoggingWatchLifecycle(t *testing.T) {
	var buf bytes.Buffer
	_, _, _, s := newTestBridge(t, WithLogger(newCaptureLogger(&buf)))

	w := &stubWatch{fd: 5, flags: WatchReadable}
	require.NoError(t, s.AddWatch(w))
	s.RemoveWatch(w)

	out := buf.String()
	assert.Contains(t, out, `"msg":"busbridge: watch added"`)
	assert.Contains(t, out, `"fd":5`)
	assert.Contains(t, out, `"msg":"busbridge: watch removed"`)
}

func TestLoggingHandlerFailureWarning(t *testing.T) {
	var buf bytes.Buffer
	b, loop, _, s := newTestBridge(t, WithLogger(newCaptureLogger(&buf)))

	w := &stubWatch{fd: 5, flags: WatchReadable, handleErr: errors.New("handler exploded")}
	require.NoError(t, s.AddWatch(w))
	buf.Reset()

	b.HandleReady(loop.registration(5), PollReadable)

	out := buf.String()
	assert.Contains(t, out, `"msg":"busbridge: watch handler failed"`)
	assert.Contains(t, out, "handler exploded")
	assert.Equal(t, 1, strings.Count(out, `"lvl":"warning"`))
}

func TestLoggingStaleRegistrationDebug(t *testing.T) {
	var buf bytes.Buffer
	b, _, _, _ := newTestBridge(t, WithLogger(newCaptureLogger(&buf)))

	b.HandleReady(&fakeReg{fd: 99}, PollReadable)

	assert.Contains(t, buf.String(), `"msg":"busbridge: readiness for stale registration"`)
}

func TestLoggingNilLoggerSafe(t *testing.T) {
	// Without WithLogger every log site must be a no-op, not a panic.
	b, loop, conn, s := newTestBridge(t)

	w := &stubWatch{fd: 5, flags: WatchReadable, handleErr: errors.New("x")}
	require.NoError(t, s.AddWatch(w))
	conn.pending = 1
	b.HandleReady(loop.registration(5), PollReadable|PollHangup)
	s.RemoveWatch(w)
	b.HandleReady(&fakeReg{fd: 99}, PollReadable)
}
