package pipeline

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	mu  sync.Mutex
	buf bytes.Buffer
	err error
}

func (f *fakeSink) Put(_ context.Context, _ string, body io.Reader, _ string) error {
	if f.err != nil {
		_, _ = io.Copy(io.Discard, body)
		return f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, err := io.Copy(&f.buf, body)
	return err
}

func TestSRTURL(t *testing.T) {
	u := srtURL(9000, "token123", 5*time.Second)
	assert.Contains(t, u, "srt://0.0.0.0:9000")
	assert.Contains(t, u, "mode=listener")
	assert.Contains(t, u, "listen_timeout=5000000")
	assert.Contains(t, u, "passphrase=token123")
}

func TestCreateAndWaitSuccess(t *testing.T) {
	sink := &fakeSink{}
	factory := &FFmpegFactory{BinPath: "sh", Sink: sink, GraceKill: time.Second, contentType: "application/octet-stream"}

	h, err := factory.create(context.Background(), []string{"-c", "echo hello"}, 1, "k")
	require.NoError(t, err)

	status, err := h.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", status.Reason)

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Contains(t, sink.buf.String(), "hello")
}

func TestCreateLaunchFailure(t *testing.T) {
	factory := &FFmpegFactory{BinPath: "/nonexistent/binary/path", Sink: &fakeSink{}, GraceKill: time.Second}
	_, err := factory.Create(context.Background(), Plan{Port: 1, Format: "mpegts", SinkKey: "k"})
	require.Error(t, err)
}

func TestWaitCancelTerminatesProcess(t *testing.T) {
	sink := &fakeSink{}
	factory := &FFmpegFactory{BinPath: "sleep", Sink: sink, GraceKill: 50 * time.Millisecond, contentType: "application/octet-stream"}

	h, err := factory.create(context.Background(), []string{"10"}, 1, "k")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err = h.Wait(ctx)
	elapsed := time.Since(start)

	assert.Error(t, err)
	assert.Less(t, elapsed, 5*time.Second)
}
