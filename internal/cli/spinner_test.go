package cli

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

// syncBuffer is a bytes.Buffer safe for the spinner goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinnerStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	s := newSpinner(context.Background(), &out, "Rendering outline...")
	s.Start()
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Rendering outline...")
	}, time.Second, 10*time.Millisecond)
	s.Stop()
	assert.False(t, s.Cancelled())
}

func TestSpinnerContextCancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	s := newSpinner(ctx, &syncBuffer{}, "waiting")
	s.Start()
	assert.Eventually(t, s.Cancelled, time.Second, 5*time.Millisecond)
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	defer goleak.VerifyNone(t)

	s := newSpinner(context.Background(), &syncBuffer{}, "idempotent")
	s.Start()
	s.Stop()
	s.Stop()
	s.Stop()
}

func TestSpinnerStopWithMessages(t *testing.T) {
	defer goleak.VerifyNone(t)

	var out syncBuffer
	s := newSpinner(context.Background(), &out, "saving")
	s.Start()
	s.StopWithSuccess("Saved outline.svg")
	assert.Contains(t, out.String(), "Saved outline.svg")

	var failed syncBuffer
	s = newSpinner(context.Background(), &failed, "saving")
	s.Start()
	s.StopWithError("render failed")
	assert.Contains(t, failed.String(), "render failed")
}
