package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinkStagesUntilFlush(t *testing.T) {
	tr := newTransport()
	s := NewSink(tr, SinkOptions{})

	n, err := s.Write([]byte("frame"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, tr.Len(), "staged bytes must not reach the transport")

	assert.False(t, s.Flush())
	require.Eventually(t, func() bool { return tr.String() == "frame" }, time.Second, time.Millisecond)

	s.Close()
	<-s.Done()
	assert.True(t, tr.Closed())
}

func TestSinkFlushWithoutStagedBytesIsNoop(t *testing.T) {
	tr := newTransport()
	s := NewSink(tr, SinkOptions{})
	assert.False(t, s.Flush())
	s.Close()
	<-s.Done()
	assert.Equal(t, 0, tr.Writes())
}

func TestSinkDropsPendingOnOverflow(t *testing.T) {
	tr := blockedTransport()
	s := NewSink(tr, SinkOptions{Limit: 10})

	_, _ = s.Write([]byte("12345678"))
	require.False(t, s.Flush())
	// The writer takes the first batch and blocks inside the transport.
	require.Eventually(t, func() bool { return s.Pending() == 0 }, time.Second, time.Millisecond)

	_, _ = s.Write([]byte("abcdefgh"))
	require.False(t, s.Flush())
	assert.Equal(t, 8, s.Pending())

	_, _ = s.Write([]byte("ABCDEFGH"))
	assert.True(t, s.Flush(), "expected overflow past the limit")
	assert.Equal(t, 0, s.Pending())

	tr.release()
	s.Close()
	<-s.Done()
	assert.Equal(t, "12345678", tr.String())
}

func TestSinkReportsFirstErrorOnly(t *testing.T) {
	tr := newTransport()
	tr.err = errBroken
	var calls atomic.Int32
	s := NewSink(tr, SinkOptions{OnError: func(err error) {
		assert.ErrorIs(t, err, errBroken)
		calls.Add(1)
	}})

	_, _ = s.Write([]byte("a"))
	s.Flush()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	_, _ = s.Write([]byte("b"))
	s.Flush()
	s.Close()
	<-s.Done()
	assert.Equal(t, int32(1), calls.Load())
}

func TestSinkCountsWrittenBytes(t *testing.T) {
	tr := newTransport()
	var total atomic.Int64
	s := NewSink(tr, SinkOptions{OnWrite: func(n int) { total.Add(int64(n)) }})
	_, _ = s.Write([]byte("hello"))
	s.Flush()
	s.Close()
	<-s.Done()
	assert.Equal(t, int64(5), total.Load())
}

func TestSinkCloseDrainsQueuedBytes(t *testing.T) {
	tr := newTransport()
	s := NewSink(tr, SinkOptions{})
	_, _ = s.Write([]byte("bye"))
	s.Flush()
	s.Close()
	s.Close()
	<-s.Done()
	assert.Equal(t, "bye", tr.String())
	assert.True(t, tr.Closed())

	_, err := s.Write([]byte("late"))
	assert.ErrorIs(t, err, ErrSinkClosed)
	assert.False(t, s.Flush())
}
