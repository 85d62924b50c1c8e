package publisher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRead struct {
	msg kafka.Message
	err error
}

// scriptedReader отдаёт заранее заданные ответы, затем ждёт отмены ctx.
type scriptedReader struct {
	mu     sync.Mutex
	script []scriptedRead
	reads  int
	closed bool
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if r.reads < len(r.script) {
		next := r.script[r.reads]
		r.reads++
		r.mu.Unlock()
		return next.msg, next.err
	}
	r.mu.Unlock()
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *scriptedReader) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

func newTestSubscriber(reader *scriptedReader) *DefaultKafkaSubscriber {
	k := NewDefaultKafkaSubscriber([]string{"localhost:9092"}, nil)
	k.minBackoff, k.maxBackoff = time.Millisecond, 4*time.Millisecond
	k.newReader = func(string, string) messageReader { return reader }
	return k
}

func TestSubscribe_SurvivesReadErrors(t *testing.T) {
	brokerDown := errors.New("dial tcp: connection refused")
	reader := &scriptedReader{script: []scriptedRead{
		{err: brokerDown},
		{err: brokerDown},
		{msg: kafka.Message{Key: []byte("k1"), Value: []byte(`{"rate":1}`)}},
		{err: brokerDown},
		{msg: kafka.Message{Key: []byte("k2"), Value: []byte(`{"rate":2}`)}},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := newTestSubscriber(reader).Subscribe(ctx, "competitor-rates", "rms")
	require.NoError(t, err)

	var keys []string
	for range 2 {
		select {
		case m, ok := <-msgs:
			require.True(t, ok, "channel closed after a read error")
			keys = append(keys, string(m.Key))
		case <-time.After(2 * time.Second):
			t.Fatal("no message after read errors")
		}
	}
	assert.Equal(t, []string{"k1", "k2"}, keys)

	cancel()
	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
	reader.mu.Lock()
	defer reader.mu.Unlock()
	assert.True(t, reader.closed)
}

func TestSubscribe_CancelDuringBackoff(t *testing.T) {
	reader := &scriptedReader{script: []scriptedRead{{err: errors.New("broker unavailable")}}}
	k := newTestSubscriber(reader)
	k.minBackoff, k.maxBackoff = time.Hour, time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	msgs, err := k.Subscribe(ctx, "competitor-rates", "rms")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-msgs:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("backoff ignored cancellation")
	}
}
