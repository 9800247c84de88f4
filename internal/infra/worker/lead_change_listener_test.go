package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeListener struct {
	ch       chan *pq.Notification
	channel  string
	closed   atomic.Bool
	listened chan struct{}
}

func newFakeListener() *fakeListener {
	return &fakeListener{ch: make(chan *pq.Notification, 16), listened: make(chan struct{})}
}

func (f *fakeListener) Listen(channel string) error {
	f.channel = channel
	close(f.listened)
	return nil
}

func (f *fakeListener) NotificationChannel() <-chan *pq.Notification { return f.ch }
func (f *fakeListener) Ping() error                                   { return nil }
func (f *fakeListener) Close() error {
	f.closed.Store(true)
	return nil
}

type countingRefresher struct {
	calls atomic.Int32
}

func (c *countingRefresher) Refresh(context.Context) error {
	c.calls.Add(1)
	return nil
}

func TestLeadChangeListenerRefreshesOnNotify(t *testing.T) {
	listener := newFakeListener()
	refresher := &countingRefresher{}
	w := NewLeadChangeListener(listener, refresher)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Start(ctx) }()

	<-listener.listened
	assert.Equal(t, LeadsChannel, listener.channel)

	// initial load
	assert.Eventually(t, func() bool { return refresher.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	listener.ch <- &pq.Notification{Channel: LeadsChannel, Extra: "01HZKEY"}
	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	// reconnect
	listener.ch <- nil
	assert.Eventually(t, func() bool { return refresher.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, listener.closed.Load())
}
