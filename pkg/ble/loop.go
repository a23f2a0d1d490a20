package ble

import (
	"context"

	"github.com/Krajiyah/ble-walkie/pkg/util"
	"github.com/golang-collections/go-datastructures/queue"
)

const eventQueueHint = 64

// EventLoop serializes transport callbacks, inbound writes and user input
// onto one goroutine so the state machines need no locking.
type EventLoop struct {
	queue *queue.Queue
}

// NewEventLoop returns a loop that is not running yet, events posted before Run are kept
func NewEventLoop() *EventLoop {
	return &EventLoop{queue: queue.New(eventQueueHint)}
}

// Post enqueues fn, it is silently dropped once the loop stopped
func (l *EventLoop) Post(fn func()) {
	if err := l.queue.Put(fn); err != nil {
		logger.Debug("event dropped, loop stopped")
	}
}

// Run executes posted events in order until ctx is done or Stop is called
func (l *EventLoop) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		l.Stop()
	}()
	for {
		items, err := l.queue.Get(1)
		if err != nil {
			return
		}
		for _, item := range items {
			l.dispatch(item.(func()))
		}
	}
}

// Stop disposes the queue, pending events are discarded
func (l *EventLoop) Stop() {
	l.queue.Dispose()
}

func (l *EventLoop) dispatch(fn func()) {
	err := util.CatchErrs(func() error {
		fn()
		return nil
	})
	if err != nil {
		logger.Error("event handler failed", "err", err)
	}
}
