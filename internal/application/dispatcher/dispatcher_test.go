package dispatcher

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Obsidian-Corp/Audit-sub005/internal/domain/event"
)

func TestDispatcher_Dispatch(t *testing.T) {
	t.Run("delivers to subscribed handler", func(t *testing.T) {
		d := NewDispatcher()
		var got *event.Event
		d.Subscribe(event.TypeStateChanged, func(ctx context.Context, evt *event.Event) error {
			got = evt
			return nil
		})

		evt := event.NewEvent(event.TypeStateChanged, 1, nil)
		if err := d.Dispatch(context.Background(), evt); err != nil {
			t.Fatalf("Dispatch() failed: %v", err)
		}
		if got == nil || got.ID != evt.ID {
			t.Error("handler did not receive the dispatched event")
		}
	})

	t.Run("returns handler error", func(t *testing.T) {
		d := NewDispatcher()
		wantErr := errors.New("boom")
		d.SubscribeNamed(event.TypeStateChanged, "failing", func(ctx context.Context, evt *event.Event) error {
			return wantErr
		})

		err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStateChanged, 1, nil))
		if !errors.Is(err, wantErr) {
			t.Errorf("Dispatch() error = %v, want wrapped %v", err, wantErr)
		}
	})

	t.Run("recovers handler panic", func(t *testing.T) {
		d := NewDispatcher()
		d.Subscribe(event.TypeStateChanged, func(ctx context.Context, evt *event.Event) error {
			panic("handler bug")
		})

		err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStateChanged, 1, nil))
		if err == nil {
			t.Error("Dispatch() should surface a panicking handler as an error")
		}
	})

	t.Run("ignores events with no handlers", func(t *testing.T) {
		d := NewDispatcher()
		if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeSignoffRevoked, 1, nil)); err != nil {
			t.Errorf("Dispatch() with no handlers failed: %v", err)
		}
	})
}

func TestDispatcher_DispatchAsync(t *testing.T) {
	d := NewDispatcher()
	var count atomic.Int32
	d.Subscribe(event.TypeWorkpaperSigned, func(ctx context.Context, evt *event.Event) error {
		count.Add(1)
		return nil
	})

	d.DispatchAsync(context.Background(), event.NewWorkpaperEvent(event.TypeWorkpaperSigned, 1, 2, nil))

	// Close waits for in-flight async handlers
	if err := d.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}
	if count.Load() != 1 {
		t.Errorf("async handler invocations = %d, want 1", count.Load())
	}
}

func TestDispatcher_Unsubscribe(t *testing.T) {
	d := NewDispatcher()
	called := false
	d.SubscribeNamed(event.TypeStateChanged, "ui-refresh", func(ctx context.Context, evt *event.Event) error {
		called = true
		return nil
	})
	d.Unsubscribe(event.TypeStateChanged, "ui-refresh")

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStateChanged, 1, nil)); err != nil {
		t.Fatalf("Dispatch() failed: %v", err)
	}
	if called {
		t.Error("unsubscribed handler should not be invoked")
	}
}

func TestDispatcher_Closed(t *testing.T) {
	d := NewDispatcher()
	if err := d.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	if err := d.Dispatch(context.Background(), event.NewEvent(event.TypeStateChanged, 1, nil)); err == nil {
		t.Error("Dispatch() after Close() should fail")
	}

	// DispatchAsync after close is a silent no-op
	d.DispatchAsync(context.Background(), event.NewEvent(event.TypeStateChanged, 1, nil))
	time.Sleep(10 * time.Millisecond)
}
