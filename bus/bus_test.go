package bus

import (
	"testing"
	"time"
)

func TestBasicPubSub(t *testing.T) {
	b := New(4)
	conn := b.NewConnection("test")

	sub := conn.Subscribe(T("record", "command"))

	conn.Publish(conn.NewMessage(T("record", "command"), "hello", false))

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "hello" {
			t.Errorf("expected payload 'hello', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestRetainedMessage(t *testing.T) {
	b := New(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("record", "state"), "idle", true))

	sub := conn.Subscribe(T("record", "state"))

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "idle" {
			t.Errorf("expected retained payload 'idle', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for retained message")
	}
}

func TestRetainedClearedByNilPayload(t *testing.T) {
	b := New(2)
	conn := b.NewConnection("test")

	conn.Publish(conn.NewMessage(T("play", "state"), "running", true))
	conn.Publish(conn.NewMessage(T("play", "state"), nil, true))

	sub := conn.Subscribe(T("play", "state"))
	select {
	case got := <-sub.Channel():
		t.Fatalf("expected no retained message, got %v", got.Payload)
	case <-time.After(20 * time.Millisecond):
	}
}

func TestDropOldestWhenQueueFull(t *testing.T) {
	b := New(1)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(T("record", "command"))

	conn.Publish(conn.NewMessage(T("record", "command"), "first", false))
	conn.Publish(conn.NewMessage(T("record", "command"), "second", false))

	select {
	case got := <-sub.Channel():
		if got.Payload.(string) != "second" {
			t.Errorf("expected freshest message 'second', got %v", got.Payload)
		}
	case <-time.After(100 * time.Millisecond):
		t.Fatal("timeout waiting for message")
	}
}

func TestTryRecv(t *testing.T) {
	b := New(2)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(T("record", "command"))

	if _, ok := sub.TryRecv(); ok {
		t.Fatal("TryRecv on empty queue must report no message")
	}
	conn.Publish(conn.NewMessage(T("record", "command"), 42, false))
	m, ok := sub.TryRecv()
	if !ok || m.Payload.(int) != 42 {
		t.Fatalf("TryRecv: got %v, %v", m, ok)
	}
	if _, ok := sub.TryRecv(); ok {
		t.Fatal("queue should be drained")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New(2)
	conn := b.NewConnection("test")
	sub := conn.Subscribe(T("a"))
	sub.Unsubscribe()

	// Must not panic on send to removed subscription.
	conn.Publish(conn.NewMessage(T("a"), "x", false))

	if _, ok := <-sub.ch; ok {
		t.Fatal("channel should be closed after unsubscribe")
	}
}

func TestDisconnectClosesAll(t *testing.T) {
	b := New(2)
	conn := b.NewConnection("test")
	s1 := conn.Subscribe(T("a"))
	s2 := conn.Subscribe(T("b"))
	conn.Disconnect()

	if _, ok := <-s1.ch; ok {
		t.Fatal("s1 should be closed")
	}
	if _, ok := <-s2.ch; ok {
		t.Fatal("s2 should be closed")
	}
}
