package feed

import (
	"sync"
	"testing"
	"time"
)

func TestQueue_SendReceive(t *testing.T) {
	q := NewQueue[int](10)

	for i := 0; i < 5; i++ {
		if !q.Send(i) {
			t.Fatalf("Send(%d) returned false", i)
		}
	}

	if q.Len() != 5 {
		t.Errorf("Len() = %d, want 5", q.Len())
	}

	for i := 0; i < 5; i++ {
		val, ok := q.TryReceive()
		if !ok {
			t.Fatalf("TryReceive() returned false for item %d", i)
		}
		if val != i {
			t.Errorf("received %d, want %d", val, i)
		}
	}

	if _, ok := q.TryReceive(); ok {
		t.Error("TryReceive() on empty queue returned true")
	}
}

func TestQueue_GrowsWhenFull(t *testing.T) {
	q := NewQueue[int](4)

	// Wrap the ring before it has to grow.
	q.Send(-1)
	q.Send(-2)
	q.TryReceive()
	q.TryReceive()

	for i := 0; i < 10; i++ {
		q.Send(i)
	}

	stats := q.Stats()
	if stats.Cap < 10 {
		t.Errorf("Cap = %d, want >= 10", stats.Cap)
	}
	if stats.Grown != 2 {
		t.Errorf("Grown = %d, want 2", stats.Grown)
	}

	for i := 0; i < 10; i++ {
		val, ok := q.TryReceive()
		if !ok || val != i {
			t.Fatalf("TryReceive() = %d, %v; want %d, true", val, ok, i)
		}
	}
}

func TestQueue_CloseDrainsRemaining(t *testing.T) {
	q := NewQueue[string](2)
	q.Send("a")
	q.Send("b")
	q.Close()

	if q.Send("c") {
		t.Error("Send after Close returned true")
	}

	for _, want := range []string{"a", "b"} {
		got, ok := q.Receive()
		if !ok || got != want {
			t.Errorf("Receive() = %q, %v; want %q, true", got, ok, want)
		}
	}

	if _, ok := q.Receive(); ok {
		t.Error("Receive() on closed, empty queue returned true")
	}
}

func TestQueue_ReceiveBlocksUntilSend(t *testing.T) {
	q := NewQueue[int](1)

	got := make(chan int, 1)
	go func() {
		v, _ := q.Receive()
		got <- v
	}()

	select {
	case <-got:
		t.Fatal("Receive returned before Send")
	case <-time.After(20 * time.Millisecond):
	}

	q.Send(42)

	select {
	case v := <-got:
		if v != 42 {
			t.Errorf("received %d, want 42", v)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not wake up")
	}
}

func TestQueue_CloseWakesReceivers(t *testing.T) {
	q := NewQueue[int](1)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Receive()
		}()
	}

	time.Sleep(10 * time.Millisecond)
	q.Close()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("receivers still blocked after Close")
	}
}

func TestQueue_Drain(t *testing.T) {
	q := NewQueue[int](4)
	for i := 0; i < 6; i++ {
		q.Send(i)
	}

	first := q.Drain(4)
	if len(first) != 4 || first[0] != 0 || first[3] != 3 {
		t.Errorf("Drain(4) = %v", first)
	}

	rest := q.Drain(0)
	if len(rest) != 2 || rest[0] != 4 || rest[1] != 5 {
		t.Errorf("Drain(0) = %v", rest)
	}

	if q.Drain(0) != nil {
		t.Error("Drain on empty queue should return nil")
	}

	stats := q.Stats()
	if stats.Sent != 6 || stats.Received != 6 {
		t.Errorf("Sent/Received = %d/%d, want 6/6", stats.Sent, stats.Received)
	}
}

func TestQueue_ConcurrentSenders(t *testing.T) {
	q := NewQueue[int](2)

	const senders, perSender = 8, 250
	var wg sync.WaitGroup
	for s := 0; s < senders; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perSender; i++ {
				q.Send(i)
			}
		}()
	}
	wg.Wait()

	if q.Len() != senders*perSender {
		t.Errorf("Len() = %d, want %d", q.Len(), senders*perSender)
	}
}
