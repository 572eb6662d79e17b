package channel_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyra-lang/lyra/internal/clock"
	"github.com/lyra-lang/lyra/runtime/channel"
	"github.com/lyra-lang/lyra/runtime/process"
	"github.com/lyra-lang/lyra/service/scheduler"
)

func startScheduler(t *testing.T, workers int) *scheduler.Service {
	t.Helper()
	svc, err := scheduler.New(scheduler.WithWorkers(workers))
	require.NoError(t, err)
	require.NoError(t, svc.Start(context.Background()))
	t.Cleanup(svc.Shutdown)
	return svc
}

func spawn(t *testing.T, svc *scheduler.Service, entry process.Entry) *process.Process {
	t.Helper()
	p, err := svc.Spawn(context.Background(), entry)
	require.NoError(t, err)
	return p
}

func waitFor(t *testing.T, procs ...*process.Process) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	for _, p := range procs {
		require.NoError(t, p.Wait(ctx))
	}
}

func TestNew_ClampsCapacity(t *testing.T) {
	testCases := []struct {
		name      string
		requested int
		expect    int
	}{
		{name: "negative", requested: -3, expect: 1},
		{name: "zero", requested: 0, expect: 1},
		{name: "one", requested: 1, expect: 1},
		{name: "larger", requested: 8, expect: 8},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := channel.New[int](tc.requested)
			assert.Equal(t, tc.expect, c.Capacity())
		})
	}
}

func TestSendTryReceive_Scenario(t *testing.T) {
	svc := startScheduler(t, 2)
	c := channel.New[int](1)

	p := spawn(t, svc, func(x *process.Proc) error {
		c.Send(x, 42)

		v, ok := c.TryReceive()
		assert.True(t, ok)
		assert.Equal(t, 42, v)

		_, ok = c.TryReceive()
		assert.False(t, ok)
		return nil
	})
	waitFor(t, p)
}

func TestSend_FillsCapacityWithoutBlocking(t *testing.T) {
	svc := startScheduler(t, 1)
	const capacity = 4
	c := channel.New[int](capacity)

	filled := make(chan struct{})
	p := spawn(t, svc, func(x *process.Proc) error {
		for i := 0; i < capacity; i++ {
			c.Send(x, i)
		}
		close(filled)
		return nil
	})

	waitFor(t, p)
	select {
	case <-filled:
	default:
		t.Fatal("sends within capacity must not block")
	}
	assert.Equal(t, capacity, c.Len())
}

func TestSend_BlocksWhenFullUntilReceive(t *testing.T) {
	svc := startScheduler(t, 2)
	c := channel.New[int](1)

	var delivered atomic.Bool
	sender := spawn(t, svc, func(x *process.Proc) error {
		c.Send(x, 1)
		c.Send(x, 2) // second send must suspend
		delivered.Store(true)
		return nil
	})

	// The sender ends up parked on the send-side wait queue.
	require.Eventually(t, func() bool {
		return sender.State() == process.StateBlocked
	}, time.Second, time.Millisecond)
	assert.Equal(t, process.ReasonSendFull, sender.BlockReason())
	assert.False(t, delivered.Load())
	assert.Equal(t, 1, c.Len())

	receiver := spawn(t, svc, func(x *process.Proc) error {
		assert.Equal(t, 1, c.Receive(x))
		assert.Equal(t, 2, c.Receive(x))
		return nil
	})

	waitFor(t, sender, receiver)
	assert.True(t, delivered.Load())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 0, c.Waiters())
}

func TestReceive_BlocksUntilSend(t *testing.T) {
	svc := startScheduler(t, 2)
	c := channel.New[string](1)

	var got atomic.Value
	receiver := spawn(t, svc, func(x *process.Proc) error {
		got.Store(c.Receive(x))
		return nil
	})

	require.Eventually(t, func() bool {
		return receiver.State() == process.StateBlocked
	}, time.Second, time.Millisecond)
	assert.Equal(t, process.ReasonReceiveEmpty, receiver.BlockReason())

	sender := spawn(t, svc, func(x *process.Proc) error {
		c.Send(x, "hello")
		return nil
	})

	waitFor(t, sender, receiver)
	assert.Equal(t, "hello", got.Load())
}

func TestFIFO_SingleProcess(t *testing.T) {
	svc := startScheduler(t, 1)
	c := channel.New[string](2)

	p := spawn(t, svc, func(x *process.Proc) error {
		c.Send(x, "A")
		c.Send(x, "B")
		assert.Equal(t, "A", c.Receive(x))
		assert.Equal(t, "B", c.Receive(x))
		return nil
	})
	waitFor(t, p)
}

func TestFIFO_ConcurrentSenders(t *testing.T) {
	// Two processes concurrently send on a capacity-1 channel while a third
	// receives. Every value is delivered exactly once, in some total order
	// consistent with each sender's individual FIFO contribution.
	svc := startScheduler(t, 3)
	c := channel.New[int](1)

	const perSender = 20
	sendAll := func(base int) process.Entry {
		return func(x *process.Proc) error {
			for i := 0; i < perSender; i++ {
				c.Send(x, base+i)
			}
			return nil
		}
	}
	s1 := spawn(t, svc, sendAll(0))
	s2 := spawn(t, svc, sendAll(1000))

	var received []int
	r := spawn(t, svc, func(x *process.Proc) error {
		for i := 0; i < 2*perSender; i++ {
			received = append(received, c.Receive(x))
		}
		return nil
	})

	waitFor(t, s1, s2, r)
	require.Len(t, received, 2*perSender)

	seen := map[int]bool{}
	last := map[int]int{0: -1, 1000: -1}
	for _, v := range received {
		require.False(t, seen[v], "value %d delivered twice", v)
		seen[v] = true
		base := 0
		if v >= 1000 {
			base = 1000
		}
		require.Greater(t, v, last[base], "per-sender order violated")
		last[base] = v
	}
}

func TestTryReceive_EmptyNeverBlocks(t *testing.T) {
	svc := startScheduler(t, 2)
	c := channel.New[int](1)

	p := spawn(t, svc, func(x *process.Proc) error {
		for i := 0; i < 100; i++ {
			if _, ok := c.TryReceive(); ok {
				t.Error("unexpected value on empty channel")
			}
		}
		return nil
	})
	waitFor(t, p)
	assert.Equal(t, 0, c.Waiters())
}

func TestReceiveUntil_PastDeadline(t *testing.T) {
	svc := startScheduler(t, 1)
	c := channel.New[int](1)

	p := spawn(t, svc, func(x *process.Proc) error {
		past := clock.Now().Add(-time.Second)

		// Empty buffer: returns empty immediately without suspending.
		start := time.Now()
		_, ok := c.ReceiveUntil(x, past)
		assert.False(t, ok)
		assert.Less(t, time.Since(start), 100*time.Millisecond)

		// Buffered value: returned even though the deadline passed.
		c.Send(x, 7)
		v, ok := c.ReceiveUntil(x, past)
		assert.True(t, ok)
		assert.Equal(t, 7, v)
		return nil
	})
	waitFor(t, p)
}

func TestReceiveUntil_TimesOut(t *testing.T) {
	svc := startScheduler(t, 1)
	c := channel.New[int](1)

	p := spawn(t, svc, func(x *process.Proc) error {
		start := clock.Now()
		_, ok := c.ReceiveUntil(x, start.Add(40*time.Millisecond))
		assert.False(t, ok)
		assert.GreaterOrEqual(t, clock.Now().Sub(start), 35*time.Millisecond)
		return nil
	})
	waitFor(t, p)
	assert.Equal(t, 0, c.Waiters())
}

func TestReceiveUntil_ValueArrivesBeforeDeadline(t *testing.T) {
	svc := startScheduler(t, 2)
	c := channel.New[int](1)

	receiver := spawn(t, svc, func(x *process.Proc) error {
		v, ok := c.ReceiveUntil(x, clock.Now().Add(time.Second))
		assert.True(t, ok)
		assert.Equal(t, 9, v)
		return nil
	})

	require.Eventually(t, func() bool {
		return receiver.State() == process.StateBlocked
	}, time.Second, time.Millisecond)

	sender := spawn(t, svc, func(x *process.Proc) error {
		c.Send(x, 9)
		return nil
	})
	waitFor(t, sender, receiver)
}

func TestReceiveUntil_RacesSendAtDeadline(t *testing.T) {
	// A send arriving right as the deadline fires must either hand the
	// receiver the value or leave it buffered; it is never dropped.
	svc := startScheduler(t, 2)

	for round := 0; round < 25; round++ {
		c := channel.New[int](1)
		var got atomic.Int64
		var received atomic.Bool

		receiver := spawn(t, svc, func(x *process.Proc) error {
			v, ok := c.ReceiveUntil(x, clock.Now().Add(3*time.Millisecond))
			if ok {
				got.Store(int64(v))
				received.Store(true)
			}
			return nil
		})
		sender := spawn(t, svc, func(x *process.Proc) error {
			x.Sleep(3 * time.Millisecond)
			c.Send(x, 42)
			return nil
		})
		waitFor(t, receiver, sender)

		if received.Load() {
			assert.Equal(t, int64(42), got.Load())
		} else {
			v, ok := c.TryReceive()
			require.True(t, ok, "value neither received nor buffered")
			assert.Equal(t, 42, v)
		}
		assert.Equal(t, 0, c.Waiters())
	}
}

func TestCloneRelease_DrainsAndReleasesValues(t *testing.T) {
	svc := startScheduler(t, 1)

	var released atomic.Int64
	c := channel.New[int](3, channel.WithRelease[int](func(int) {
		released.Add(1)
	}))
	handle := c.Clone()

	p := spawn(t, svc, func(x *process.Proc) error {
		c.Send(x, 1)
		c.Send(x, 2)
		c.Send(x, 3)
		return nil
	})
	waitFor(t, p)

	c.Release()
	assert.Equal(t, int64(0), released.Load(), "live handle must keep the buffer")

	handle.Release()
	assert.Equal(t, int64(3), released.Load(), "dropping the last handle releases every buffered value")
	assert.Equal(t, 0, c.Waiters())
}
