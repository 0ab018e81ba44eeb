package event

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

type testEvent struct {
	suite.Suite
}

func (t *testEvent) TestFireInOrder() {
	e := New[int]()

	var called []string

	_ = e.Subscribe(func(i int) { called = append(called, "a") })
	_ = e.Subscribe(func(i int) { called = append(called, "b") })
	_ = e.Subscribe(func(i int) { called = append(called, "c") })

	e.Fire(1)

	t.Equal([]string{"a", "b", "c"}, called)
	t.Equal(3, e.Len())
}

func (t *testEvent) TestFireValue() {
	e := New[time.Duration]()

	var got time.Duration
	_ = e.Subscribe(func(d time.Duration) { got = d })

	e.Fire(time.Second)
	t.Equal(time.Second, got)
}

func (t *testEvent) TestUnsubscribe() {
	e := New[int]()

	var a, b int
	ida := e.Subscribe(func(i int) { a += i })
	_ = e.Subscribe(func(i int) { b += i })

	e.Fire(1)

	t.True(e.Unsubscribe(ida))
	t.False(e.Unsubscribe(ida))

	e.Fire(1)

	t.Equal(1, a)
	t.Equal(2, b)
}

func (t *testEvent) TestUnsubscribeInHandler() {
	e := New[int]()

	var a, b int

	var ida Subscription
	ida = e.Subscribe(func(int) {
		a++

		_ = e.Unsubscribe(ida)
	})
	_ = e.Subscribe(func(int) { b++ })

	e.Fire(0)
	e.Fire(0)

	t.Equal(1, a)
	t.Equal(2, b)
}

func (t *testEvent) TestSubscribePulse() {
	e := New[int]()

	var count int
	unsubscribe := e.SubscribePulse(func() { count++ })

	e.Fire(0)

	unsubscribe()
	unsubscribe()

	e.Fire(0)

	t.Equal(1, count)
	t.Equal(0, e.Len())
}

func (t *testEvent) TestWait() {
	e := New[int]()

	var wg sync.WaitGroup
	wg.Add(1)

	waiting := make(chan struct{})

	var got int

	go func() {
		defer wg.Done()

		close(waiting)

		i, err := e.Wait(context.Background())
		t.NoError(err)

		got = i
	}()

	<-waiting

	// NOTE fire until the waiter registered
	for {
		e.RLock()
		n := len(e.waiters)
		e.RUnlock()

		if n > 0 {
			break
		}

		<-time.After(time.Millisecond)
	}

	e.Fire(3)

	wg.Wait()

	t.Equal(3, got)
}

func (t *testEvent) TestWaitContextCanceled() {
	e := New[int]()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond*30)
	defer cancel()

	_, err := e.Wait(ctx)
	t.ErrorIs(err, context.DeadlineExceeded)

	e.RLock()
	t.Empty(e.waiters)
	e.RUnlock()
}

func (t *testEvent) TestClose() {
	e := New[int]()

	var count int
	_ = e.Subscribe(func(int) { count++ })

	errch := make(chan error, 1)

	go func() {
		_, err := e.Wait(context.Background())

		errch <- err
	}()

	for {
		e.RLock()
		n := len(e.waiters)
		e.RUnlock()

		if n > 0 {
			break
		}

		<-time.After(time.Millisecond)
	}

	e.Close()
	e.Close()

	t.ErrorIs(<-errch, ErrClosed)

	e.Fire(0)
	t.Equal(0, count)
	t.Equal(0, e.Len())

	t.Equal(Subscription(0), e.Subscribe(func(int) { count++ }))

	_, err := e.Wait(context.Background())
	t.ErrorIs(err, ErrClosed)
}

func TestEvent(t *testing.T) {
	defer goleak.VerifyNone(t)

	suite.Run(t, new(testEvent))
}
