package live

import (
	"errors"
	"sync"
)

// ErrLoopClosed is returned by Do after Close.
var ErrLoopClosed = errors.New("live: loop closed")

// Loop runs functions one at a time on a dedicated goroutine.
type Loop struct {
	tasks chan func()
	done  chan struct{}
	once  sync.Once
	wg    sync.WaitGroup
}

// NewLoop starts a loop.
func NewLoop() *Loop {
	l := &Loop{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.run()
	return l
}

func (l *Loop) run() {
	defer l.wg.Done()
	for {
		select {
		case fn := <-l.tasks:
			fn()
		case <-l.done:
			return
		}
	}
}

// Do runs fn on the loop and waits for it to return. fn must not call Do.
func (l *Loop) Do(fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.done:
		return ErrLoopClosed
	}
	<-finished
	return nil
}

// Close stops the loop after the running function, if any, returns.
func (l *Loop) Close() {
	l.once.Do(func() {
		close(l.done)
	})
	l.wg.Wait()
}
