package gamelist

import (
	"errors"
	"sync"

	"go.uber.org/zap"
)

var ErrExecutorClosed = errors.New("executor closed")

const executorQueueSize = 8

// Runs background tasks one after another on a single worker goroutine.
// Owned by whoever creates it; Close waits for queued tasks to finish.
type Executor struct {
	mu     sync.Mutex
	closed bool
	tasks  chan func()
	done   chan struct{}
	logger *zap.SugaredLogger
}

func NewExecutor(l *zap.SugaredLogger) *Executor {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	e := &Executor{
		tasks:  make(chan func(), executorQueueSize),
		done:   make(chan struct{}),
		logger: l,
	}
	go e.work()
	return e
}

func (e *Executor) work() {
	defer close(e.done)
	for task := range e.tasks {
		e.run(task)
	}
}

func (e *Executor) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Errorf("background task panicked - %v", r)
		}
	}()
	task()
}

func (e *Executor) Execute(task func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrExecutorClosed
	}
	e.tasks <- task
	return nil
}

// Stop accepting tasks and wait for the queued ones. Safe to call twice.
func (e *Executor) Close() {
	e.mu.Lock()
	if !e.closed {
		e.closed = true
		close(e.tasks)
	}
	e.mu.Unlock()
	<-e.done
}
