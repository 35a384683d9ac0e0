// Package shutdown runs registered cleanup steps once, newest first.
package shutdown

import (
	"context"
	"sync"
	"time"

	"contour2dxf/internal/logger"
)

const DefaultStepTimeout = 10 * time.Second

type Shutdownable interface {
	Shutdown()
}

// Func adapts a plain function to Shutdownable.
type Func func()

func (f Func) Shutdown() { f() }

type step struct {
	name      string
	component Shutdownable
}

type Manager struct {
	steps   []step
	logger  logger.Logger
	timeout time.Duration
	mu      sync.Mutex
	once    sync.Once
	done    chan struct{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewManager returns a manager whose Context is cancelled when shutdown
// starts. Cancelling parent starts shutdown. A non-positive stepTimeout
// selects DefaultStepTimeout.
func NewManager(parent context.Context, log logger.Logger, stepTimeout time.Duration) *Manager {
	if log == nil {
		log = logger.Nop()
	}
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	ctx, cancel := context.WithCancel(parent)

	m := &Manager{
		logger:  log,
		timeout: stepTimeout,
		done:    make(chan struct{}),
		ctx:     ctx,
		cancel:  cancel,
	}

	go func() {
		<-ctx.Done()
		m.Shutdown()
	}()

	return m
}

func (m *Manager) Register(name string, component Shutdownable) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.steps = append(m.steps, step{name: name, component: component})
}

// Shutdown runs every registered step in reverse registration order. A step
// that outlives the timeout is abandoned. Later calls wait for the first to
// finish.
func (m *Manager) Shutdown() {
	m.once.Do(m.run)
	<-m.done
}

func (m *Manager) run() {
	defer close(m.done)
	m.cancel()

	m.mu.Lock()
	steps := append([]step(nil), m.steps...)
	m.mu.Unlock()

	m.logger.Info("ShutdownManager", "shutdown sequence initiated", map[string]interface{}{
		"components": len(steps),
	})

	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]

		finished := make(chan struct{})
		go func() {
			defer close(finished)
			s.component.Shutdown()
		}()

		timer := time.NewTimer(m.timeout)
		select {
		case <-finished:
			m.logger.Debug("ShutdownManager", "component stopped", map[string]interface{}{"component": s.name})
		case <-timer.C:
			m.logger.Warning("ShutdownManager", "component shutdown timeout", map[string]interface{}{
				"component": s.name,
			})
		}
		timer.Stop()
	}

	m.logger.Info("ShutdownManager", "shutdown sequence completed", nil)
}

func (m *Manager) Context() context.Context {
	return m.ctx
}

func (m *Manager) Done() <-chan struct{} {
	return m.done
}
