package realtime

import (
	"log/slog"
	"sync"
)

// Notifier runs side-band fan-out work (peer joined/left notices) on a small
// bounded worker pool so the hot connect/disconnect path never blocks on
// notification delivery. When the queue is full the job is dropped and
// logged rather than stalling the caller.
type Notifier struct {
	jobs   chan notifyJob
	logger *slog.Logger
	wg     sync.WaitGroup
	once   sync.Once

	// mu orders Enqueue against Stop: Stop closes jobs under the write
	// lock, so no Enqueue can be mid-send on a closed channel.
	mu      sync.RWMutex
	stopped bool
}

type notifyJob struct {
	name string
	fn   func()
}

// NewNotifier constructs a Notifier with the given queue depth and worker
// count and starts its workers.
func NewNotifier(buffer, workers int, logger *slog.Logger) *Notifier {
	if buffer <= 0 {
		buffer = 256
	}
	if workers <= 0 {
		workers = 2
	}
	n := &Notifier{
		jobs:   make(chan notifyJob, buffer),
		logger: logger,
	}
	for i := 0; i < workers; i++ {
		n.wg.Add(1)
		go n.worker()
	}
	return n
}

// Enqueue schedules fn for asynchronous execution. Returns false when the
// queue is saturated or already stopped and the job was dropped.
func (n *Notifier) Enqueue(name string, fn func()) bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.stopped {
		n.logger.Warn("notifier stopped, dropping job", "job", name)
		return false
	}
	select {
	case n.jobs <- notifyJob{name: name, fn: fn}:
		return true
	default:
		n.logger.Warn("notifier queue full, dropping job", "job", name)
		return false
	}
}

// Stop closes the queue and waits for in-flight jobs to finish. Enqueue
// calls racing with Stop either land before the close or are dropped.
func (n *Notifier) Stop() {
	n.once.Do(func() {
		n.mu.Lock()
		n.stopped = true
		close(n.jobs)
		n.mu.Unlock()
	})
	n.wg.Wait()
}

func (n *Notifier) worker() {
	defer n.wg.Done()
	for job := range n.jobs {
		n.run(job)
	}
}

func (n *Notifier) run(job notifyJob) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("notifier job panicked", "job", job.name, "panic", r)
		}
	}()
	job.fn()
}
