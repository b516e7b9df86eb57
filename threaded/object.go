// Package threaded provides Object, a base for types that run their own
// background goroutine (heartbeat.Heartbeat, proxy.Proxy): the Go analogue
// of the original library's GtuberThreadedObject, which spun up a private
// GMainContext/GMainLoop pair on its own GThread.
package threaded

import (
	"sync"
)

// Hooks are the two lifecycle callbacks an embedder of Object supplies:
// Start runs once, right after the background goroutine comes up (the
// GtuberThreadedObjectClass::thread_start vtable slot); Stop runs once,
// right before the goroutine exits (thread_stop).
type Hooks struct {
	Start func()
	Stop  func()
}

// Object runs hooks.Start, then a task-processing loop, then hooks.Stop, all
// on one dedicated goroutine — mirroring the original's "construct blocks
// until the worker thread's main loop is running" contract via a ready
// channel that New waits on.
type Object struct {
	mu sync.Mutex

	tasks chan func()
	done  chan struct{}
}

// New starts the background goroutine and blocks until it is ready to
// accept Run calls, exactly as the original blocked GObject construction
// on the worker thread's main loop starting.
func New(hooks Hooks) *Object {
	o := &Object{
		tasks: make(chan func()),
		done:  make(chan struct{}),
	}

	ready := make(chan struct{})
	go o.main(hooks, ready)
	<-ready

	return o
}

func (o *Object) main(hooks Hooks, ready chan struct{}) {
	if hooks.Start != nil {
		hooks.Start()
	}
	close(ready)

	for task := range o.tasks {
		task()
	}

	if hooks.Stop != nil {
		hooks.Stop()
	}
	close(o.done)
}

// Run schedules fn to execute on Object's goroutine and waits for it to
// return, the equivalent of attaching a GSource to the object's private
// GMainContext and waiting for it to fire. Run after Close is a no-op.
func (o *Object) Run(fn func()) {
	select {
	case <-o.done:
		return
	default:
	}

	reply := make(chan struct{})
	select {
	case o.tasks <- func() { fn(); close(reply) }:
		<-reply
	case <-o.done:
	}
}

// Lock and Unlock guard state an embedder shares between its own
// goroutine's callbacks and calls made from other goroutines, mirroring
// the original's GTUBER_THREADED_OBJECT_LOCK/UNLOCK macros.
func (o *Object) Lock()   { o.mu.Lock() }
func (o *Object) Unlock() { o.mu.Unlock() }

// Close stops the background goroutine, running hooks.Stop, and waits for
// it to exit. Close is idempotent; calling it more than once is safe.
func (o *Object) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	select {
	case <-o.done:
		return nil
	default:
	}

	close(o.tasks)
	<-o.done
	return nil
}
