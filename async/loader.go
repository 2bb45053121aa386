// Package async loads slow resources, such as slice data held in a store,
// without blocking layout.
//
// Loader adapted from Egon's https://github.com/egonelbre/expgio.
package async

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"gioui.org/layout"
)

// Tag identifies a unique resource. Tag values must be hashable; sprite
// keys are the typical choice.
type Tag interface{}

// LoadFunc performs the blocking load. It should honour ctx cancellation.
type LoadFunc func(ctx context.Context) (interface{}, error)

// Resource is a snapshot of an async entity.
type Resource struct {
	// State reports current state for this resource.
	State State
	// Value for the resource. Nil if not ready.
	Value interface{}
	// Err reported by the load, if any. Only meaningful once Loaded.
	Err error
}

// Ready reports whether the load finished, successfully or not.
func (r Resource) Ready() bool {
	return r.State == Loaded
}

// State that an async Resource can be in.
type State byte

const (
	Queued State = iota
	Loading
	Loaded
)

func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	}
	return "unknown"
}

// Loader is an asynchronously loaded resource cache.
// Start and poll a resource with Schedule method.
// Track frames with Frame method to detect stale data.
// Respond to updates in event loop by selecting on Updated channel.
// Stop the background goroutine with Close.
type Loader struct {
	// Scheduler provides scheduling behaviour. Defaults to a sized worker pool.
	Scheduler Scheduler
	// MaxLoaded specifies the maximum number of resources to keep before
	// de-allocating old resources.
	MaxLoaded int
	// active frame being laid out.
	// Access must be synchronized with atomics.
	active int64
	// finished frames that have been laid out.
	// Access must be synchronized with atomics.
	finished int64
	// update chan reports that a resource's status has changed.
	// Useful for invalidating the window.
	updated chan struct{}
	// cancel stops the processing goroutine and any in-flight loads.
	cancel context.CancelFunc
	// init allows Loader to have a useful zero value by lazily allocating on
	// first use.
	init sync.Once
	// loader contains the queue and lookup map.
	loader
}

// Scheduler schedules work according to some strategy.
type Scheduler interface {
	// Schedule a piece of work. This method is allowed to block.
	Schedule(func())
}

// FixedWorkerPool implements a simple fixed-size worker pool that lets go
// runtime schedule work atop some number of goroutines.
type FixedWorkerPool struct {
	// Workers specifies the number of concurrent workers in this pool.
	Workers int
	// queue of work. Unbuffered so it will block if worker pull is at capacity.
	queue chan func()
	// once time initialization.
	sync.Once
}

// Schedule work to be executed by the available workers. This is a blocking
// call if all workers are busy.
func (p *FixedWorkerPool) Schedule(work func()) {
	p.Once.Do(func() {
		p.queue = make(chan func())
		if p.Workers <= 0 {
			p.Workers = runtime.NumCPU()
		}
		for ii := 0; ii < p.Workers; ii++ {
			go func() {
				for w := range p.queue {
					if w != nil {
						w()
					}
				}
			}()
		}
	})
	p.queue <- work
}

// DynamicWorkerPool spins up a goroutine per unit of work, up to Workers
// concurrent goroutines.
type DynamicWorkerPool struct {
	// Workers specifies the maximum allowed number of concurrent workers in
	// this pool. Defaults to NumCPU.
	Workers int64
	// count is a semaphore queue that limits the number of workers at any
	// given time. The size of the buffer for the channel provides the limit.
	count chan struct{}
	// queue of work. Unbuffered so it will block if worker pool is at capacity.
	queue chan func()
	// once time initialization.
	sync.Once
}

// Schedule work to be executed by the available workers. This is a blocking
// call if all workers are busy.
func (p *DynamicWorkerPool) Schedule(work func()) {
	p.Once.Do(func() {
		if p.Workers <= 0 {
			p.Workers = int64(runtime.NumCPU())
		}
		p.queue = make(chan func())
		p.count = make(chan struct{}, p.Workers)
		for ii := 0; ii < int(p.Workers); ii++ {
			p.count <- struct{}{}
		}
		go func() {
			for w := range p.queue {
				w := w
				if w != nil {
					sem := <-p.count
					go func() {
						w()
						p.count <- sem
					}()
				}
			}
		}()
	})
	p.queue <- work
}

// loader wraps up state that needs to be synchronized together.
type loader struct {
	// mu is the primary mutex used to synchronize.
	mu sync.Mutex
	// refresh sleeps the loop, ensuring we only try to process the queue when
	// something has actually changed.
	refresh sync.Cond
	// lookup is a map of async resources mapped to a unique tag.
	lookup map[Tag]*resource
	// queue of resources to process in sequence.
	queue []*resource
}

// Updated returns a channel that reports whether loader has been updated.
// Integrate this into gio event loop to, for example, invalidate the window.
//
//	case <-loader.Updated():
//		w.Invalidate()
func (l *Loader) Updated() <-chan struct{} {
	l.init.Do(l.initialize)
	return l.updated
}

// Frame wraps a widget and tracks frame updates.
//
// Typically you should wrap your entire UI so that each frame is counted.
// However, it is sufficient to wrap only the widget that expects to use the
// loader during its layout.
func (l *Loader) Frame(gtx layout.Context, w layout.Widget) layout.Dimensions {
	l.init.Do(l.initialize)
	atomic.AddInt64(&l.active, 1)
	dim := w(gtx)
	atomic.StoreInt64(&l.finished, atomic.LoadInt64(&l.active))
	l.refresh.Signal()
	return dim
}

// DefaultMaxLoaded is used when no max is specified.
const DefaultMaxLoaded = 64

// Schedule a resource to be loaded asynchronously, returning a snapshot of
// the resource.
//
// Schedule should be called per frame and the state of the resource checked
// accordingly. The first call queues the load, subsequent calls poll it.
func (l *Loader) Schedule(tag Tag, load LoadFunc) Resource {
	l.init.Do(l.initialize)
	return l.loader.establish(tag, load, atomic.LoadInt64(&l.active))
}

// Forget drops the resource for tag so that the next Schedule reloads it.
// Use it after the underlying data changed, for example after saving new
// borders for a sprite.
func (l *Loader) Forget(tag Tag) {
	l.init.Do(l.initialize)
	l.loader.mu.Lock()
	delete(l.loader.lookup, tag)
	l.loader.mu.Unlock()
}

// Close stops the loader. In-flight loads observe a cancelled context.
func (l *Loader) Close() {
	l.init.Do(l.initialize)
	l.cancel()
}

func (l *Loader) initialize() {
	if l.MaxLoaded == 0 {
		l.MaxLoaded = DefaultMaxLoaded
	}
	l.updated = make(chan struct{}, 1)
	l.loader.lookup = make(map[Tag]*resource)
	l.loader.refresh.L = &l.loader.mu
	if l.Scheduler == nil {
		l.Scheduler = &FixedWorkerPool{Workers: runtime.NumCPU()}
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	go l.run(ctx)
}

// LoaderStats tracks some stats about the loader.
type LoaderStats struct {
	Lookup int
	Queued int
}

// Stats reports runtime data about this loader.
func (l *loader) Stats() LoaderStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LoaderStats{
		Lookup: len(l.lookup),
		Queued: len(l.queue),
	}
}

// update signals to the outside world that some resource has experienced a
// state change.
func (l *Loader) update() {
	select {
	case l.updated <- struct{}{}:
	default:
	}
}

// run the persistent processing goroutine that performs the blocking operations.
func (l *Loader) run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		l.loader.mu.Lock()
		l.refresh.Signal()
		l.loader.mu.Unlock()
	}()

	loader := &l.loader

	loader.mu.Lock()
	defer loader.mu.Unlock()

	firstIteration := true
	for {
		if !firstIteration {
			// Wait to be woken up by a change. Three conditions which provoke this:
			// 1. a new frame layout
			// 2. scheduling a _new_ resource
			// 3. context cancellation
			loader.refresh.Wait()
		}
		if ctx.Err() != nil {
			return
		}
		firstIteration = false
		loader.purge(atomic.LoadInt64(&l.finished), l.MaxLoaded)
		for r := loader.next(); r != nil; r = loader.next() {
			r := r
			if l.isOld(r) {
				loader.remove(r)
				continue
			}
			loader.mu.Unlock()
			l.update()
			l.Scheduler.Schedule(func() {
				r.Load(ctx, func(_ State) {
					l.update()
				})
			})
			loader.mu.Lock()
		}
	}
}

// isOld reports whether the resource was last used in a frame prior to the
// most recently finished frame.
func (l *Loader) isOld(r *resource) bool {
	return atomic.LoadInt64(&r.frame) < atomic.LoadInt64(&l.finished)
}

// establish a resource for the given tag and load function.
// If the resource does not already exist it is first allocated.
func (l *loader) establish(tag Tag, load LoadFunc, activeFrame int64) Resource {
	l.mu.Lock()
	r, ok := l.lookup[tag]
	if !ok {
		r = &resource{
			tag:   tag,
			load:  load,
			state: Queued,
		}
		l.lookup[tag] = r
		l.queue = append(l.queue, r)
		l.refresh.Signal()
	}
	l.mu.Unlock()
	// Freshen the resource, indicating that it has recently been accessed.
	atomic.StoreInt64(&r.frame, activeFrame)
	return r.Get()
}

// next selects the next resource off the queue.
// Only call this when lock has been acquired.
func (l *loader) next() *resource {
	if len(l.queue) == 0 {
		return nil
	}
	r := l.queue[0]
	l.queue = l.queue[1:]
	return r
}

// purge removes stale data such that it gets garbage collected.
//
// A resource is purged if it is old and the maximum number of resources has
// been exhausted.
//
// Only call this when lock has been acquired.
func (l *loader) purge(activeFrame int64, max int) {
	for _, r := range l.lookup {
		if len(l.lookup) < max {
			break
		}
		if isOld := atomic.LoadInt64(&r.frame) < activeFrame; isOld {
			l.remove(r)
		}
	}
}

// remove the resource from the local storage and let it be garbage collected.
func (l *loader) remove(r *resource) {
	if l.lookup[r.tag] == r {
		delete(l.lookup, r.tag)
	}
}

// resource records data about a loading value.
// state, value and err are synchronized by the mutex, tag and load are set
// once during allocation, and frame is synchronized via atomic operations.
type resource struct {
	sync.Mutex
	// frame wherein this data is valid.
	// Access must be synchronized with atomics.
	frame int64
	// state of the resource for this frame.
	state State
	// value for the resource, if acquired.
	value interface{}
	// err returned by load, if any.
	err error
	// tag of the resource. Unsynchronized field, do not modify.
	tag Tag
	// load function for the resource. Unsynchronized field, do not modify.
	load LoadFunc
}

// Load the value for the resource using the configured closure.
// State changes occur during load sequence, invoking onChange callback per
// state change.
func (r *resource) Load(ctx context.Context, onChange func(State)) {
	r.Set(Loading, nil, nil)
	onChange(Loading)
	v, err := r.load(ctx)
	r.Set(Loaded, v, err)
	onChange(Loaded)
}

// Get a snapshot of the resource.
func (r *resource) Get() Resource {
	r.Lock()
	defer r.Unlock()
	return Resource{State: r.state, Value: r.value, Err: r.err}
}

// Set the state, value and error for the resource.
func (r *resource) Set(s State, v interface{}, err error) {
	r.Lock()
	r.state = s
	r.value = v
	r.err = err
	r.Unlock()
}
