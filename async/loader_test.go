package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"gioui.org/layout"
)

// await polls the loader until the resource for tag is loaded.
func await(t *testing.T, l *Loader, tag Tag, load LoadFunc) Resource {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		r := l.Schedule(tag, load)
		if r.Ready() {
			return r
		}
		select {
		case <-l.Updated():
		case <-time.After(10 * time.Millisecond):
		case <-timeout:
			t.Fatalf("resource %v not loaded, state %v", tag, r.State)
		}
	}
}

func TestLoaderValueAndError(t *testing.T) {
	errBroken := errors.New("broken")
	for _, tt := range []struct {
		Label     string
		Scheduler Scheduler
	}{
		{Label: "fixed pool", Scheduler: &FixedWorkerPool{Workers: 2}},
		{Label: "dynamic pool", Scheduler: &DynamicWorkerPool{Workers: 2}},
	} {
		t.Run(tt.Label, func(t *testing.T) {
			l := &Loader{Scheduler: tt.Scheduler}
			defer l.Close()
			r := await(t, l, "ok", func(context.Context) (interface{}, error) {
				return 42, nil
			})
			if r.Err != nil || r.Value != 42 {
				t.Fatalf("got %v, %v; want 42, nil", r.Value, r.Err)
			}
			r = await(t, l, "bad", func(context.Context) (interface{}, error) {
				return nil, errBroken
			})
			if !errors.Is(r.Err, errBroken) {
				t.Fatalf("got err %v, want %v", r.Err, errBroken)
			}
		})
	}
}

func TestLoaderLoadsOnce(t *testing.T) {
	l := &Loader{}
	defer l.Close()
	var calls int32
	load := func(context.Context) (interface{}, error) {
		atomic.AddInt32(&calls, 1)
		return "v", nil
	}
	await(t, l, "tag", load)
	for ii := 0; ii < 10; ii++ {
		l.Frame(layout.Context{}, func(layout.Context) layout.Dimensions {
			if r := l.Schedule("tag", load); r.Value != "v" {
				t.Fatalf("frame %d: got %v", ii, r.Value)
			}
			return layout.Dimensions{}
		})
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("load called %d times, want 1", n)
	}
}

func TestLoaderForget(t *testing.T) {
	l := &Loader{}
	defer l.Close()
	var version int32
	load := func(context.Context) (interface{}, error) {
		return atomic.AddInt32(&version, 1), nil
	}
	if r := await(t, l, "tag", load); r.Value != int32(1) {
		t.Fatalf("first load got %v", r.Value)
	}
	l.Forget("tag")
	if r := await(t, l, "tag", load); r.Value != int32(2) {
		t.Fatalf("reload got %v", r.Value)
	}
}

func TestLoaderCloseCancelsLoads(t *testing.T) {
	l := &Loader{}
	started := make(chan struct{})
	done := make(chan error, 1)
	l.Schedule("slow", func(ctx context.Context) (interface{}, error) {
		close(started)
		<-ctx.Done()
		done <- ctx.Err()
		return nil, ctx.Err()
	})
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatalf("load never started")
	}
	l.Close()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v, want %v", err, context.Canceled)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("load not cancelled")
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Queued: "queued", Loading: "loading", Loaded: "loaded", 9: "unknown"} {
		if got := s.String(); got != want {
			t.Fatalf("state %d: got %q, want %q", s, got, want)
		}
	}
}
