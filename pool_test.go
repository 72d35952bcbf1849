package booksite

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestResolvePoolSize(t *testing.T) {
	t.Parallel()

	gomaxprocs := runtime.GOMAXPROCS(0)

	tests := []struct {
		name    string
		workers int
		want    int
	}{
		{"explicit takes priority", 4, 4},
		{"explicit=1 for sequential", 1, 1},
		{"zero uses auto calculation", 0, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
		{"negative uses auto calculation", -3, min(max(gomaxprocs/cpuDivisor, MinPoolSize), MaxPoolSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := ResolvePoolSize(tt.workers); got != tt.want {
				t.Errorf("ResolvePoolSize(%d) = %d, want %d", tt.workers, got, tt.want)
			}
		})
	}
}

// counterPool builds a pool of ints that counts creations and destructions.
func counterPool(n int, createErr error) (*pool[int], *atomic.Int32, *atomic.Int32) {
	var created, destroyed atomic.Int32
	p := newPool(n,
		func(context.Context) (int, error) {
			if createErr != nil {
				return 0, createErr
			}
			return int(created.Add(1)), nil
		},
		func(int) error {
			destroyed.Add(1)
			return nil
		})
	return p, &created, &destroyed
}

func TestPool_LazyCreationAndReuse(t *testing.T) {
	t.Parallel()

	p, created, destroyed := counterPool(2, nil)
	ctx := context.Background()

	if created.Load() != 0 {
		t.Fatal("items created before first acquire")
	}

	a, err := p.acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	p.release(a)
	b, err := p.acquire(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if a != b || created.Load() != 1 {
		t.Errorf("released item not reused: got %d then %d, %d created", a, b, created.Load())
	}
	p.release(b)

	if err := p.close(); err != nil {
		t.Fatal(err)
	}
	if destroyed.Load() != 1 {
		t.Errorf("destroyed = %d, want 1", destroyed.Load())
	}
	if err := p.close(); err != nil {
		t.Errorf("second close() = %v, want nil", err)
	}
	if _, err := p.acquire(ctx); !errors.Is(err, errPoolClosed) {
		t.Errorf("acquire after close: error = %v, want errPoolClosed", err)
	}
}

func TestPool_BlocksAtCapacity(t *testing.T) {
	t.Parallel()

	p, created, _ := counterPool(1, nil)
	defer func() { _ = p.close() }()

	first, err := p.acquire(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.acquire(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("acquire at capacity: error = %v, want DeadlineExceeded", err)
	}

	got := make(chan int, 1)
	go func() {
		it, _ := p.acquire(context.Background())
		got <- it
	}()
	p.release(first)
	if it := <-got; it != first || created.Load() != 1 {
		t.Errorf("waiter got %d (%d created), want the released item", it, created.Load())
	}
}

func TestPool_CreateErrorFreesSlot(t *testing.T) {
	t.Parallel()

	boom := errors.New("no chrome")
	p, _, _ := counterPool(1, boom)
	for range 2 {
		if _, err := p.acquire(context.Background()); !errors.Is(err, boom) {
			t.Fatalf("acquire() error = %v, want %v", err, boom)
		}
	}
}

func TestPool_Concurrent(t *testing.T) {
	t.Parallel()

	p, created, destroyed := counterPool(3, nil)
	var inUse, peak atomic.Int32

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			it, err := p.acquire(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			n := inUse.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inUse.Add(-1)
			p.release(it)
		}()
	}
	wg.Wait()

	if peak.Load() > 3 || created.Load() > 3 {
		t.Errorf("peak in use = %d, created = %d, want at most 3", peak.Load(), created.Load())
	}
	if err := p.close(); err != nil {
		t.Fatal(err)
	}
	if destroyed.Load() != created.Load() {
		t.Errorf("destroyed %d of %d items", destroyed.Load(), created.Load())
	}
}
