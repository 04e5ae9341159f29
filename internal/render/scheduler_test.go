package render

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSchedulerDeliversNewestRequest(t *testing.T) {
	sess, assets := testSession(t, 64, 64)
	p := New(assets, nil, 32)
	s := NewPreviewScheduler(p)
	defer s.Close()

	var mu sync.Mutex
	var delivered []int
	done := make(chan struct{}, 16)
	submit := func(id int) {
		ok := s.Submit(context.Background(), PreviewRequest{
			Session: sess,
			Deliver: func(res *Result, err error) {
				if err != nil {
					t.Errorf("request %d: %v", id, err)
				}
				mu.Lock()
				delivered = append(delivered, id)
				mu.Unlock()
				done <- struct{}{}
			},
		})
		if !ok {
			t.Fatalf("submit %d rejected", id)
		}
	}

	// A burst of edits. At minimum the last one must be delivered;
	// anything delivered must arrive in submission order.
	for i := 0; i < 8; i++ {
		submit(i)
	}

	deadline := time.After(5 * time.Second)
	for {
		mu.Lock()
		n := len(delivered)
		last := -1
		if n > 0 {
			last = delivered[n-1]
		}
		mu.Unlock()
		if last == 7 {
			break
		}
		select {
		case <-done:
		case <-deadline:
			t.Fatalf("newest request never delivered; got %v", delivered)
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for i := 1; i < len(delivered); i++ {
		if delivered[i] <= delivered[i-1] {
			t.Fatalf("stale render delivered after a newer one: %v", delivered)
		}
	}
}

func TestSchedulerRejectsAfterClose(t *testing.T) {
	sess, assets := testSession(t, 16, 16)
	s := NewPreviewScheduler(New(assets, nil, 0))
	s.Close()

	ok := s.Submit(context.Background(), PreviewRequest{Session: sess})
	if ok {
		t.Fatal("closed scheduler accepted a request")
	}
}
