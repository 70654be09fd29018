package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/okian/tutorbot/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithLanes(4), WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	event1 := model.Event{ID: "event1", UserID: 5, Kind: model.KindText, Payload: "hi"}
	if !q.Enqueue(ctx, event1) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	event := <-q.Lane(q.LaneFor(5))
	if event.ID != "event1" {
		t.Errorf("expected event1, got %v", event.ID)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_LaneCapacity(t *testing.T) {
	q := NewInMemoryQueue(WithLanes(2), WithCapacity(2))
	ctx := context.Background()

	// Users 1 and 3 share lane 1; user 2 is on lane 0.
	for i := range 2 {
		if !q.Enqueue(ctx, model.Event{ID: fmt.Sprintf("a%d", i), UserID: 1}) {
			t.Fatalf("expected enqueue %d to succeed", i)
		}
	}
	if q.Enqueue(ctx, model.Event{ID: "a2", UserID: 3}) {
		t.Error("expected enqueue to fail when the lane is full")
	}
	if !q.Enqueue(ctx, model.Event{ID: "b0", UserID: 2}) {
		t.Error("expected another lane to accept events")
	}
	if l := q.Len(ctx); l != 3 {
		t.Errorf("expected length 3, got %d", l)
	}
}

func TestInMemoryQueue_PerUserOrder(t *testing.T) {
	q := NewInMemoryQueue(WithLanes(8), WithCapacity(1000))
	ctx := context.Background()
	const users, perUser = 10, 50

	var wg sync.WaitGroup
	for u := range users {
		wg.Add(1)
		go func(user model.UserID) {
			defer wg.Done()
			for j := range perUser {
				if !q.Enqueue(ctx, model.Event{ID: fmt.Sprintf("%d-%d", user, j), UserID: user, Payload: fmt.Sprint(j)}) {
					t.Errorf("enqueue %d-%d failed", user, j)
				}
			}
		}(model.UserID(u + 1))
	}
	wg.Wait()
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}

	next := map[model.UserID]int{}
	total := 0
	for i := range q.Lanes() {
		for e := range q.Lane(i) {
			if q.LaneFor(e.UserID) != i {
				t.Errorf("event %s on lane %d, want %d", e.ID, i, q.LaneFor(e.UserID))
			}
			if e.Payload != fmt.Sprint(next[e.UserID]) {
				t.Errorf("user %d: got %s, want %d", e.UserID, e.Payload, next[e.UserID])
			}
			next[e.UserID]++
			total++
		}
	}
	if total != users*perUser {
		t.Errorf("expected %d events, got %d", users*perUser, total)
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithLanes(1))
	ctx := context.Background()

	if !q.Enqueue(ctx, model.Event{ID: "before", UserID: 1}) {
		t.Fatal("expected enqueue to succeed")
	}
	if err := q.Close(); err != nil {
		t.Fatal(err)
	}
	if err := q.Close(); err != nil {
		t.Errorf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, model.Event{ID: "after", UserID: 1}) {
		t.Error("expected enqueue after close to fail")
	}

	e, ok := <-q.Lane(0)
	if !ok || e.ID != "before" {
		t.Errorf("expected queued event to drain, got %v %v", e.ID, ok)
	}
	if _, ok := <-q.Lane(0); ok {
		t.Error("expected lane to be closed")
	}
}
