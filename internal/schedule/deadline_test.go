package schedule

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

func TestDeadlines_FiresOnceAfterDelay(t *testing.T) {
	mock := clock.NewMock()
	d := New(mock)

	d.Arm("mapping", 3*time.Second)
	mock.Add(2999 * time.Millisecond)
	if due := d.Due(); len(due) != 0 {
		t.Fatalf("expected nothing due yet, got %v", due)
	}

	mock.Add(time.Millisecond)
	due := d.Due()
	if len(due) != 1 || due[0] != "mapping" {
		t.Fatalf("expected mapping due, got %v", due)
	}
	if again := d.Due(); len(again) != 0 {
		t.Fatalf("deadline fired twice: %v", again)
	}
}

func TestDeadlines_RearmReplacesPrevious(t *testing.T) {
	mock := clock.NewMock()
	d := New(mock)

	d.Arm("compress", 2500*time.Millisecond)
	mock.Add(2 * time.Second)
	d.Arm("compress", 2500*time.Millisecond)

	mock.Add(time.Second)
	if due := d.Due(); len(due) != 0 {
		t.Fatalf("old deadline must be replaced, got %v", due)
	}
	mock.Add(1500 * time.Millisecond)
	if due := d.Due(); len(due) != 1 {
		t.Fatalf("expected exactly one firing, got %v", due)
	}
}

func TestDeadlines_CancelAndCancelAll(t *testing.T) {
	mock := clock.NewMock()
	d := New(mock)

	d.Arm("a", time.Second)
	d.Arm("b", time.Second)
	d.Cancel("a")
	if _, ok := d.Pending("a"); ok {
		t.Fatal("a should be cancelled")
	}
	d.CancelAll()
	mock.Add(time.Minute)
	if due := d.Due(); len(due) != 0 {
		t.Fatalf("cancelled deadlines fired: %v", due)
	}
	if d.Len() != 0 {
		t.Fatalf("expected empty set, got %d", d.Len())
	}
}

func TestDeadlines_DueOrder(t *testing.T) {
	mock := clock.NewMock()
	d := New(mock)

	d.Arm("late", 2*time.Second)
	d.Arm("early", time.Second)
	d.Arm("tie", 2*time.Second)

	next, ok := d.Next()
	if !ok || !next.Equal(mock.Now().Add(time.Second)) {
		t.Fatalf("unexpected next deadline %v", next)
	}

	mock.Add(5 * time.Second)
	due := d.Due()
	want := []Key{"early", "late", "tie"}
	if len(due) != len(want) {
		t.Fatalf("got %v, want %v", due, want)
	}
	for i := range want {
		if due[i] != want[i] {
			t.Fatalf("got %v, want %v", due, want)
		}
	}
}
