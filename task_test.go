package kernel

import "testing"

func TestTableAllocateReleaseRoundTrip(t *testing.T) {
	tb := newTable(4)
	before := tb.freeLen()
	if before != 4 {
		t.Fatalf("expected 4 free slots, got %d", before)
	}

	got, ok := tb.allocate()
	if !ok {
		t.Fatal("expected allocation to succeed")
	}
	if tb.freeLen() != before-1 {
		t.Fatalf("expected free list to shrink by one, got %d", tb.freeLen())
	}

	tb.release(got)
	if tb.freeLen() != before {
		t.Fatalf("round trip: expected free list back to %d, got %d", before, tb.freeLen())
	}
	if got.state != Dead {
		t.Fatalf("expected released task to be Dead, got %v", got.state)
	}
}

func TestTableAllocateExhaustion(t *testing.T) {
	tb := newTable(2)
	for i := 0; i < 2; i++ {
		if _, ok := tb.allocate(); !ok {
			t.Fatalf("allocation %d should have succeeded", i)
		}
	}
	if _, ok := tb.allocate(); ok {
		t.Fatal("expected exhaustion once free list is empty")
	}
}

func TestTableReservesIdleSlot(t *testing.T) {
	tb := newTable(3)
	if tb.idle.class != Idle {
		t.Fatalf("expected idle class, got %v", tb.idle.class)
	}
	if tb.idle.id != TaskID(4) {
		t.Fatalf("expected idle id 4 (MAXPROCESS+1), got %v", tb.idle.id)
	}
	if len(tb.tasks) != 4 {
		t.Fatalf("expected MAXPROCESS+1 = 4 descriptors, got %d", len(tb.tasks))
	}
}
