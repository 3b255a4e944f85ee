package ui

import (
	"bytes"
	"testing"
	"time"
)

func TestProgressHandleMarkDoneCompletesBar(t *testing.T) {
	pm := NewProgressManager(&bytes.Buffer{})
	h := pm.Register("novel")

	h.SetTotal(5)
	h.Update(1, 1)
	h.AddBytes(2048)
	h.MarkDone()

	// Counters are frozen once the bar is done.
	h.Update(4, 1)
	h.SetTotal(9)

	if got := h.bar.Current(); got != 2 {
		t.Fatalf("current = %d, want 2", got)
	}
	if got := h.failed.Load(); got != 1 {
		t.Fatalf("failed = %d, want 1", got)
	}
	if got := h.bytes.Load(); got != 2048 {
		t.Fatalf("bytes = %d, want 2048", got)
	}

	closed := make(chan struct{})
	go func() {
		pm.Close()
		close(closed)
	}()

	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return after MarkDone")
	}
}
