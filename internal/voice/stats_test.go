package voice

import (
	"sync"
	"testing"
)

func TestParseStats(t *testing.T) {
	stats := NewParseStats()

	stats.RecordAccepted()
	stats.RecordAccepted()
	stats.RecordRejected()

	if stats.Accepted() != 2 {
		t.Errorf("Accepted() = %d, want 2", stats.Accepted())
	}
	if stats.Rejected() != 1 {
		t.Errorf("Rejected() = %d, want 1", stats.Rejected())
	}
	if stats.Total() != 3 {
		t.Errorf("Total() = %d, want 3", stats.Total())
	}

	if got := stats.String(); got != "accepted=2 rejected=1 total=3" {
		t.Errorf("String() = %q", got)
	}

	stats.Reset()
	if stats.Total() != 0 {
		t.Errorf("Total() after Reset = %d, want 0", stats.Total())
	}
}

func TestParseStatsConcurrent(t *testing.T) {
	stats := NewParseStats()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				stats.RecordAccepted()
				stats.RecordRejected()
			}
		}()
	}
	wg.Wait()

	if stats.Accepted() != 1000 || stats.Rejected() != 1000 {
		t.Errorf("stats = %d/%d, want 1000/1000", stats.Accepted(), stats.Rejected())
	}
}
