package pool

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/charSLee013/edgescan/internal/fatal"
)

func TestRunStopsSubmittingAfterFatalSignal(t *testing.T) {
	items := make([]int, 200)
	for i := range items {
		items[i] = i
	}
	sig := fatal.New()

	ch := Run(context.Background(), items, 4, func(ctx context.Context, n int) int {
		if n == 5 {
			sig.Report(syscall.EMFILE)
		}
		time.Sleep(time.Millisecond)
		return n
	}, nil, sig)

	count := 0
	for range ch {
		count++
	}

	if count >= len(items) {
		t.Fatalf("expected Run to stop early after a fatal signal, got all %d results", count)
	}
}
