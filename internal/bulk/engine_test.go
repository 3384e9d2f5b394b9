package bulk

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRunPreservesInputOrder(t *testing.T) {
	// Item 0 finishes last; outcomes must still come back in input order.
	worker := func(ctx context.Context, i int) (interface{}, error) {
		if i == 0 {
			time.Sleep(50 * time.Millisecond)
		}
		return fmt.Sprintf("item-%d", i), nil
	}

	outcomes := Run(context.Background(), 4, worker, 4)
	if len(outcomes) != 4 {
		t.Fatalf("expected 4 outcomes, got %d", len(outcomes))
	}
	for i, out := range outcomes {
		if out.Index != i {
			t.Fatalf("outcome %d has index %d", i, out.Index)
		}
		if out.Status != StatusSuccess || out.Payload != fmt.Sprintf("item-%d", i) {
			t.Fatalf("unexpected outcome %d: %+v", i, out)
		}
	}
}

func TestRunFailuresDoNotAbortBatch(t *testing.T) {
	boom := errors.New("item exploded")
	worker := func(ctx context.Context, i int) (interface{}, error) {
		if i == 1 {
			return nil, boom
		}
		return i, nil
	}

	outcomes := Run(context.Background(), 3, worker, 2)
	if outcomes[0].Status != StatusSuccess || outcomes[2].Status != StatusSuccess {
		t.Fatalf("surrounding items must still run: %+v", outcomes)
	}
	if outcomes[1].Status != StatusFailed || outcomes[1].Error != boom.Error() {
		t.Fatalf("unexpected failed outcome: %+v", outcomes[1])
	}
}

func TestRunCapturesPanics(t *testing.T) {
	worker := func(ctx context.Context, i int) (interface{}, error) {
		if i == 0 {
			panic("worker bug")
		}
		return i, nil
	}

	outcomes := Run(context.Background(), 2, worker, 1)
	if outcomes[0].Status != StatusFailed || !strings.Contains(outcomes[0].Error, "panic: worker bug") {
		t.Fatalf("panic must become a failed outcome: %+v", outcomes[0])
	}
	if outcomes[1].Status != StatusSuccess {
		t.Fatalf("panic must not abort the batch: %+v", outcomes[1])
	}
}

func TestRunRespectsConcurrencyBound(t *testing.T) {
	var mu sync.Mutex
	var active, peak int

	worker := func(ctx context.Context, i int) (interface{}, error) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil, nil
	}

	Run(context.Background(), 6, worker, 2)
	if peak > 2 {
		t.Fatalf("concurrency bound violated: peak %d workers", peak)
	}
}

func TestRunClampsConcurrency(t *testing.T) {
	var calls int64
	worker := func(ctx context.Context, i int) (interface{}, error) {
		atomic.AddInt64(&calls, 1)
		return nil, nil
	}

	// Zero concurrency falls back to the default; oversized pools clamp to n.
	if outcomes := Run(context.Background(), 2, worker, 0); len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if outcomes := Run(context.Background(), 2, worker, 50); len(outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %d", len(outcomes))
	}
	if calls != 4 {
		t.Fatalf("expected 4 worker calls, got %d", calls)
	}

	if outcomes := Run(context.Background(), 0, worker, 3); len(outcomes) != 0 {
		t.Fatalf("empty batch must return empty outcomes, got %d", len(outcomes))
	}
}

func TestSummarize(t *testing.T) {
	outcomes := []Outcome{
		{Index: 0, Status: StatusSuccess},
		{Index: 1, Status: StatusFailed, Error: "first failure"},
		{Index: 2, Status: StatusSuccess},
		{Index: 3, Status: StatusFailed, Error: "second failure"},
	}

	s := Summarize(outcomes)
	if s.BatchID == "" {
		t.Fatal("summary must carry a batch id")
	}
	if s.Total != 4 || s.Succeeded != 2 || s.Failed != 2 {
		t.Fatalf("unexpected totals: %+v", s)
	}
	if s.FirstError != "first failure" {
		t.Fatalf("FirstError = %q", s.FirstError)
	}
	if len(s.FailedIndices) != 2 || s.FailedIndices[0] != 1 || s.FailedIndices[1] != 3 {
		t.Fatalf("FailedIndices = %v", s.FailedIndices)
	}
	if s.Truncated || len(s.Preview) != 4 {
		t.Fatalf("small batches embed all outcomes: truncated=%v preview=%d", s.Truncated, len(s.Preview))
	}
	if !strings.Contains(s.Guidance, "indices 1, 3") {
		t.Fatalf("guidance must name failing indices: %q", s.Guidance)
	}
}

func TestSummarizeTruncatesPreviewAndGuidance(t *testing.T) {
	outcomes := make([]Outcome, 40)
	for i := range outcomes {
		outcomes[i] = Outcome{Index: i, Status: StatusFailed, Error: fmt.Sprintf("err %d", i)}
	}

	s := Summarize(outcomes)
	if !s.Truncated || len(s.Preview) != 20 {
		t.Fatalf("expected a 20-item preview, got truncated=%v preview=%d", s.Truncated, len(s.Preview))
	}
	if len(s.FailedIndices) != 40 {
		t.Fatalf("FailedIndices must be complete, got %d", len(s.FailedIndices))
	}
	if !strings.Contains(s.Guidance, "...") {
		t.Fatalf("guidance must elide beyond ten indices: %q", s.Guidance)
	}
}

func TestSummarizeAllSuccess(t *testing.T) {
	s := Summarize([]Outcome{{Index: 0, Status: StatusSuccess}})
	if s.Failed != 0 || s.Guidance != "" || s.FirstError != "" {
		t.Fatalf("clean batches carry no guidance: %+v", s)
	}
}
