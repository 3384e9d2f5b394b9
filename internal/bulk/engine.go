// Package bulk runs many independent mutation closures under a bounded
// worker pool and reports per-item outcomes. A batch never fails as a whole;
// individual failures are collected, not raised.
package bulk

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Outcome statuses.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// DefaultConcurrency matches the upstream service's batch default.
const DefaultConcurrency = 3

// previewLimit caps how many outcomes a Summary embeds.
const previewLimit = 20

// guidanceIndexLimit caps how many failing indices the guidance hint names.
const guidanceIndexLimit = 10

// Outcome is the result of one item. Outcomes are always returned in input
// order even though execution completes out of order.
type Outcome struct {
	Index   int         `json:"index"`
	Status  string      `json:"status"`
	Payload interface{} `json:"payload,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Worker processes the item at index. Errors (and panics) become failed
// outcomes; they never abort the batch.
type Worker func(ctx context.Context, index int) (interface{}, error)

// Run executes total items under exactly concurrency workers, each pulling
// the next unclaimed index when free. The returned slice is indexed by input
// position. Once started, every item runs to completion or failure; there is
// no mid-batch cancellation.
func Run(ctx context.Context, total int, worker Worker, concurrency int) []Outcome {
	outcomes := make([]Outcome, total)
	if total == 0 {
		return outcomes
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if concurrency > total {
		concurrency = total
	}

	indices := make(chan int)
	done := make(chan struct{})

	for w := 0; w < concurrency; w++ {
		go func() {
			for idx := range indices {
				outcomes[idx] = runOne(ctx, idx, worker)
			}
			done <- struct{}{}
		}()
	}

	for i := 0; i < total; i++ {
		indices <- i
	}
	close(indices)
	for w := 0; w < concurrency; w++ {
		<-done
	}

	return outcomes
}

func runOne(ctx context.Context, index int, worker Worker) (out Outcome) {
	out = Outcome{Index: index, Status: StatusFailed}
	defer func() {
		if r := recover(); r != nil {
			out.Payload = nil
			out.Error = fmt.Sprintf("panic: %v", r)
		}
	}()

	payload, err := worker(ctx, index)
	if err != nil {
		out.Error = err.Error()
		return out
	}
	out.Status = StatusSuccess
	out.Payload = payload
	return out
}

// Summary aggregates a batch's outcomes for the caller.
type Summary struct {
	BatchID       string    `json:"batchId"`
	Total         int       `json:"total"`
	Succeeded     int       `json:"succeeded"`
	Failed        int       `json:"failed"`
	FirstError    string    `json:"firstError,omitempty"`
	FailedIndices []int     `json:"failedIndices,omitempty"`
	Preview       []Outcome `json:"preview"`
	Truncated     bool      `json:"truncated"`
	Guidance      string    `json:"guidance,omitempty"`
}

// Summarize folds outcomes into a Summary. Guidance names up to ten failing
// indices so the caller can retry precisely.
func Summarize(outcomes []Outcome) Summary {
	summary := Summary{
		BatchID: uuid.NewString(),
		Total:   len(outcomes),
	}
	for _, out := range outcomes {
		if out.Status == StatusSuccess {
			summary.Succeeded++
			continue
		}
		summary.Failed++
		summary.FailedIndices = append(summary.FailedIndices, out.Index)
		if summary.FirstError == "" {
			summary.FirstError = out.Error
		}
	}

	if len(outcomes) > previewLimit {
		summary.Preview = outcomes[:previewLimit]
		summary.Truncated = true
	} else {
		summary.Preview = outcomes
	}

	if summary.Failed > 0 {
		shown := summary.FailedIndices
		suffix := ""
		if len(shown) > guidanceIndexLimit {
			shown = shown[:guidanceIndexLimit]
			suffix = ", ..."
		}
		parts := make([]string, len(shown))
		for i, idx := range shown {
			parts[i] = fmt.Sprintf("%d", idx)
		}
		summary.Guidance = fmt.Sprintf("%d of %d items failed (indices %s%s). Check each failed outcome's error and retry only those items.",
			summary.Failed, summary.Total, strings.Join(parts, ", "), suffix)
	}

	return summary
}
