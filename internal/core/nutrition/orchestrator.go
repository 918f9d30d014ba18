package nutrition

import (
	"context"
	"iter"
	"time"

	"smoothie-order/internal/core/catalog"
	"smoothie-order/internal/core/selection"
	"smoothie-order/internal/pkg/common"

	"go.uber.org/zap"
)

// Fetcher 查詢單一查詢鍵
type Fetcher interface {
	Fetch(ctx context.Context, lookupKey string) Result
}

// Orchestrator 為每個選取的水果發出一次查詢
type Orchestrator struct {
	fetcher Fetcher
}

// NewOrchestrator 創建查詢協調器
func NewOrchestrator(fetcher Fetcher) *Orchestrator {
	return &Orchestrator{fetcher: fetcher}
}

// Lookup 併發查詢所有水果，並依選取順序逐一產出 (水果, 結果)。
// 每次 range 都會重新發出全部請求；提前停止不會留下阻塞的 goroutine。
func (o *Orchestrator) Lookup(ctx context.Context, sel selection.Selection, c catalog.Catalog) iter.Seq2[string, Result] {
	return func(yield func(string, Result) bool) {
		results := make([]chan Result, len(sel))
		for i, name := range sel {
			results[i] = make(chan Result, 1)
			go o.fetchOne(ctx, name, c.LookupKeyFor(name), results[i])
		}
		for i, name := range sel {
			if !yield(name, <-results[i]) {
				return
			}
		}
	}
}

// LookupAll 收集 Lookup 的全部結果
func (o *Orchestrator) LookupAll(ctx context.Context, sel selection.Selection, c catalog.Catalog) []Result {
	out := make([]Result, 0, len(sel))
	for _, r := range o.Lookup(ctx, sel, c) {
		out = append(out, r)
	}
	return out
}

// fetchOne 單一查詢；panic 也只影響這一個水果
func (o *Orchestrator) fetchOne(ctx context.Context, fruit, key string, out chan<- Result) {
	start := time.Now()
	var r Result
	defer func() {
		if p := recover(); p != nil {
			common.LogError("Nutrition lookup panicked",
				zap.String("fruit", fruit),
				zap.Any("panic", p),
			)
			r = Failure(0, "internal error")
		}
		r.Fruit = fruit
		r.LookupKey = key
		common.LogLookup(fruit, key, string(r.Outcome), time.Since(start), r.loggableErr())
		out <- r
	}()
	r = o.fetcher.Fetch(ctx, key)
}

// loggableErr 只有失敗需要警告，查無此水果屬正常結果
func (r Result) loggableErr() error {
	if r.Outcome == OutcomeFailure {
		return r.Err()
	}
	return nil
}
