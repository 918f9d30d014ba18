package nutrition

import (
	"encoding/json"
	"fmt"

	"smoothie-order/internal/pkg/common"
)

// Outcome 單一水果查詢結果類型
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailure  Outcome = "failure"
)

// Result 單一水果的查詢結果，只存在於一次請求中
type Result struct {
	Fruit      string          `json:"fruit"`
	LookupKey  string          `json:"lookup_key"`
	Outcome    Outcome         `json:"outcome"`
	Payload    json.RawMessage `json:"payload,omitempty"` // API 原始 JSON，不做修改
	Message    string          `json:"message,omitempty"`
	StatusCode int             `json:"status_code,omitempty"`
}

// Success 建立成功結果
func Success(payload json.RawMessage) Result {
	return Result{Outcome: OutcomeSuccess, Payload: payload, StatusCode: 200}
}

// NotFound 建立查無此水果結果
func NotFound() Result {
	return Result{Outcome: OutcomeNotFound, StatusCode: 404, Message: "not in the nutrition database"}
}

// Failure 建立失敗結果
func Failure(statusCode int, format string, args ...any) Result {
	return Result{Outcome: OutcomeFailure, StatusCode: statusCode, Message: fmt.Sprintf(format, args...)}
}

// Err 將非成功結果轉為錯誤分類；成功時返回 nil
func (r Result) Err() error {
	switch r.Outcome {
	case OutcomeSuccess:
		return nil
	case OutcomeNotFound:
		return common.ErrNutritionNotFound.WithMessage(fmt.Sprintf("%s is not in the nutrition database", r.Fruit))
	default:
		return common.ErrNutritionLookupFailed.WithMessage(fmt.Sprintf("nutrition lookup for %s failed: %s", r.Fruit, r.Message))
	}
}
