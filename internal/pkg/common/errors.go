package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 返回原始錯誤
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓 errors.Is(err, ErrOrderWriteFailed) 成立
func (e *CustomError) Is(target error) bool {
	t, ok := target.(*CustomError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap 以相同代碼包裝原始錯誤
func (e *CustomError) Wrap(err error) *CustomError {
	return NewError(e.Code, e.Message, e.Status, err)
}

// WithMessage 以相同代碼替換錯誤信息
func (e *CustomError) WithMessage(message string) *CustomError {
	return NewError(e.Code, message, e.Status, e.Err)
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// AsCustomError 取出錯誤鏈中的 CustomError，找不到時歸類為內部錯誤
func AsCustomError(err error) *CustomError {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce
	}
	return ErrInternalError.Wrap(err)
}

// 預定義錯誤代碼
const (
	ErrCodeInvalidRequest  = "INVALID_REQUEST"     // 400
	ErrCodeNotFound        = "NOT_FOUND"           // 404
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"     // 408
	ErrCodeConflict        = "CONFLICT"            // 409
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS"   // 429
	ErrCodeInternalError   = "INTERNAL_ERROR"      // 500
	ErrCodeServiceUnavail  = "SERVICE_UNAVAILABLE" // 503
	ErrCodeGatewayTimeout  = "GATEWAY_TIMEOUT"     // 504

	ErrCodeCatalogUnavailable    = "CATALOG_UNAVAILABLE"
	ErrCodeSelectionInvalid      = "SELECTION_INVALID"
	ErrCodeNutritionLookupFailed = "NUTRITION_LOOKUP_FAILED"
	ErrCodeNutritionNotFound     = "NUTRITION_NOT_FOUND"
	ErrCodeOrderWriteFailed      = "ORDER_WRITE_FAILED"
	ErrCodeOrderInProgress       = "ORDER_IN_PROGRESS"
)

// 預定義錯誤
var (
	ErrInvalidRequest     = NewError(ErrCodeInvalidRequest, "無效的請求", http.StatusBadRequest, nil)
	ErrNotFound           = NewError(ErrCodeNotFound, "資源不存在", http.StatusNotFound, nil)
	ErrTooManyRequests    = NewError(ErrCodeTooManyRequests, "請求過於頻繁", http.StatusTooManyRequests, nil)
	ErrInternalError      = NewError(ErrCodeInternalError, "服務器內部錯誤", http.StatusInternalServerError, nil)
	ErrServiceUnavailable = NewError(ErrCodeServiceUnavail, "服務暫時不可用", http.StatusServiceUnavailable, nil)
	ErrGatewayTimeout     = NewError(ErrCodeGatewayTimeout, "網關超時", http.StatusGatewayTimeout, nil)

	// 業務錯誤
	ErrCatalogUnavailable    = NewError(ErrCodeCatalogUnavailable, "fruit catalog is unavailable", http.StatusServiceUnavailable, nil)
	ErrSelectionInvalid      = NewError(ErrCodeSelectionInvalid, "selection is invalid", http.StatusBadRequest, nil)
	ErrNutritionLookupFailed = NewError(ErrCodeNutritionLookupFailed, "nutrition lookup failed", http.StatusBadGateway, nil)
	ErrNutritionNotFound     = NewError(ErrCodeNutritionNotFound, "fruit not found in nutrition database", http.StatusNotFound, nil)
	ErrOrderWriteFailed      = NewError(ErrCodeOrderWriteFailed, "order could not be saved", http.StatusInternalServerError, nil)
	ErrOrderInProgress       = NewError(ErrCodeOrderInProgress, "an order for this name is already being submitted", http.StatusConflict, nil)
)
