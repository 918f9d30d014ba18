package handlers

import (
	"errors"
	"net/http"

	"smoothie-order/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewErrorResponse 將錯誤轉為 API 錯誤結構；details 僅在開發模式顯示
func NewErrorResponse(err error) (int, common.ErrorResponse) {
	ce := common.AsCustomError(err)
	resp := common.ErrorResponse{
		Code:    ce.Code,
		Message: ce.Message,
	}
	if gin.IsDebugging() && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}
	status := ce.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, resp
}

// RespondError 寫入錯誤響應並記錄日誌
func RespondError(c *gin.Context, err error) {
	status, resp := NewErrorResponse(err)
	fields := []zap.Field{
		zap.String("code", resp.Code),
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", requestid.Get(c)),
		zap.Error(err),
	}
	if status >= http.StatusInternalServerError {
		common.LogError("Request failed", fields...)
	} else {
		common.LogWarn("Request rejected", fields...)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, resp)
}

// BindJSON 以嚴格模式解析請求體
func BindJSON(c *gin.Context, v interface{}) bool {
	if c.Request.Body == nil {
		RespondError(c, common.ErrInvalidRequest.WithMessage("Invalid request format"))
		return false
	}
	if err := common.DecodeJSONStrict(c.Request.Body, v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, common.NewError(common.ErrCodeInvalidRequest, "Request body too large",
				http.StatusRequestEntityTooLarge, err))
			return false
		}
		RespondError(c, common.ErrInvalidRequest.WithMessage("Invalid request format").Wrap(err))
		return false
	}
	return true
}
