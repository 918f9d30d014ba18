package nutrition

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"smoothie-order/internal/infrastructure/config"
	"smoothie-order/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client 營養資訊 API 客戶端，每次查詢只嘗試一次
type Client struct {
	client  *resty.Client
	timeout time.Duration
}

// NewClient 創建營養資訊客戶端
func NewClient(cfg config.NutritionConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetLogger(restyLogger{})

	return &Client{
		client:  client,
		timeout: cfg.Timeout,
	}
}

// Fetch 以 GET /fruit/{key} 查詢。200 為成功，404 為查無，其餘皆為失敗。
func (c *Client) Fetch(ctx context.Context, lookupKey string) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("key", lookupKey).
		Get("/fruit/{key}")
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Failure(0, "request timed out after %s", c.timeout)
		}
		return Failure(0, "request failed: %v", err)
	}

	switch resp.StatusCode() {
	case http.StatusOK:
		payload, err := common.RawJSON(resp.Body())
		if err != nil {
			return Failure(resp.StatusCode(), "%v", err)
		}
		return Success(payload)
	case http.StatusNotFound:
		return NotFound()
	default:
		return Failure(resp.StatusCode(), "nutrition API returned status %d", resp.StatusCode())
	}
}

// Close 關閉閒置連線
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}

// restyLogger 將 resty 內部日誌導向 zap
type restyLogger struct{}

func (restyLogger) Errorf(format string, v ...interface{}) {
	common.LogWarn("resty", zap.String("detail", fmt.Sprintf(format, v...)))
}

func (restyLogger) Warnf(format string, v ...interface{}) {
	common.LogWarn("resty", zap.String("detail", fmt.Sprintf(format, v...)))
}

func (restyLogger) Debugf(format string, v ...interface{}) {
	common.LogDebug("resty", zap.String("detail", fmt.Sprintf(format, v...)))
}
