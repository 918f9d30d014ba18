package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smoothie-order/internal/infrastructure/database"
	"smoothie-order/internal/pkg/common"

	"go.uber.org/zap"
)

// FruitOption 目錄中的一種水果
type FruitOption struct {
	DisplayName string  `json:"display_name"`
	LookupKey   *string `json:"lookup_key"` // 允許 null
}

// ResolveLookupKey 返回營養 API 的查詢鍵：有 LookupKey 時使用之，否則以小寫的顯示名稱代替
func (f FruitOption) ResolveLookupKey() string {
	if f.LookupKey != nil {
		if key := strings.TrimSpace(*f.LookupKey); key != "" {
			return key
		}
	}
	return FallbackLookupKey(f.DisplayName)
}

// FallbackLookupKey 將顯示名稱轉為 API 預期的小寫格式
func FallbackLookupKey(displayName string) string {
	return strings.ToLower(strings.TrimSpace(displayName))
}

// Catalog 依資料庫返回順序排列的水果清單
type Catalog []FruitOption

// Find 以顯示名稱精確比對
func (c Catalog) Find(name string) (FruitOption, bool) {
	for _, f := range c {
		if f.DisplayName == name {
			return f, true
		}
	}
	return FruitOption{}, false
}

// Contains 判斷名稱是否在目錄中
func (c Catalog) Contains(name string) bool {
	_, ok := c.Find(name)
	return ok
}

// Names 返回所有顯示名稱
func (c Catalog) Names() []string {
	names := make([]string, len(c))
	for i, f := range c {
		names[i] = f.DisplayName
	}
	return names
}

// LookupKeyFor 解析某個選取項目的查詢鍵；不在目錄中時退回顯示名稱
func (c Catalog) LookupKeyFor(name string) string {
	if f, ok := c.Find(name); ok {
		return f.ResolveLookupKey()
	}
	return FallbackLookupKey(name)
}

// Reader 讀取水果目錄
type Reader struct {
	timeout time.Duration
}

// NewReader 創建目錄讀取器
func NewReader() *Reader {
	return &Reader{timeout: 3 * time.Second}
}

// FetchCatalog 讀取 fruit_options 全部資料列。任何資料庫錯誤都包裝為 CatalogUnavailable。
func (r *Reader) FetchCatalog(ctx context.Context, q database.Querier) (Catalog, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	rows, err := q.QueryContext(ctx, `SELECT fruit_name, search_on FROM fruit_options ORDER BY rowid`)
	if err != nil {
		common.LogError("Failed to read fruit catalog", zap.Error(err))
		return nil, common.ErrCatalogUnavailable.Wrap(err)
	}
	defer rows.Close()

	var c Catalog
	for rows.Next() {
		var (
			f        FruitOption
			searchOn *string
		)
		if err := rows.Scan(&f.DisplayName, &searchOn); err != nil {
			return nil, common.ErrCatalogUnavailable.Wrap(fmt.Errorf("scan fruit option: %w", err))
		}
		f.LookupKey = searchOn
		c = append(c, f)
	}
	if err := rows.Err(); err != nil {
		common.LogError("Failed to iterate fruit catalog", zap.Error(err))
		return nil, common.ErrCatalogUnavailable.Wrap(err)
	}

	common.LogDebug("Fruit catalog loaded", zap.Int("count", len(c)))
	return c, nil
}
