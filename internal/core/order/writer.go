package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"smoothie-order/internal/infrastructure/config"
	"smoothie-order/internal/infrastructure/database"
	"smoothie-order/internal/pkg/common"

	"go.uber.org/zap"
)

// Policy 訂單寫入策略
type Policy string

const (
	// PolicyInsert 每次提交都新增一筆，允許同名重複
	PolicyInsert Policy = config.PolicyInsert
	// PolicyUpsert 同名已存在則更新 ingredients 並重設 order_filled，否則新增
	PolicyUpsert Policy = config.PolicyUpsert
)

// ParsePolicy 解析設定值
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyInsert, PolicyUpsert:
		return p, nil
	case "":
		return PolicyUpsert, nil
	default:
		return "", fmt.Errorf("unsupported order policy %q", s)
	}
}

// Record orders 資料表的一筆資料
type Record struct {
	OrderUID       string    `json:"order_uid"`
	NameOnOrder    string    `json:"name_on_order"`
	Ingredients    string    `json:"ingredients"`
	OrderFilled    bool      `json:"order_filled"`
	OrderTimestamp time.Time `json:"order_ts"`
}

// Writer 寫入訂單，所有值一律以綁定參數傳入
type Writer struct {
	timeout time.Duration
	now     func() time.Time
	newUID  func() string
}

// NewWriter 創建訂單寫入器
func NewWriter() *Writer {
	return &Writer{
		timeout: 3 * time.Second,
		now:     time.Now,
		newUID:  common.GenerateUUID,
	}
}

const (
	insertOrderSQL = `INSERT INTO orders (order_uid, name_on_order, ingredients, order_filled, order_ts) VALUES (?, ?, ?, 0, ?)`
	updateOrderSQL = `UPDATE orders SET ingredients = ?, order_filled = 0 WHERE name_on_order = ?`
	selectOrderSQL = `SELECT order_uid, name_on_order, ingredients, order_filled, order_ts FROM orders`
)

// SubmitOrder 依策略寫入訂單並返回寫入後的資料。
// name 去除前後空白後不可為空，ingredients 應為 Normalize 的結果且不可為空。
func (w *Writer) SubmitOrder(ctx context.Context, sess database.Session, name, ingredients string, policy Policy) (*Record, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrInvalidRequest.WithMessage("name on order is required")
	}
	if strings.TrimSpace(ingredients) == "" {
		return nil, common.ErrSelectionInvalid.WithMessage("at least one ingredient is required")
	}

	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	var (
		rec *Record
		err error
	)
	switch policy {
	case PolicyInsert:
		rec, err = w.insert(ctx, sess, name, ingredients)
	case PolicyUpsert:
		rec, err = w.upsert(ctx, sess, name, ingredients)
	default:
		return nil, common.ErrInvalidRequest.WithMessage(fmt.Sprintf("unsupported order policy %q", policy))
	}
	if err != nil {
		common.LogError("Failed to write order",
			zap.String("name_on_order", name),
			zap.String("policy", string(policy)),
			zap.Error(err),
		)
		return nil, common.ErrOrderWriteFailed.Wrap(err)
	}
	return rec, nil
}

func (w *Writer) insert(ctx context.Context, q database.Querier, name, ingredients string) (*Record, error) {
	rec := &Record{
		OrderUID:       w.newUID(),
		NameOnOrder:    name,
		Ingredients:    ingredients,
		OrderTimestamp: w.now().UTC(),
	}
	if _, err := q.ExecContext(ctx, insertOrderSQL,
		rec.OrderUID, rec.NameOnOrder, rec.Ingredients, formatTS(rec.OrderTimestamp)); err != nil {
		return nil, err
	}
	return rec, nil
}

// upsert 在單一交易內先 UPDATE，無符合資料列時再 INSERT；order_ts 僅在新增時設定
func (w *Writer) upsert(ctx context.Context, sess database.Session, name, ingredients string) (*Record, error) {
	tx, err := sess.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, updateOrderSQL, ingredients, name)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}

	var rec *Record
	if n == 0 {
		rec, err = w.insert(ctx, tx, name, ingredients)
	} else {
		rec, err = findFirst(ctx, tx, name)
	}
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return rec, nil
}

// FindByName 返回指定名稱的全部訂單，依建立時間排序
func (w *Writer) FindByName(ctx context.Context, q database.Querier, name string) ([]Record, error) {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	rows, err := q.QueryContext(ctx, selectOrderSQL+` WHERE name_on_order = ? ORDER BY order_ts, rowid`, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func findFirst(ctx context.Context, q database.Querier, name string) (*Record, error) {
	row := q.QueryRowContext(ctx, selectOrderSQL+` WHERE name_on_order = ? ORDER BY order_ts, rowid LIMIT 1`, name)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("order for %q vanished after update", name)
	}
	return rec, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*Record, error) {
	var (
		rec    Record
		filled int
		ts     string
	)
	if err := s.Scan(&rec.OrderUID, &rec.NameOnOrder, &rec.Ingredients, &filled, &ts); err != nil {
		return nil, err
	}
	rec.OrderFilled = filled != 0
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("parse order_ts %q: %w", ts, err)
	}
	rec.OrderTimestamp = t
	return &rec, nil
}

// formatTS 以固定寬度的 UTC 字串儲存，字串排序即時間排序
func formatTS(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z07:00")
}
