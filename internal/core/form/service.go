package form

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smoothie-order/internal/core/catalog"
	"smoothie-order/internal/core/guard"
	"smoothie-order/internal/core/nutrition"
	"smoothie-order/internal/core/order"
	"smoothie-order/internal/core/selection"
	"smoothie-order/internal/infrastructure/database"
	"smoothie-order/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 串接表單流程：目錄、驗證、營養查詢、提交訂單
type Service struct {
	store     *database.Store
	catalog   *catalog.Reader
	nutrition *nutrition.Orchestrator
	writer    *order.Writer
	guard     guard.Guard
	policy    order.Policy
}

// NewService 創建表單服務
func NewService(store *database.Store, reader *catalog.Reader, orchestrator *nutrition.Orchestrator,
	writer *order.Writer, g guard.Guard, policy order.Policy) *Service {
	return &Service{
		store:     store,
		catalog:   reader,
		nutrition: orchestrator,
		writer:    writer,
		guard:     g,
		policy:    policy,
	}
}

// View 表單初始內容
type View struct {
	Fruits        []string            `json:"fruits"`
	MaxSelections int                 `json:"max_selections"`
	Policy        order.Policy        `json:"policy"`
	State         selection.FormState `json:"state"`
}

// Confirmation 提交成功的回應
type Confirmation struct {
	Order   order.Record `json:"order"`
	Message string       `json:"message"`
}

// fetchCatalog 在獨立 session 中讀取目錄
func (s *Service) fetchCatalog(ctx context.Context) (catalog.Catalog, error) {
	var c catalog.Catalog
	err := s.store.WithSession(ctx, func(ctx context.Context, sess database.Session) error {
		var err error
		c, err = s.catalog.FetchCatalog(ctx, sess)
		return err
	})
	if err != nil {
		return nil, asCatalogErr(err)
	}
	return c, nil
}

// asCatalogErr 取得連線失敗也屬於目錄不可用
func asCatalogErr(err error) error {
	if errors.Is(err, common.ErrCatalogUnavailable) {
		return err
	}
	return common.ErrCatalogUnavailable.Wrap(err)
}

// LoadForm 讀取目錄並返回空白表單
func (s *Service) LoadForm(ctx context.Context) (*View, error) {
	c, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return &View{
		Fruits:        c.Names(),
		MaxSelections: selection.MaxSelections,
		Policy:        s.policy,
		State:         selection.EvaluateForm("", nil, c),
	}, nil
}

// Evaluate 計算目前表單狀態
func (s *Service) Evaluate(ctx context.Context, name string, sel selection.Selection) (*selection.FormState, error) {
	c, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	state := selection.EvaluateForm(name, sel, c)
	return &state, nil
}

// LookupNutrition 驗證選取後查詢每個水果；單一水果失敗只反映在它自己的結果中
func (s *Service) LookupNutrition(ctx context.Context, sel selection.Selection) ([]nutrition.Result, error) {
	c, err := s.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}
	if v := selection.Validate(sel, c); !v.Valid() {
		return nil, common.ErrSelectionInvalid.WithMessage(v.Message)
	}
	results := s.nutrition.LookupAll(ctx, sel, c)

	failed := 0
	for _, r := range results {
		if r.Outcome == nutrition.OutcomeFailure {
			failed++
		}
	}
	common.LogInfo("Nutrition lookup finished",
		zap.Int("fruits", len(results)),
		zap.Int("failed", failed),
	)
	return results, nil
}

// SubmitOrder 驗證、正規化並寫入訂單。同名訂單提交中時返回 ErrOrderInProgress。
func (s *Service) SubmitOrder(ctx context.Context, name string, sel selection.Selection) (*Confirmation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.ErrInvalidRequest.WithMessage("name on order is required")
	}

	token, err := s.guard.Acquire(ctx, name)
	if err != nil {
		if errors.Is(err, guard.ErrHeld) {
			common.LogWarn("Duplicate order submission rejected", zap.String("name_on_order", name))
			return nil, common.ErrOrderInProgress
		}
		return nil, common.ErrServiceUnavailable.Wrap(err)
	}
	defer func() {
		// 請求被取消時仍要釋放
		if err := s.guard.Release(context.WithoutCancel(ctx), name, token); err != nil {
			common.LogWarn("Failed to release submission lock", zap.String("name_on_order", name), zap.Error(err))
		}
	}()

	var rec *order.Record
	err = s.store.WithSession(ctx, func(ctx context.Context, sess database.Session) error {
		c, err := s.catalog.FetchCatalog(ctx, sess)
		if err != nil {
			return err
		}
		v := selection.Validate(sel, c)
		if !v.Valid() {
			return common.ErrSelectionInvalid.WithMessage(v.Message)
		}
		rec, err = s.writer.SubmitOrder(ctx, sess, name, order.Normalize(v.Selection), s.policy)
		return err
	})
	if err != nil {
		var ce *common.CustomError
		if !errors.As(err, &ce) {
			err = common.ErrOrderWriteFailed.Wrap(err)
		}
		return nil, err
	}

	common.LogInfo("Order submitted",
		zap.String("order_uid", rec.OrderUID),
		zap.String("name_on_order", rec.NameOnOrder),
		zap.String("ingredients", rec.Ingredients),
		zap.String("policy", string(s.policy)),
	)
	return &Confirmation{
		Order:   *rec,
		Message: fmt.Sprintf("Your Smoothie is ordered, %s!", rec.NameOnOrder),
	}, nil
}
