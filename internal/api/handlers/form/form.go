package form

import (
	"net/http"

	"smoothie-order/internal/api/handlers"
	formService "smoothie-order/internal/core/form"
	"smoothie-order/internal/core/nutrition"
	"smoothie-order/internal/core/selection"
	"smoothie-order/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StateRequest 表單狀態請求
type StateRequest struct {
	Name      string   `json:"name"`
	Selection []string `json:"selection"`
}

// NutritionRequest 營養查詢請求
type NutritionRequest struct {
	Selection []string `json:"selection"`
}

// OrderRequest 提交訂單請求
type OrderRequest struct {
	Name      string   `json:"name"`
	Selection []string `json:"selection"`
}

// NutritionItem 單一水果的查詢結果；失敗時附上錯誤分類
type NutritionItem struct {
	nutrition.Result
	Error *common.ErrorResponse `json:"error,omitempty"`
}

// NutritionResponse 營養查詢回應，順序與選取一致
type NutritionResponse struct {
	Results []NutritionItem `json:"results"`
}

// Handler 表單流程處理器
type Handler struct {
	service *formService.Service
}

// NewHandler 創建表單處理器
func NewHandler(service *formService.Service) *Handler {
	return &Handler{service: service}
}

// HandleLoadForm 返回目錄與空白表單狀態
func (h *Handler) HandleLoadForm(c *gin.Context) {
	view, err := h.service.LoadForm(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// HandleFormState 依名稱與選取計算表單狀態
func (h *Handler) HandleFormState(c *gin.Context) {
	var req StateRequest
	if !handlers.BindJSON(c, &req) {
		return
	}
	state, err := h.service.Evaluate(c.Request.Context(), req.Name, selection.Selection(req.Selection))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, state)
}

// HandleNutrition 查詢每個選取水果的營養資訊
func (h *Handler) HandleNutrition(c *gin.Context) {
	var req NutritionRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	results, err := h.service.LookupNutrition(c.Request.Context(), selection.Selection(req.Selection))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	resp := NutritionResponse{Results: make([]NutritionItem, 0, len(results))}
	for _, r := range results {
		item := NutritionItem{Result: r}
		if err := r.Err(); err != nil {
			_, er := handlers.NewErrorResponse(err)
			item.Error = &er
		}
		resp.Results = append(resp.Results, item)
	}
	c.JSON(http.StatusOK, resp)
}

// HandleSubmitOrder 提交訂單
func (h *Handler) HandleSubmitOrder(c *gin.Context) {
	var req OrderRequest
	if !handlers.BindJSON(c, &req) {
		return
	}

	common.LogInfo("開始處理訂單提交",
		zap.String("request_id", requestid.Get(c)),
		zap.Int("fruits", len(req.Selection)),
	)

	conf, err := h.service.SubmitOrder(c.Request.Context(), req.Name, selection.Selection(req.Selection))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conf)
}
