package selection

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"smoothie-order/internal/core/catalog"
)

// MaxSelections 一杯最多可選的水果數
const MaxSelections = 5

// Selection 使用者依序選取的水果顯示名稱
type Selection []string

// Status 選取驗證結果
type Status string

const (
	StatusEmpty        Status = "empty"
	StatusValid        Status = "valid"
	StatusTooMany      Status = "too_many"
	StatusUnknownFruit Status = "unknown_fruit"
	StatusDuplicate    Status = "duplicate"
)

// Level 狀態訊息等級
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Validation 驗證結果與給使用者的訊息
type Validation struct {
	Status    Status    `json:"status"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	Selection Selection `json:"selection,omitempty"`
	Unknown   []string  `json:"unknown,omitempty"`
}

// Valid 是否可繼續查詢營養資訊或提交
func (v Validation) Valid() bool {
	return v.Status == StatusValid
}

// Validate 檢查選取數量與是否都在目錄中，純函數
func Validate(sel Selection, c catalog.Catalog) Validation {
	if len(sel) > MaxSelections {
		return Validation{
			Status:  StatusTooMany,
			Level:   LevelError,
			Message: fmt.Sprintf("You can only select up to %d fruits!", MaxSelections),
		}
	}
	if len(sel) == 0 {
		return Validation{
			Status:  StatusEmpty,
			Level:   LevelInfo,
			Message: "No fruits selected yet. Pick from the list!",
		}
	}

	// 逐一經過 Picker，與多選元件套用相同規則
	p := NewPicker(c)
	var unknown, repeated []string
	for _, name := range sel {
		switch err := p.Add(name); {
		case errors.Is(err, ErrNotInCatalog):
			unknown = append(unknown, name)
		case errors.Is(err, ErrAlreadySelected):
			if !slices.Contains(repeated, name) {
				repeated = append(repeated, name)
			}
		}
	}
	if len(unknown) > 0 {
		return Validation{
			Status:  StatusUnknownFruit,
			Level:   LevelError,
			Message: "Not on the menu: " + strings.Join(unknown, ", "),
			Unknown: unknown,
		}
	}
	if len(repeated) > 0 {
		return Validation{
			Status:  StatusDuplicate,
			Level:   LevelError,
			Message: "Already selected: " + strings.Join(repeated, ", "),
		}
	}

	return Validation{
		Status:    StatusValid,
		Level:     LevelSuccess,
		Message:   "You selected: " + strings.Join(sel, ", "),
		Selection: p.Selection(),
	}
}

var (
	ErrSelectionFull   = fmt.Errorf("selection already has %d fruits", MaxSelections)
	ErrNotInCatalog    = errors.New("fruit is not in the catalog")
	ErrAlreadySelected = errors.New("fruit is already selected")
)

// Picker 模擬多選元件：只接受目錄內的水果，最多 MaxSelections 個
type Picker struct {
	catalog catalog.Catalog
	items   Selection
}

// NewPicker 創建選取器
func NewPicker(c catalog.Catalog) *Picker {
	return &Picker{catalog: c}
}

// Add 加入一個水果；同一水果不能選兩次
func (p *Picker) Add(name string) error {
	if !p.catalog.Contains(name) {
		return fmt.Errorf("%w: %q", ErrNotInCatalog, name)
	}
	for _, it := range p.items {
		if it == name {
			return fmt.Errorf("%w: %q", ErrAlreadySelected, name)
		}
	}
	if len(p.items) >= MaxSelections {
		return ErrSelectionFull
	}
	p.items = append(p.items, name)
	return nil
}

// Remove 移除一個水果
func (p *Picker) Remove(name string) {
	for i, it := range p.items {
		if it == name {
			p.items = append(p.items[:i], p.items[i+1:]...)
			return
		}
	}
}

// Selection 返回目前選取的副本
func (p *Picker) Selection() Selection {
	return append(Selection(nil), p.items...)
}

// FormState 表單可否查詢、可否提交
type FormState struct {
	Validation
	CanLookup bool `json:"can_lookup"`
	CanSubmit bool `json:"can_submit"`
}

// EvaluateForm 依名稱與選取決定表單狀態；提交需要名稱與有效選取
func EvaluateForm(name string, sel Selection, c catalog.Catalog) FormState {
	v := Validate(sel, c)
	return FormState{
		Validation: v,
		CanLookup:  v.Valid(),
		CanSubmit:  v.Valid() && strings.TrimSpace(name) != "",
	}
}
