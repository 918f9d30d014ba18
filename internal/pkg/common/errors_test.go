package common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomErrorWrapKeepsCode(t *testing.T) {
	cause := errors.New("disk I/O error")
	err := fmt.Errorf("submit: %w", ErrOrderWriteFailed.Wrap(cause))

	assert.ErrorIs(t, err, ErrOrderWriteFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrCatalogUnavailable)

	ce := AsCustomError(err)
	assert.Equal(t, ErrCodeOrderWriteFailed, ce.Code)
	assert.Equal(t, http.StatusInternalServerError, ce.Status)
	assert.Contains(t, ce.Error(), "disk I/O error")
}

func TestAsCustomErrorFallsBackToInternal(t *testing.T) {
	ce := AsCustomError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternalError, ce.Code)
	assert.Equal(t, http.StatusInternalServerError, ce.Status)
}

func TestWithMessage(t *testing.T) {
	ce := ErrSelectionInvalid.WithMessage("You can only select up to 5 fruits!")
	assert.Equal(t, ErrCodeSelectionInvalid, ce.Code)
	assert.Equal(t, "You can only select up to 5 fruits!", ce.Error())
	// 預定義錯誤不可被修改
	assert.Equal(t, "selection is invalid", ErrSelectionInvalid.Message)
}
