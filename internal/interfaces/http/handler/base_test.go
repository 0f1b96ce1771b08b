package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/marketplace/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  string
		wantMsg  string
	}{
		{"not found", shared.NewDomainError("NOT_FOUND", "Order not found"), http.StatusNotFound, "ERR_NOT_FOUND", "Order not found"},
		{"invalid state", shared.NewDomainError("INVALID_STATE", "Order is not Processing"), http.StatusUnprocessableEntity, "ERR_INVALID_STATE", "Order is not Processing"},
		{"field code", shared.NewDomainError("INVALID_PRICE", "price must be positive"), http.StatusBadRequest, "ERR_INVALID_PRICE", "price must be positive"},
		{"already exists", shared.NewDomainError("ALREADY_EXISTS", "Username is already taken"), http.StatusConflict, "ERR_ALREADY_EXISTS", "Username is already taken"},
		{"wrapped", fmt.Errorf("claim: %w", shared.NewDomainError("FORBIDDEN", "not yours")), http.StatusForbidden, "ERR_FORBIDDEN", "not yours"},
		{"plain error", errors.New("pq: connection refused"), http.StatusInternalServerError, "ERR_INTERNAL", "An unexpected error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := newTestEngine(nil)
			h := &BaseHandler{}
			engine.GET("/x", func(c *gin.Context) { h.HandleError(c, tt.err) })

			w := perform(engine, http.MethodGet, "/x", "")
			body := w.Body.String()

			assert.Equal(t, tt.wantCode, w.Code)
			assert.False(t, gjson.Get(body, "success").Bool())
			assert.Equal(t, tt.wantErr, gjson.Get(body, "error.code").String())
			assert.Equal(t, tt.wantMsg, gjson.Get(body, "error.message").String())
			assert.NotEmpty(t, gjson.Get(body, "error.request_id").String())
		})
	}
}

func TestHandleError_Nil(t *testing.T) {
	engine := newTestEngine(nil)
	h := &BaseHandler{}
	engine.GET("/x", func(c *gin.Context) {
		h.HandleError(c, nil)
		h.NoContent(c)
	})

	assert.Equal(t, http.StatusNoContent, perform(engine, http.MethodGet, "/x", "").Code)
}

func TestOrEmpty(t *testing.T) {
	assert.Equal(t, []int{}, orEmpty[int](nil))
	assert.Equal(t, []int{1}, orEmpty([]int{1}))
}
