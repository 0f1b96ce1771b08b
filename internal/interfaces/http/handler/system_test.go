package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestSystemHandler_Health(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		engine := newTestEngine(nil)
		h := NewSystemHandler("marketplace-backend", pingerFunc(func(context.Context) error { return nil }))
		engine.GET("/health", h.Health)

		w := perform(engine, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "healthy", gjson.Get(w.Body.String(), "data.status").String())
		assert.Equal(t, "marketplace-backend", gjson.Get(w.Body.String(), "data.name").String())
	})

	t.Run("database down", func(t *testing.T) {
		engine := newTestEngine(nil)
		h := NewSystemHandler("marketplace-backend", pingerFunc(func(context.Context) error { return errors.New("dial tcp: refused") }))
		engine.GET("/health", h.Health)

		w := perform(engine, http.MethodGet, "/health", "")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.False(t, gjson.Get(w.Body.String(), "success").Bool())
		assert.Equal(t, "disconnected", gjson.Get(w.Body.String(), "data.database").String())
	})
}
