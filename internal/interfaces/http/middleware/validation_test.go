package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type validationRequest struct {
	Email  string `json:"email" binding:"required,email"`
	Status string `json:"status" binding:"omitempty,order_status"`
	Role   string `json:"role" binding:"omitempty,role"`
	Items  []int  `json:"items" binding:"min=1"`
}

func newValidationRouter() *gin.Engine {
	if err := SetupValidator(); err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestID())
	router.POST("/validate", func(c *gin.Context) {
		var req validationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return router
}

func postValidated(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestValidation_CustomTags(t *testing.T) {
	router := newValidationRouter()

	tests := []struct {
		name      string
		body      string
		wantCode  int
		wantField string
	}{
		{"valid", `{"email":"a@b.co","status":"processing","role":"Seller","items":[1]}`, http.StatusNoContent, ""},
		{"unknown status", `{"email":"a@b.co","status":"Shipped","items":[1]}`, http.StatusBadRequest, "status"},
		{"unknown role", `{"email":"a@b.co","role":"root","items":[1]}`, http.StatusBadRequest, "role"},
		{"missing email", `{"status":"Pending","items":[1]}`, http.StatusBadRequest, "email"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postValidated(router, tt.body)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantField == "" {
				return
			}
			body := w.Body.String()
			assert.Equal(t, "ERR_VALIDATION", gjson.Get(body, "error.code").String())
			assert.Equal(t, tt.wantField, gjson.Get(body, "error.details.0.field").String())
			assert.NotEmpty(t, gjson.Get(body, "error.request_id").String())
		})
	}
}

func TestValidation_MalformedJSON(t *testing.T) {
	w := postValidated(newValidationRouter(), `{"email":`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ERR_INVALID_JSON", gjson.Get(w.Body.String(), "error.code").String())
}

func TestValidation_Messages(t *testing.T) {
	w := postValidated(newValidationRouter(), `{"email":"nope","items":[]}`)

	body := w.Body.String()
	assert.Equal(t, "Invalid email format", gjson.Get(body, `error.details.#(field=="email").message`).String())
	assert.Equal(t, "Must contain at least 1 entries", gjson.Get(body, `error.details.#(field=="items").message`).String())
}

func TestSetupValidator(t *testing.T) {
	require.NoError(t, SetupValidator())
	require.NoError(t, SetupValidator())
}

func TestRegisterValidations(t *testing.T) {
	accept := func(validator.FieldLevel) bool { return true }

	t.Run("registers every tag", func(t *testing.T) {
		v := validator.New()
		require.NoError(t, registerValidations(v, customValidations))

		type payload struct {
			Status string `validate:"order_status"`
			Role   string `validate:"role"`
		}
		assert.NoError(t, v.Struct(payload{Status: "delivering", Role: "Seller"}))
		assert.Error(t, v.Struct(payload{Status: "shipped", Role: "seller"}))
	})

	t.Run("reports failed registrations", func(t *testing.T) {
		err := registerValidations(validator.New(), map[string]validator.Func{
			"":          accept,
			"omitempty": accept,
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `register ""`)
		assert.Contains(t, err.Error(), `register "omitempty"`)
	})
}
