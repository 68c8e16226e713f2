package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/knawat/mp-backend/internal/domain/oms"
	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/interfaces/http/dto"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func handleErrorStatus(t *testing.T, err error) (int, dto.Response) {
	t.Helper()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	h := &BaseHandler{}
	h.HandleError(c, err)

	var resp dto.Response
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "no usable items maps to 404",
			err:        shared.NewDomainError("NO_USABLE_ITEMS", "None of the requested items can be fulfilled"),
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_USABLE_ITEMS",
		},
		{
			name:       "missing shipment rate maps to 400",
			err:        shared.NewDomainError("NO_SHIPMENT_RATE", "No shipment method covers the destination"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "NO_SHIPMENT_RATE",
		},
		{
			name:       "immutable order maps to 405",
			err:        shared.NewDomainError("ORDER_NOT_MUTABLE", "Order can no longer be modified"),
			wantStatus: http.StatusMethodNotAllowed,
			wantCode:   "ORDER_NOT_MUTABLE",
		},
		{
			name:       "invalid input maps to 422",
			err:        shared.NewDomainError("INVALID_INPUT", "Billing address is incomplete"),
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "INVALID_INPUT",
		},
		{
			name:       "unknown domain code falls back to 500",
			err:        shared.NewDomainError("SOMETHING_NEW", "boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "SOMETHING_NEW",
		},
		{
			name:       "plain error maps to 500",
			err:        errors.New("connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   dto.ErrCodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := handleErrorStatus(t, tt.err)
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, "fail", resp.Status)
			if assert.Len(t, resp.Errors, 1) {
				assert.Equal(t, tt.wantCode, resp.Errors[0].Code)
			}
		})
	}
}

func TestHandleErrorOMSStatusPassthrough(t *testing.T) {
	err := &oms.StatusError{StatusCode: http.StatusConflict, Message: "salesorder number already exists"}

	status, resp := handleErrorStatus(t, err)

	assert.Equal(t, http.StatusConflict, status)
	if assert.Len(t, resp.Errors, 1) {
		assert.Equal(t, "OMS_REJECTED", resp.Errors[0].Code)
		assert.Equal(t, "salesorder number already exists", resp.Errors[0].Message)
	}
}
