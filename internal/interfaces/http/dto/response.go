package dto

import (
	"github.com/knawat/mp-backend/internal/domain/order"
)

// Response is the storefront-facing envelope. Warnings ride alongside a
// successful payload; errors replace it.
type Response struct {
	Status   string          `json:"status"`
	Data     any             `json:"data,omitempty"`
	Warnings []order.Warning `json:"warnings,omitempty"`
	Errors   []ErrorInfo     `json:"errors,omitempty"`
	Meta     *Meta           `json:"meta,omitempty"`
}

const (
	statusSuccess = "success"
	statusFail    = "fail"
)

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Meta represents pagination metadata
type Meta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data any) Response {
	return Response{
		Status: statusSuccess,
		Data:   data,
	}
}

// NewSuccessResponseWithWarnings creates a success response carrying the
// order's non-fatal anomalies.
func NewSuccessResponseWithWarnings(data any, warnings []order.Warning) Response {
	return Response{
		Status:   statusSuccess,
		Data:     data,
		Warnings: warnings,
	}
}

// NewSuccessResponseWithMeta creates a success response with pagination meta
func NewSuccessResponseWithMeta(data any, total int64, page, pageSize int) Response {
	return Response{
		Status: statusSuccess,
		Data:   data,
		Meta: &Meta{
			Total:    total,
			Page:     page,
			PageSize: pageSize,
		},
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(code, message string) Response {
	return Response{
		Status: statusFail,
		Errors: []ErrorInfo{{Code: code, Message: message}},
	}
}
