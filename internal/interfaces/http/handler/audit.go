package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appaudit "github.com/knawat/mp-backend/internal/application/audit"
	"github.com/knawat/mp-backend/internal/domain/audit"
	"github.com/knawat/mp-backend/internal/domain/shared"
	"github.com/knawat/mp-backend/internal/interfaces/http/dto"
	"github.com/knawat/mp-backend/internal/interfaces/http/middleware"
)

// AuditQueryRequest carries the audit listing query parameters.
type AuditQueryRequest struct {
	Topic    string `form:"topic"`
	TopicID  string `form:"topicId"`
	Level    string `form:"level" binding:"omitempty,oneof=debug info warn error"`
	Page     int    `form:"page" binding:"omitempty,gte=1"`
	PageSize int    `form:"pageSize" binding:"omitempty,gte=1,lte=200"`
	OrderBy  string `form:"orderBy"`
	OrderDir string `form:"orderDir" binding:"omitempty,oneof=asc desc"`
}

// AuditHandler serves the store's audit trail for support triage.
type AuditHandler struct {
	BaseHandler
	service *appaudit.Service
}

// NewAuditHandler creates an audit handler.
func NewAuditHandler(service *appaudit.Service) *AuditHandler {
	return &AuditHandler{service: service}
}

// RegisterRoutes registers the audit routes.
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/logs", h.Find)
}

// Find lists audit entries. Results are always scoped to the calling store.
func (h *AuditHandler) Find(c *gin.Context) {
	st := middleware.GetStore(c)
	if st == nil {
		h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Store not authenticated")
		return
	}

	var req AuditQueryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	q := audit.Query{
		Topic:   req.Topic,
		TopicID: req.TopicID,
		StoreID: st.URL,
		Level:   audit.Level(req.Level),
		Filter: shared.Filter{
			Page:     req.Page,
			PageSize: req.PageSize,
			OrderBy:  req.OrderBy,
			OrderDir: req.OrderDir,
		},
	}

	entries, total, err := h.service.Find(c.Request.Context(), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	q.Normalize()
	h.SuccessWithMeta(c, entries, total, q.Page, q.PageSize)
}
