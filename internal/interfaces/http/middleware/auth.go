package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/knawat/mp-backend/internal/domain/store"
	"github.com/knawat/mp-backend/internal/interfaces/http/dto"
)

// storeContextKey is the gin context key holding the authenticated store.
const storeContextKey = "auth_store"

// StoreAuth authenticates storefront requests with HTTP Basic credentials:
// the consumer key is the username, the consumer secret the password. The
// resolved store is placed on the context for handlers.
func StoreAuth(stores store.Repository, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, secret, ok := c.Request.BasicAuth()
		if !ok {
			unauthorized(c)
			return
		}

		st, err := stores.FindByConsumerKey(c.Request.Context(), key)
		if err != nil {
			// Not-found and lookup failures look identical to the caller.
			logger.Debug("store credential lookup failed",
				zap.String("consumerKey", key),
				zap.Error(err))
			unauthorized(c)
			return
		}

		if subtle.ConstantTimeCompare([]byte(st.ConsumerSecret), []byte(secret)) != 1 || !st.Active {
			unauthorized(c)
			return
		}

		c.Set(storeContextKey, st)
		c.Next()
	}
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", `Basic realm="marketplace"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized,
		dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Invalid store credentials"))
}

// GetStore returns the authenticated store from the context.
func GetStore(c *gin.Context) *store.Store {
	if v, ok := c.Get(storeContextKey); ok {
		if st, ok := v.(*store.Store); ok {
			return st
		}
	}
	return nil
}
