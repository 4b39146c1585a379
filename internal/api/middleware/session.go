package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qs3c/trending/internal/pkg/logger"
)

const (
	SessionKeyCtx   = "sessionKey"
	sessionKeyField = "session_key"
)

// SessionKey 确定本次请求的会话标识。
// 优先使用 headerName 请求头（服务端调用方自带会话），否则使用 cookie 会话，
// cookie 中没有时生成一个新的 uuid 并写回。
// 需要在 sessions.Sessions 之后注册。
func SessionKey(headerName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if headerName != "" {
			if key := strings.TrimSpace(c.GetHeader(headerName)); key != "" {
				c.Set(SessionKeyCtx, key)
				c.Next()
				return
			}
		}

		session := sessions.Default(c)
		key, _ := session.Get(sessionKeyField).(string)
		if key == "" {
			key = uuid.NewString()
			session.Set(sessionKeyField, key)
			if err := session.Save(); err != nil {
				logger.L().Warn("failed to save session", zap.Error(err))
			}
		}

		c.Set(SessionKeyCtx, key)
		c.Next()
	}
}

// GetSessionKey 从上下文获取会话标识
func GetSessionKey(c *gin.Context) string {
	return c.GetString(SessionKeyCtx)
}
