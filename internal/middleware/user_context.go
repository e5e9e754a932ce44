package middleware

import (
	"errors"

	"column-tracker/internal/common"
	"column-tracker/internal/session"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionUserKey: ключ id пользователя в cookie-сессии.
const SessionUserKey = "user_id"

// CurrentUserKey: под этим ключом identity лежит в gin.Context для шаблонов.
const CurrentUserKey = "CurrentUser"

// InjectUser перечитывает пользователя из БД на каждый запрос и кладёт
// его identity в context.Context запроса.
func InjectUser(gate *session.Gate, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)

		if uid, ok := sess.Get(SessionUserKey).(uint); ok && uid > 0 {
			id, err := gate.Lookup(c.Request.Context(), uid)
			switch {
			case err == nil:
				c.Request = c.Request.WithContext(session.WithIdentity(c.Request.Context(), id))
				c.Set(CurrentUserKey, id)
			case errors.Is(err, common.ErrNotFound):
				// пользователя удалили — сессия больше не действительна
				sess.Clear()
				_ = sess.Save()
			default:
				log.Error("load session user", zap.Uint("user_id", uid), zap.Error(err))
			}
		}

		c.Next()
	}
}
