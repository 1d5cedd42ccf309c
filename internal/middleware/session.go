package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie   = "sf_session"
	CtxKeySessionID = "session_id"

	sessionMaxAge = 30 * 24 * 60 * 60
)

// Session makes sure every visitor carries a session id cookie.
func Session(secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sid) != nil {
			sid = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, sid, sessionMaxAge, "/", "", secure, true)
		}

		c.Set(CtxKeySessionID, sid)
		c.Next()
	}
}

func GetSessionID(c *gin.Context) string {
	return c.GetString(CtxKeySessionID)
}
