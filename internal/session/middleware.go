package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const contextKey = "dashlab_session"

// Middleware assigns each browser a session ID cookie on first contact and
// attaches a Session handle to the request context.
func Middleware(store Store, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookieName)
		if err != nil || id == "" {
			id = uuid.NewString()
			http.SetCookie(c.Writer, &http.Cookie{
				Name:     cookieName,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		c.Set(contextKey, For(store, id))
		c.Next()
	}
}

// FromContext returns the request's Session handle. Handlers registered
// behind Middleware can rely on it being present.
func FromContext(c *gin.Context) *Session {
	if v, ok := c.Get(contextKey); ok {
		if s, ok := v.(*Session); ok {
			return s
		}
	}
	// Unreachable behind the middleware; a detached handle keeps direct
	// handler tests working.
	return For(NewMemoryStore(0), "test")
}
