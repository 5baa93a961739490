package middleware

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/threedv/saiban/internal/modules/model"
	"github.com/threedv/saiban/internal/modules/serializer"
	"github.com/threedv/saiban/internal/modules/service"
)

// Session keys. Only these three values live in the cookie; everything else
// is looked up fresh.
const (
	SessionKeyEmployeeID   = "employee_id"
	SessionKeyEmployeeName = "employee_name"
	SessionKeyRole         = "role"
)

// RequireAuth rejects requests without a logged-in session.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := sessions.Default(c)
		if sess.Get(SessionKeyEmployeeID) == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, serializer.AuthErr("ログインが必要です"))
			return
		}
		c.Next()
	}
}

// RequireRole gates a route on the session role. The permitted roles are an
// explicit parameter of the route definition, not ambient state the handler
// peeks at.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		sess := sessions.Default(c)
		role, _ := sess.Get(SessionKeyRole).(string)
		if _, ok := roleSet[role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, serializer.ForbiddenErr("管理者権限が必要です"))
			return
		}
		c.Next()
	}
}

// RequireAdmin is RequireRole(admin).
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin)
}

// CurrentEditor extracts who is acting from the session. Valid whenever
// RequireAuth has passed.
func CurrentEditor(c *gin.Context) service.Editor {
	sess := sessions.Default(c)
	id, _ := sess.Get(SessionKeyEmployeeID).(string)
	name, _ := sess.Get(SessionKeyEmployeeName).(string)
	if name == "" {
		name = "Unknown"
	}
	return service.Editor{ID: id, Name: name}
}
