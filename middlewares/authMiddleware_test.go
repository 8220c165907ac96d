package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"bitbucket.org/prajapati/wealth_backend/models"
	"bitbucket.org/prajapati/wealth_backend/utils"
	"github.com/gin-gonic/gin"
)

func TestAccessGuards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name       string
		guard      gin.HandlerFunc
		role       models.Role
		permission models.Permission
		want       int
	}{
		{"admin passes admin guard", RequireAdmin(), models.RoleAdmin, "", http.StatusOK},
		{"employee with all is not admin", RequireAdmin(), models.RoleEmployee, models.PermissionAll, http.StatusForbidden},
		{"anonymous admin guard", RequireAdmin(), models.RoleNone, "", http.StatusUnauthorized},
		{"write employee may mutate", RequireMutation(), models.RoleEmployee, models.PermissionWrite, http.StatusOK},
		{"read employee may not mutate", RequireMutation(), models.RoleEmployee, models.PermissionRead, http.StatusForbidden},
		{"write employee may not delete", RequireDelete(), models.RoleEmployee, models.PermissionWrite, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				ctx := c.Request.Context()
				if tc.role != models.RoleNone {
					ctx = utils.SetRoleInContext(ctx, string(tc.role))
					ctx = utils.SetPermissionInContext(ctx, string(tc.permission))
				}
				c.Request = c.Request.WithContext(ctx)
				c.Next()
			})
			r.GET("/", tc.guard, func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}
