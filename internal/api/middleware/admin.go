package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/dieselnoi/course_go_server/internal/model"
	"github.com/dieselnoi/course_go_server/internal/pkg/response"
)

// UserLoader 按 ID 加载用户，供权限检查使用
type UserLoader interface {
	GetByID(id int64) (*model.User, error)
}

// AdminOnly 运营后台权限中间件，必须挂在 Auth 之后
func AdminOnly(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := GetUserID(c)
		if !ok {
			response.AuthError(c, "")
			c.Abort()
			return
		}

		user, err := users.GetByID(userID)
		if err != nil {
			response.ServerError(c, "权限检查失败")
			c.Abort()
			return
		}

		if !user.IsStaff {
			response.PermissionError(c, "需要管理员权限")
			c.Abort()
			return
		}

		c.Next()
	}
}
