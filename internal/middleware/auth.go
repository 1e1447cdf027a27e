package middleware

import (
	"strings"

	"license-activation-server/internal/database"
	"license-activation-server/internal/model"
	"license-activation-server/internal/util"

	"github.com/gofiber/fiber/v2"
)

// Auth 校验 Bearer JWT 并把用户ID写入请求上下文
func Auth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := strings.CutPrefix(c.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "未提供有效的认证令牌",
			})
		}

		userID, err := util.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "无效的认证令牌",
			})
		}

		c.Locals("userID", userID)
		return c.Next()
	}
}

// AdminOnly 在 Auth 之后使用，要求当前用户具有管理员角色
func AdminOnly() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "未认证的请求",
			})
		}

		var user model.User
		if err := database.DB.First(&user, userID).Error; err != nil || !user.IsAdmin() {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "需要管理员权限",
			})
		}
		return c.Next()
	}
}
