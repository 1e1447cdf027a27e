package middleware

import (
	"crypto/subtle"

	"github.com/gofiber/fiber/v2"
)

// ClientAPIKey 客户端接口的共享 API 密钥校验。
// 密钥从请求头 X-Api-Key 或表单字段 api_key 读取，常量时间比较。
func ClientAPIKey(apiKey string) fiber.Handler {
	expected := []byte(apiKey)
	return func(c *fiber.Ctx) error {
		provided := c.Get("X-Api-Key")
		if provided == "" {
			provided = c.FormValue("api_key")
		}

		if len(expected) == 0 ||
			subtle.ConstantTimeCompare(expected, []byte(provided)) != 1 {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"data": fiber.Map{
					"message": "API 密钥无效或缺失",
					"code":    "forbidden",
				},
			})
		}
		return c.Next()
	}
}
