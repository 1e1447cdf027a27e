package handler

import (
	"log"

	"license-activation-server/internal/engine"
	"license-activation-server/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var (
	eng       *engine.Engine
	sheetSync *service.SheetSyncService
	validate  = validator.New()
)

// Init 注入激活引擎和可选的 Sheet 导出服务
func Init(e *engine.Engine, sync *service.SheetSyncService) {
	eng = e
	sheetSync = sync
}

// apiSuccess 客户端接口的统一成功外壳 {success:true, data:{...}}
func apiSuccess(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

// apiFailure 统一失败外壳，携带稳定的错误码供远程客户端分支
func apiFailure(c *fiber.Ctx, err error) error {
	if e, ok := engine.AsError(err); ok {
		return c.Status(httpStatus(e.Code)).JSON(fiber.Map{
			"success": false,
			"data": fiber.Map{
				"message": e.Message,
				"code":    e.Code,
			},
		})
	}

	log.Printf("请求处理失败: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"data": fiber.Map{
			"message": "服务器内部错误",
			"code":    "internal",
		},
	})
}

func invalidInputFailure(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"data": fiber.Map{
			"message": message,
			"code":    engine.CodeInvalidInput,
		},
	})
}

func httpStatus(code engine.Code) int {
	switch code {
	case engine.CodeNotFound:
		return fiber.StatusNotFound
	case engine.CodeInvalidInput:
		return fiber.StatusBadRequest
	case engine.CodeExpired, engine.CodeLimitReached,
		engine.CodeDomainNotActive, engine.CodeForbidden:
		return fiber.StatusForbidden
	case engine.CodeStoreConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// resultData 激活引擎结果转为线上响应字段，终身授权的到期日输出 "lifetime"
func resultData(res *engine.Result) fiber.Map {
	expiry := "lifetime"
	if res.ExpiryDate != nil {
		expiry = res.ExpiryDate.Format("2006-01-02")
	}
	return fiber.Map{
		"status":                  res.Status,
		"expiry_date":             expiry,
		"activation_limit":        res.ActivationLimit,
		"activated_domains_count": res.ActivationsCount,
	}
}
