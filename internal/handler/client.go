package handler

import (
	"strconv"
	"strings"

	"license-activation-server/internal/database"
	"license-activation-server/internal/engine"
	"license-activation-server/internal/model"
	"license-activation-server/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ActivateRequest 客户端激活/解绑/校验请求体，支持 JSON 和表单编码
type ActivateRequest struct {
	LicenseKey    string `json:"license_key" form:"license_key" validate:"required"`
	ProductID     string `json:"product_id" form:"product_id" validate:"required"`
	Domain        string `json:"domain" form:"domain"`
	CustomerEmail string `json:"customer_email" form:"customer_email"`
}

// checkLicenseBinding 校验许可证与产品/邮箱的绑定关系，
// 返回 nil 表示通过。密钥不存在交给激活引擎统一报 not_found。
// 邮箱校验只在激活时启用，校验/解绑不要求客户端重复提交邮箱。
func checkLicenseBinding(req *ActivateRequest, checkEmail bool) error {
	var lic model.License
	result := database.DB.Where("key = ?", req.LicenseKey).First(&lic)
	if result.Error != nil {
		return nil
	}

	if lic.ProductID != req.ProductID {
		return &engine.Error{Code: engine.CodeInvalidInput, Message: "许可证与指定产品不匹配"}
	}

	if checkEmail && lic.RequireEmailValidation && lic.CustomerEmail != "" {
		if req.CustomerEmail == "" {
			return &engine.Error{Code: engine.CodeInvalidInput, Message: "此许可证要求提供客户邮箱"}
		}
		if !strings.EqualFold(req.CustomerEmail, lic.CustomerEmail) {
			return &engine.Error{Code: engine.CodeInvalidInput, Message: "客户邮箱不匹配"}
		}
	}
	return nil
}

// HandleClientActivate 客户端激活：将调用方域名绑定到许可证
func HandleClientActivate(c *fiber.Ctx) error {
	req := new(ActivateRequest)
	if err := c.BodyParser(req); err != nil {
		return invalidInputFailure(c, "无效的请求数据")
	}
	if err := validate.Struct(req); err != nil {
		return invalidInputFailure(c, "缺少必填参数: license_key / product_id")
	}
	if req.Domain == "" {
		return invalidInputFailure(c, "域名不能为空")
	}

	if err := checkLicenseBinding(req, true); err != nil {
		service.LogClientRequest(req.LicenseKey, "activate_rejected", req.Domain, c.IP(), c.Get("User-Agent"))
		return apiFailure(c, err)
	}

	res, err := eng.Activate(req.LicenseKey, req.Domain, engine.CallerClient)
	service.LogClientRequest(req.LicenseKey, "activate_request", req.Domain, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return apiFailure(c, err)
	}
	return apiSuccess(c, resultData(res))
}

// HandleClientDeactivate 客户端解绑：管理员接管的许可证会被引擎拒绝
func HandleClientDeactivate(c *fiber.Ctx) error {
	req := new(ActivateRequest)
	if err := c.BodyParser(req); err != nil {
		return invalidInputFailure(c, "无效的请求数据")
	}
	if err := validate.Struct(req); err != nil {
		return invalidInputFailure(c, "缺少必填参数: license_key / product_id")
	}
	if req.Domain == "" {
		return invalidInputFailure(c, "域名不能为空")
	}

	if err := checkLicenseBinding(req, false); err != nil {
		return apiFailure(c, err)
	}

	res, err := eng.Deactivate(req.LicenseKey, req.Domain, engine.CallerClient)
	service.LogClientRequest(req.LicenseKey, "deactivate_request", req.Domain, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return apiFailure(c, err)
	}
	return apiSuccess(c, resultData(res))
}

// HandleClientValidate 客户端校验：返回当前状态，过期时顺带修正入库
func HandleClientValidate(c *fiber.Ctx) error {
	req := new(ActivateRequest)
	if err := c.BodyParser(req); err != nil {
		return invalidInputFailure(c, "无效的请求数据")
	}
	if err := validate.Struct(req); err != nil {
		return invalidInputFailure(c, "缺少必填参数: license_key / product_id")
	}

	if err := checkLicenseBinding(req, false); err != nil {
		return apiFailure(c, err)
	}

	res, err := eng.Validate(req.LicenseKey, req.Domain)
	service.LogClientRequest(req.LicenseKey, "validate_request", req.Domain, c.IP(), c.Get("User-Agent"))
	if err != nil {
		return apiFailure(c, err)
	}
	return apiSuccess(c, resultData(res))
}

// HandleClientInfo 返回许可证对应产品的版本和下载地址
func HandleClientInfo(c *fiber.Ctx) error {
	req := new(ActivateRequest)
	if err := c.BodyParser(req); err != nil {
		return invalidInputFailure(c, "无效的请求数据")
	}
	if err := validate.Struct(req); err != nil {
		return invalidInputFailure(c, "缺少必填参数: license_key / product_id")
	}

	var lic model.License
	if err := database.DB.Where("key = ?", req.LicenseKey).First(&lic).Error; err != nil {
		return apiFailure(c, engine.ErrNotFound)
	}
	if lic.ProductID != req.ProductID {
		return invalidInputFailure(c, "许可证与指定产品不匹配")
	}

	var product model.Product
	if err := database.DB.Where("slug = ?", req.ProductID).First(&product).Error; err != nil {
		return apiFailure(c, engine.ErrNotFound)
	}

	return apiSuccess(c, fiber.Map{
		"version": product.CurrentVersion,
		"package": product.DownloadURL,
	})
}

// UpdateCheckRequest 产品更新检查请求
type UpdateCheckRequest struct {
	ProductSlug string `json:"product_slug" form:"product_slug" validate:"required"`
	Version     string `json:"version" form:"version"`
}

// HandleClientUpdateCheck 比较客户端版本与产品当前版本
func HandleClientUpdateCheck(c *fiber.Ctx) error {
	req := new(UpdateCheckRequest)
	if err := c.BodyParser(req); err != nil {
		return invalidInputFailure(c, "无效的请求数据")
	}
	if err := validate.Struct(req); err != nil {
		return invalidInputFailure(c, "产品标识不能为空")
	}

	var product model.Product
	if err := database.DB.Where("slug = ?", req.ProductSlug).First(&product).Error; err != nil {
		return apiFailure(c, engine.ErrNotFound)
	}

	if req.Version != "" && compareVersions(product.CurrentVersion, req.Version) <= 0 {
		return apiSuccess(c, fiber.Map{
			"update_available": false,
			"latest_version":   product.CurrentVersion,
		})
	}

	return apiSuccess(c, fiber.Map{
		"update_available": true,
		"latest_version":   product.CurrentVersion,
		"package":          product.DownloadURL,
	})
}

// compareVersions 按点分段逐段数字比较，a>b 返回 1，a<b 返回 -1
func compareVersions(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var na, nb int
		if i < len(pa) {
			na, _ = strconv.Atoi(pa[i])
		}
		if i < len(pb) {
			nb, _ = strconv.Atoi(pb[i])
		}
		if na != nb {
			if na > nb {
				return 1
			}
			return -1
		}
	}
	return 0
}
