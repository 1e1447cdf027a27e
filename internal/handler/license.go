package handler

import (
	"strconv"

	"license-activation-server/internal/database"
	"license-activation-server/internal/engine"
	"license-activation-server/internal/model"
	"license-activation-server/internal/util"

	"github.com/gofiber/fiber/v2"
)

// 许可证列表查询参数
type LicenseSearchQuery struct {
	Page     int    `query:"page"`
	PageSize int    `query:"page_size"`
	Keyword  string `query:"keyword"`
	Status   string `query:"status"`
	Product  string `query:"product"`
}

// HandleGetAllLicenses 管理员分页查询许可证
func HandleGetAllLicenses(c *fiber.Ctx) error {
	query := new(LicenseSearchQuery)
	if err := c.QueryParser(query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的查询参数",
		})
	}

	// 设置默认值
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PageSize < 1 {
		query.PageSize = 20
	}
	if query.PageSize > 100 {
		query.PageSize = 100
	}

	db := database.DB.Model(&model.License{})

	// 关键词搜索
	if query.Keyword != "" {
		db = db.Where("key LIKE ? OR customer_email LIKE ?",
			"%"+query.Keyword+"%", "%"+query.Keyword+"%")
	}
	if query.Status != "" {
		db = db.Where("status = ?", query.Status)
	}
	if query.Product != "" {
		db = db.Where("product_id = ?", query.Product)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取许可证总数失败",
		})
	}

	var licenses []model.License
	offset := (query.Page - 1) * query.PageSize
	if err := db.Order("created_at DESC").Offset(offset).Limit(query.PageSize).Find(&licenses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "获取许可证数据失败",
		})
	}

	return c.JSON(fiber.Map{
		"licenses": licenses,
		"total":    total,
		"page":     query.Page,
		"size":     query.PageSize,
	})
}

// HandleLicenseCreate 创建许可证，服务端生成密钥
func HandleLicenseCreate(c *fiber.Ctx) error {
	input := new(model.LicenseInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}
	if err := validate.Struct(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "输入校验失败: " + err.Error(),
		})
	}

	overrides, err := normalizeAll(input.AdminOverrideDomains)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	status := input.Status
	if status == "" {
		status = model.StatusInactive
	}
	limit := input.ActivationLimit
	if limit == 0 {
		limit = 1
	}

	lic := &model.License{
		Key:                     util.GenerateLicenseKey(),
		ProductID:               input.ProductID,
		CustomerEmail:           input.CustomerEmail,
		Status:                  status,
		ExpiryDate:              input.ExpiryDate,
		ActivationLimit:         limit,
		ActivatedDomains:        model.DomainList{},
		RequireDomainValidation: input.RequireDomainValidation,
		RequireEmailValidation:  input.RequireEmailValidation,
		AdminOverrideDomains:    overrides,
	}

	if err := database.DB.Create(lic).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "创建许可证失败",
		})
	}

	if sheetSync != nil {
		go sheetSync.SyncLicense(lic)
	}

	return c.Status(fiber.StatusCreated).JSON(lic)
}

// HandleGetLicense 获取单个许可证详情
func HandleGetLicense(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "许可证密钥不能为空",
		})
	}

	var lic model.License
	result := database.DB.Where("key = ?", key).First(&lic)
	if result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "许可证不存在",
		})
	}

	return c.JSON(lic)
}

// HandleLicenseUpdate 更新许可证信息。状态变更走激活引擎保证不变量，
// 其余字段带版本号条件写入，和引擎的并发写互不覆盖。
func HandleLicenseUpdate(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "许可证密钥不能为空",
		})
	}

	input := new(model.LicenseInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "无效的输入数据",
		})
	}

	var lic model.License
	if err := database.DB.Where("key = ?", key).First(&lic).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "许可证不存在",
		})
	}

	updates := map[string]interface{}{}
	if input.ProductID != "" {
		updates["product_id"] = input.ProductID
	}
	if input.CustomerEmail != "" {
		updates["customer_email"] = input.CustomerEmail
	}
	if input.ExpiryDate != nil {
		updates["expiry_date"] = input.ExpiryDate
	}
	if input.ActivationLimit != 0 {
		updates["activation_limit"] = input.ActivationLimit
	}
	if input.AdminOverrideDomains != nil {
		overrides, err := normalizeAll(input.AdminOverrideDomains)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		updates["admin_override_domains"] = overrides
	}

	if len(updates) > 0 {
		updates["revision"] = lic.Revision + 1
		res := database.DB.Model(&model.License{}).
			Where("key = ? AND revision = ?", key, lic.Revision).
			Updates(updates)
		if res.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "更新许可证失败",
			})
		}
		if res.RowsAffected == 0 {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "并发写入冲突，请重试",
			})
		}
	}

	// 状态变更单独走引擎
	if input.Status != "" && input.Status != lic.Status {
		if _, err := eng.SetStatus(key, input.Status); err != nil {
			return apiFailure(c, err)
		}
	}

	database.DB.Where("key = ?", key).First(&lic)

	if sheetSync != nil {
		go sheetSync.SyncLicense(&lic)
	}

	return c.JSON(fiber.Map{
		"message": "许可证更新成功",
		"license": lic,
	})
}

// HandleLicenseDelete 删除许可证
func HandleLicenseDelete(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "许可证密钥不能为空",
		})
	}

	var lic model.License
	result := database.DB.Where("key = ?", key).First(&lic)
	if result.Error != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "许可证不存在",
		})
	}

	result = database.DB.Delete(&lic)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "删除许可证失败",
		})
	}

	return c.JSON(fiber.Map{
		"message": "许可证删除成功",
	})
}

// HandleAdminDeactivateDomain 管理员强制解绑域名（不受覆盖列表限制）
func HandleAdminDeactivateDomain(c *fiber.Ctx) error {
	key := c.Params("key")
	domain := c.Query("domain")
	if key == "" || domain == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "许可证密钥和域名不能为空",
		})
	}

	res, err := eng.Deactivate(key, domain, engine.CallerAdmin)
	if err != nil {
		return apiFailure(c, err)
	}
	return apiSuccess(c, resultData(res))
}

// HandleExtendExpiry 管理员延长单个许可证有效期
func HandleExtendExpiry(c *fiber.Ctx) error {
	key := c.Params("key")
	days, _ := strconv.Atoi(c.Query("days", "0"))

	res, err := eng.ExtendExpiry(key, days)
	if err != nil {
		return apiFailure(c, err)
	}

	if sheetSync != nil {
		go syncLicenseByKey(key)
	}
	return apiSuccess(c, resultData(res))
}

func syncLicenseByKey(key string) {
	var lic model.License
	if err := database.DB.Where("key = ?", key).First(&lic).Error; err != nil {
		return
	}
	sheetSync.SyncLicense(&lic)
}

func normalizeAll(domains []string) (model.DomainList, error) {
	out := make(model.DomainList, 0, len(domains))
	for _, d := range domains {
		n, err := engine.NormalizeDomain(d)
		if err != nil {
			return nil, err
		}
		if !out.Contains(n) {
			out = append(out, n)
		}
	}
	return out, nil
}
