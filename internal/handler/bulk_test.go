package handler

import (
	"testing"
	"time"

	"license-activation-server/internal/database"
	"license-activation-server/internal/engine"
	"license-activation-server/internal/model"
	"license-activation-server/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAdminApp() *fiber.App {
	database.InitTestDB()
	Init(engine.New(database.NewLicenseStore(database.DB), service.Auditor{}), nil)

	// 测试中直接挂载处理函数，跳过认证中间件
	app := fiber.New()
	app.Post("/api/v1/licenses/bulk/extend", HandleBulkExtend)
	app.Post("/api/v1/licenses/bulk/status", HandleBulkSetStatus)
	app.Post("/api/v1/licenses/bulk/activate", HandleBulkActivate)
	return app
}

func TestHandleBulkExtendPartialFailure(t *testing.T) {
	app := setupAdminApp()
	defer database.CleanTestDB()

	nextMonth := time.Now().AddDate(0, 1, 0)
	createLicense(t, &model.License{Key: "BULK-1", ProductID: "p", Status: model.StatusActive, ActivationLimit: 1, ExpiryDate: &nextMonth})
	createLicense(t, &model.License{Key: "BULK-LIFE", ProductID: "p", Status: model.StatusActive, ActivationLimit: 1})

	resp, parsed := postJSON(t, app, "/api/v1/licenses/bulk/extend", fiber.Map{
		"keys": []string{"BULK-1", "BULK-LIFE", "BULK-MISSING"},
		"days": 30,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, parsed.Success)

	// 逐键结果：成功、终身授权不可延期、不存在
	outcomes := parsed.Data["outcomes"].([]interface{})
	require.Len(t, outcomes, 3)

	first := outcomes[0].(map[string]interface{})
	assert.Equal(t, "BULK-1", first["key"])
	assert.Equal(t, true, first["ok"])

	second := outcomes[1].(map[string]interface{})
	assert.Equal(t, false, second["ok"])
	assert.Equal(t, "invalid_input", second["code"])

	third := outcomes[2].(map[string]interface{})
	assert.Equal(t, false, third["ok"])
	assert.Equal(t, "not_found", third["code"])
}

func TestHandleBulkActivate(t *testing.T) {
	app := setupAdminApp()
	defer database.CleanTestDB()

	createLicense(t, &model.License{Key: "BA-1", ProductID: "p", Status: model.StatusInactive, ActivationLimit: 1})
	createLicense(t, &model.License{Key: "BA-2", ProductID: "p", Status: model.StatusActive, ActivationLimit: 1,
		ActivatedDomains: model.DomainList{"full.com"}})

	resp, parsed := postJSON(t, app, "/api/v1/licenses/bulk/activate", fiber.Map{
		"items": []fiber.Map{
			{"key": "BA-1", "domain": "a.com"},
			{"key": "BA-2", "domain": "b.com"},
		},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	outcomes := parsed.Data["outcomes"].([]interface{})
	require.Len(t, outcomes, 2)
	assert.Equal(t, true, outcomes[0].(map[string]interface{})["ok"])
	assert.Equal(t, "limit_reached", outcomes[1].(map[string]interface{})["code"])
}

func TestHandleBulkSetStatus(t *testing.T) {
	app := setupAdminApp()
	defer database.CleanTestDB()

	createLicense(t, &model.License{Key: "BS-1", ProductID: "p", Status: model.StatusActive, ActivationLimit: 1})

	resp, parsed := postJSON(t, app, "/api/v1/licenses/bulk/status", fiber.Map{
		"keys":   []string{"BS-1"},
		"status": "inactive",
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	outcomes := parsed.Data["outcomes"].([]interface{})
	require.Len(t, outcomes, 1)
	assert.Equal(t, true, outcomes[0].(map[string]interface{})["ok"])

	var lic model.License
	database.DB.Where("key = ?", "BS-1").First(&lic)
	assert.Equal(t, model.StatusInactive, lic.Status)
}
