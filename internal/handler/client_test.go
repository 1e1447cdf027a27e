package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
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

// apiResponse 客户端接口统一外壳
type apiResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
}

func setupClientApp() *fiber.App {
	database.InitTestDB()
	Init(engine.New(database.NewLicenseStore(database.DB), service.Auditor{}), nil)

	app := fiber.New()
	app.Post("/api/v1/client/activate", HandleClientActivate)
	app.Post("/api/v1/client/deactivate", HandleClientDeactivate)
	app.Post("/api/v1/client/validate", HandleClientValidate)
	return app
}

func postJSON(t *testing.T, app *fiber.App, path string, payload interface{}) (*http.Response, apiResponse) {
	t.Helper()
	body, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	require.NoError(t, err)

	var parsed apiResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&parsed))
	return resp, parsed
}

func createLicense(t *testing.T, lic *model.License) {
	t.Helper()
	if lic.ActivatedDomains == nil {
		lic.ActivatedDomains = model.DomainList{}
	}
	require.NoError(t, database.DB.Create(lic).Error)
}

func TestHandleClientActivate(t *testing.T) {
	app := setupClientApp()
	defer database.CleanTestDB()

	yesterday := time.Now().AddDate(0, 0, -1)
	createLicense(t, &model.License{Key: "ACT-OK-1", ProductID: "my-plugin", Status: model.StatusInactive, ActivationLimit: 2})
	createLicense(t, &model.License{Key: "ACT-FULL-1", ProductID: "my-plugin", Status: model.StatusActive, ActivationLimit: 1,
		ActivatedDomains: model.DomainList{"taken.com"}})
	createLicense(t, &model.License{Key: "ACT-EXP-1", ProductID: "my-plugin", Status: model.StatusActive, ActivationLimit: 1,
		ExpiryDate: &yesterday})

	tests := []struct {
		name       string
		payload    fiber.Map
		wantStatus int
		wantCode   string
	}{
		{
			name:       "success",
			payload:    fiber.Map{"license_key": "ACT-OK-1", "product_id": "my-plugin", "domain": "site-a.com"},
			wantStatus: fiber.StatusOK,
		},
		{
			name:       "limit_reached",
			payload:    fiber.Map{"license_key": "ACT-FULL-1", "product_id": "my-plugin", "domain": "new.com"},
			wantStatus: fiber.StatusForbidden,
			wantCode:   "limit_reached",
		},
		{
			name:       "not_found",
			payload:    fiber.Map{"license_key": "NO-SUCH-KEY", "product_id": "my-plugin", "domain": "a.com"},
			wantStatus: fiber.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "expired",
			payload:    fiber.Map{"license_key": "ACT-EXP-1", "product_id": "my-plugin", "domain": "a.com"},
			wantStatus: fiber.StatusForbidden,
			wantCode:   "expired",
		},
		{
			name:       "product_mismatch",
			payload:    fiber.Map{"license_key": "ACT-OK-1", "product_id": "other-plugin", "domain": "a.com"},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "invalid_input",
		},
		{
			name:       "missing_domain",
			payload:    fiber.Map{"license_key": "ACT-OK-1", "product_id": "my-plugin"},
			wantStatus: fiber.StatusBadRequest,
			wantCode:   "invalid_input",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, parsed := postJSON(t, app, "/api/v1/client/activate", tt.payload)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantCode != "" {
				assert.False(t, parsed.Success)
				assert.Equal(t, tt.wantCode, parsed.Data["code"])
				assert.NotEmpty(t, parsed.Data["message"])
			} else {
				assert.True(t, parsed.Success)
				assert.Equal(t, "active", parsed.Data["status"])
				assert.EqualValues(t, 1, parsed.Data["activated_domains_count"])
			}
		})
	}

	// 过期状态修正必须落库
	var lic model.License
	database.DB.Where("key = ?", "ACT-EXP-1").First(&lic)
	assert.Equal(t, model.StatusExpired, lic.Status)
}

func TestHandleClientActivateIdempotent(t *testing.T) {
	app := setupClientApp()
	defer database.CleanTestDB()

	createLicense(t, &model.License{Key: "IDEM-H-1", ProductID: "my-plugin", Status: model.StatusInactive, ActivationLimit: 1})

	payload := fiber.Map{"license_key": "IDEM-H-1", "product_id": "my-plugin", "domain": "same.com"}

	resp, first := postJSON(t, app, "/api/v1/client/activate", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, second := postJSON(t, app, "/api/v1/client/activate", payload)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, first.Data["activated_domains_count"], second.Data["activated_domains_count"])
}

func TestHandleClientDeactivate(t *testing.T) {
	app := setupClientApp()
	defer database.CleanTestDB()

	createLicense(t, &model.License{Key: "DEA-H-1", ProductID: "my-plugin", Status: model.StatusActive, ActivationLimit: 2,
		ActivatedDomains: model.DomainList{"bound.com"}})
	createLicense(t, &model.License{Key: "DEA-OVR-1", ProductID: "my-plugin", Status: model.StatusActive, ActivationLimit: 2,
		ActivatedDomains:     model.DomainList{"locked.com"},
		AdminOverrideDomains: model.DomainList{"locked.com"}})

	// 正常解绑
	resp, parsed := postJSON(t, app, "/api/v1/client/deactivate",
		fiber.Map{"license_key": "DEA-H-1", "product_id": "my-plugin", "domain": "bound.com"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, parsed.Data["activated_domains_count"])

	// 未绑定的域名
	resp, parsed = postJSON(t, app, "/api/v1/client/deactivate",
		fiber.Map{"license_key": "DEA-H-1", "product_id": "my-plugin", "domain": "other.com"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "domain_not_active", parsed.Data["code"])

	// 管理员接管的许可证禁止客户端解绑
	resp, parsed = postJSON(t, app, "/api/v1/client/deactivate",
		fiber.Map{"license_key": "DEA-OVR-1", "product_id": "my-plugin", "domain": "locked.com"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "forbidden", parsed.Data["code"])
}

func TestHandleClientValidate(t *testing.T) {
	app := setupClientApp()
	defer database.CleanTestDB()

	yesterday := time.Now().AddDate(0, 0, -1)
	createLicense(t, &model.License{Key: "VAL-H-1", ProductID: "my-plugin", Status: model.StatusActive, ActivationLimit: 1,
		ExpiryDate: &yesterday})

	resp, parsed := postJSON(t, app, "/api/v1/client/validate",
		fiber.Map{"license_key": "VAL-H-1", "product_id": "my-plugin"})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, parsed.Success)
	assert.Equal(t, "expired", parsed.Data["status"])

	// 后续直接读库也是 expired
	var lic model.License
	database.DB.Where("key = ?", "VAL-H-1").First(&lic)
	assert.Equal(t, model.StatusExpired, lic.Status)
}
