package model

import "time"

// LicenseInput 管理端创建/更新许可证的输入
type LicenseInput struct {
	ProductID               string     `json:"product_id" validate:"required"`
	CustomerEmail           string     `json:"customer_email" validate:"omitempty,email"`
	Status                  string     `json:"status" validate:"omitempty,oneof=active inactive expired"`
	ExpiryDate              *time.Time `json:"expiry_date"`
	ActivationLimit         int        `json:"activation_limit" validate:"omitempty,min=-1"`
	RequireDomainValidation bool       `json:"require_domain_validation"`
	RequireEmailValidation  bool       `json:"require_email_validation"`
	AdminOverrideDomains    []string   `json:"admin_override_domains" validate:"omitempty,dive,hostname_rfc1123"`
}
