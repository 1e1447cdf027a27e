package model

import (
	"time"

	"gorm.io/gorm"
)

// 许可证状态
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusExpired  = "expired"
)

// UnlimitedActivations 激活次数不限的哨兵值
const UnlimitedActivations = -1

type License struct {
	gorm.Model
	Key                     string     `json:"key" gorm:"uniqueIndex;not null"`
	ProductID               string     `json:"product_id" gorm:"index"`
	CustomerEmail           string     `json:"customer_email"`
	Status                  string     `json:"status" gorm:"not null;default:'inactive'"`
	ExpiryDate              *time.Time `json:"expiry_date"` // nil 表示终身授权
	ActivationLimit         int        `json:"activation_limit" gorm:"default:1"`
	ActivatedDomains        DomainList `json:"activated_domains" gorm:"type:text"`
	RequireDomainValidation bool       `json:"require_domain_validation"`
	RequireEmailValidation  bool       `json:"require_email_validation"`
	AdminOverrideDomains    DomainList `json:"admin_override_domains" gorm:"type:text"`
	// 乐观并发版本号，每次写入由激活引擎递增
	Revision int64 `json:"revision" gorm:"not null;default:0"`
}

// IsUnlimited 激活次数是否不限
func (l *License) IsUnlimited() bool {
	return l.ActivationLimit == UnlimitedActivations
}

// IsExpiredAt 在给定时间点是否已过期（终身授权永不过期）
func (l *License) IsExpiredAt(now time.Time) bool {
	return l.ExpiryDate != nil && l.ExpiryDate.Before(now)
}

// AdminManaged 管理员是否接管了域名管理（覆盖列表非空时禁用客户端自助解绑）
func (l *License) AdminManaged() bool {
	return len(l.AdminOverrideDomains) > 0
}
