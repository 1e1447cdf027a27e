package engine

import (
	"strconv"
	"strings"
	"time"

	"license-activation-server/internal/model"
)

// Store 许可证记录存储。引擎只依赖这一个接口，不关心底层实现。
type Store interface {
	// GetByKey 按密钥查找许可证，不存在时返回 (nil, nil)
	GetByKey(key string) (*model.License, error)
	// SaveCAS 以乐观并发方式写回许可证：仅当存储中的版本号仍等于
	// expectedRevision 时写入并递增版本号（成功时同步更新 lic.Revision）。
	// 版本号不匹配返回 (false, nil)，由调用方重读重试。
	SaveCAS(lic *model.License, expectedRevision int64) (bool, error)
}

// Auditor 审计日志收集器，每次成功的状态变更记录一条
type Auditor interface {
	Record(licenseKey, action, domain, details string)
}

// Caller 调用方身份，管理员可绕过域名覆盖限制
type Caller int

const (
	CallerClient Caller = iota
	CallerAdmin
)

// Result 激活引擎返回给调用方的许可证公开字段
type Result struct {
	Key              string     `json:"key"`
	Status           string     `json:"status"`
	ExpiryDate       *time.Time `json:"expiry_date"`
	ActivationLimit  int        `json:"activation_limit"`
	ActivationsCount int        `json:"activated_domains_count"`
	Domains          []string   `json:"activated_domains"`
}

// Engine 激活引擎：许可证域名账本和状态的唯一修改者。
// 无内部状态，每次调用都是对存储记录的一次原子读改写。
type Engine struct {
	store      Store
	audit      Auditor
	now        func() time.Time
	maxRetries int
	retryDelay time.Duration
}

func New(store Store, audit Auditor) *Engine {
	return &Engine{
		store:      store,
		audit:      audit,
		now:        time.Now,
		maxRetries: 3,
		retryDelay: 20 * time.Millisecond,
	}
}

// Activate 将域名绑定到许可证，消耗一个激活名额。
// 域名已绑定时为幂等成功；未激活状态的许可证在首次激活时转为 active。
// 管理员接管的许可证只允许客户端激活覆盖列表内的域名。
func (e *Engine) Activate(key, rawDomain string, caller Caller) (*Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalidInput("许可证密钥不能为空")
	}
	domain, err := NormalizeDomain(rawDomain)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		lic, err := e.store.GetByKey(key)
		if err != nil {
			return nil, err
		}
		if lic == nil {
			return nil, ErrNotFound
		}

		now := e.now()
		if lic.IsExpiredAt(now) {
			e.correctExpired(lic, domain)
			e.record(key, "license_activation_failed", domain, "许可证已过期")
			return nil, ErrExpired
		}

		// 管理员接管后客户端只能激活覆盖列表内的域名
		if caller != CallerAdmin && lic.AdminManaged() && !lic.AdminOverrideDomains.Contains(domain) {
			e.record(key, "license_activation_forbidden", domain, "域名不在管理员授权列表内")
			return nil, ErrForbidden
		}

		// 重复激活同一域名视为幂等成功，不计入激活次数
		if lic.ActivatedDomains.Contains(domain) {
			return resultOf(lic), nil
		}

		if !lic.IsUnlimited() && len(lic.ActivatedDomains) >= lic.ActivationLimit {
			e.record(key, "license_activation_limit_reached", domain, "已达到激活上限")
			return nil, ErrLimitReached
		}

		lic.ActivatedDomains = append(lic.ActivatedDomains, domain)
		if lic.Status == model.StatusInactive {
			lic.Status = model.StatusActive
		}

		ok, err := e.store.SaveCAS(lic, lic.Revision)
		if err != nil {
			return nil, err
		}
		if ok {
			e.record(key, "license_activated", domain, "许可证在该域名激活成功")
			return resultOf(lic), nil
		}
		if attempt >= e.maxRetries {
			return nil, ErrStoreConflict
		}
		time.Sleep(e.retryDelay * time.Duration(attempt+1))
	}
}

// Deactivate 解除域名绑定。域名账本清空后状态保持不变：
// 许可证可以处于 active 且零激活的状态，这是有意的设计。
func (e *Engine) Deactivate(key, rawDomain string, caller Caller) (*Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalidInput("许可证密钥不能为空")
	}
	domain, err := NormalizeDomain(rawDomain)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		lic, err := e.store.GetByKey(key)
		if err != nil {
			return nil, err
		}
		if lic == nil {
			return nil, ErrNotFound
		}

		// 管理员接管域名后禁止客户端自助解绑
		if caller != CallerAdmin && lic.AdminManaged() {
			e.record(key, "license_deactivation_forbidden", domain, "域名由管理员管理")
			return nil, ErrForbidden
		}

		if !lic.ActivatedDomains.Contains(domain) {
			return nil, ErrDomainNotActive
		}

		lic.ActivatedDomains = lic.ActivatedDomains.Remove(domain)
		RefreshStatus(lic, e.now())

		ok, err := e.store.SaveCAS(lic, lic.Revision)
		if err != nil {
			return nil, err
		}
		if ok {
			e.record(key, "license_deactivated", domain, "许可证在该域名解绑成功")
			return resultOf(lic), nil
		}
		if attempt >= e.maxRetries {
			return nil, ErrStoreConflict
		}
		time.Sleep(e.retryDelay * time.Duration(attempt+1))
	}
}

// Validate 查询许可证当前状态。发现过期时顺带把状态修正入库，
// 保证过期判定不依赖后台扫描。domain 非空时校验该域名是否已激活。
func (e *Engine) Validate(key, rawDomain string) (*Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalidInput("许可证密钥不能为空")
	}
	domain := ""
	if strings.TrimSpace(rawDomain) != "" {
		var err error
		domain, err = NormalizeDomain(rawDomain)
		if err != nil {
			return nil, err
		}
	}

	for attempt := 0; ; attempt++ {
		lic, err := e.store.GetByKey(key)
		if err != nil {
			return nil, err
		}
		if lic == nil {
			return nil, ErrNotFound
		}

		if !RefreshStatus(lic, e.now()) {
			return e.checkDomainMembership(lic, domain)
		}

		ok, err := e.store.SaveCAS(lic, lic.Revision)
		if err != nil {
			return nil, err
		}
		if ok {
			e.record(key, "license_expired", "", "校验时发现许可证已过期")
			return e.checkDomainMembership(lic, domain)
		}
		if attempt >= e.maxRetries {
			return nil, ErrStoreConflict
		}
		time.Sleep(e.retryDelay * time.Duration(attempt+1))
	}
}

func (e *Engine) checkDomainMembership(lic *model.License, domain string) (*Result, error) {
	if domain == "" {
		return resultOf(lic), nil
	}
	// 激活次数不限时默认跳过域名成员校验，
	// 除非许可证显式要求域名校验
	if lic.IsUnlimited() && !lic.RequireDomainValidation {
		return resultOf(lic), nil
	}
	if !lic.ActivatedDomains.Contains(domain) {
		return nil, ErrDomainNotActive
	}
	return resultOf(lic), nil
}

// ExtendExpiry 管理员延长有效期，按天数从当前到期日顺延。
// 这是 expired 状态唯一的恢复路径。
func (e *Engine) ExtendExpiry(key string, days int) (*Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalidInput("许可证密钥不能为空")
	}
	if days <= 0 {
		return nil, invalidInput("延期天数必须大于 0")
	}

	for attempt := 0; ; attempt++ {
		lic, err := e.store.GetByKey(key)
		if err != nil {
			return nil, err
		}
		if lic == nil {
			return nil, ErrNotFound
		}
		if lic.ExpiryDate == nil {
			return nil, invalidInput("终身授权无需延期")
		}

		newExpiry := lic.ExpiryDate.AddDate(0, 0, days)
		lic.ExpiryDate = &newExpiry
		if lic.Status == model.StatusExpired && !lic.IsExpiredAt(e.now()) {
			lic.Status = model.StatusActive
		}

		ok, err := e.store.SaveCAS(lic, lic.Revision)
		if err != nil {
			return nil, err
		}
		if ok {
			e.record(key, "license_extended", "", "有效期顺延 "+strconv.Itoa(days)+" 天")
			return resultOf(lic), nil
		}
		if attempt >= e.maxRetries {
			return nil, ErrStoreConflict
		}
		time.Sleep(e.retryDelay * time.Duration(attempt+1))
	}
}

// SetStatus 管理员直接设置许可证状态。不允许制造违反不变量的状态：
// 有效期已过时不能设回 active，有效期未过时不能设为 expired。
func (e *Engine) SetStatus(key, status string) (*Result, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, invalidInput("许可证密钥不能为空")
	}
	switch status {
	case model.StatusActive, model.StatusInactive, model.StatusExpired:
	default:
		return nil, invalidInput("无效的状态: " + status)
	}

	for attempt := 0; ; attempt++ {
		lic, err := e.store.GetByKey(key)
		if err != nil {
			return nil, err
		}
		if lic == nil {
			return nil, ErrNotFound
		}

		now := e.now()
		if status == model.StatusActive && lic.IsExpiredAt(now) {
			return nil, invalidInput("许可证已过期，请先延长有效期")
		}
		if status == model.StatusExpired && !lic.IsExpiredAt(now) {
			return nil, invalidInput("许可证尚未到期，不能标记为过期")
		}

		if lic.Status == status {
			return resultOf(lic), nil
		}
		old := lic.Status
		lic.Status = status

		ok, err := e.store.SaveCAS(lic, lic.Revision)
		if err != nil {
			return nil, err
		}
		if ok {
			e.record(key, "license_status_changed", "", old+" -> "+status)
			return resultOf(lic), nil
		}
		if attempt >= e.maxRetries {
			return nil, ErrStoreConflict
		}
		time.Sleep(e.retryDelay * time.Duration(attempt+1))
	}
}

// RefreshStatus 到期判定的唯一实现，交互路径和过期扫描共用。
// 状态确实发生了变化时返回 true，调用方负责落库。
func RefreshStatus(lic *model.License, now time.Time) bool {
	if lic.IsExpiredAt(now) && lic.Status != model.StatusExpired {
		lic.Status = model.StatusExpired
		return true
	}
	return false
}

// correctExpired 激活路径上发现过期时的状态修正，
// 与 Validate 路径相同的有界重试，保证冲突下修正仍然落库
func (e *Engine) correctExpired(lic *model.License, domain string) {
	for attempt := 0; ; attempt++ {
		if !RefreshStatus(lic, e.now()) {
			return
		}
		ok, err := e.store.SaveCAS(lic, lic.Revision)
		if err != nil {
			return
		}
		if ok {
			e.record(lic.Key, "license_expired", domain, "激活时发现许可证已过期")
			return
		}
		if attempt >= e.maxRetries {
			return
		}
		time.Sleep(e.retryDelay * time.Duration(attempt+1))

		fresh, err := e.store.GetByKey(lic.Key)
		if err != nil || fresh == nil {
			return
		}
		lic = fresh
	}
}

func (e *Engine) record(key, action, domain, details string) {
	if e.audit != nil {
		e.audit.Record(key, action, domain, details)
	}
}

func resultOf(lic *model.License) *Result {
	domains := make([]string, len(lic.ActivatedDomains))
	copy(domains, lic.ActivatedDomains)
	return &Result{
		Key:              lic.Key,
		Status:           lic.Status,
		ExpiryDate:       lic.ExpiryDate,
		ActivationLimit:  lic.ActivationLimit,
		ActivationsCount: len(lic.ActivatedDomains),
		Domains:          domains,
	}
}
