package engine

import "errors"

// Code 稳定的错误标识，远程客户端按此分支，不依赖 HTTP 状态码
type Code string

const (
	CodeNotFound        Code = "not_found"
	CodeExpired         Code = "expired"
	CodeLimitReached    Code = "limit_reached"
	CodeDomainNotActive Code = "domain_not_active"
	CodeForbidden       Code = "forbidden"
	CodeInvalidInput    Code = "invalid_input"
	CodeStoreConflict   Code = "store_conflict"
)

// Error 激活引擎的类型化错误，所有失败都以此返回给调用方
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

var (
	ErrNotFound        = &Error{CodeNotFound, "许可证不存在"}
	ErrExpired         = &Error{CodeExpired, "许可证已过期"}
	ErrLimitReached    = &Error{CodeLimitReached, "许可证已达到激活上限"}
	ErrDomainNotActive = &Error{CodeDomainNotActive, "该域名未激活此许可证"}
	ErrForbidden       = &Error{CodeForbidden, "域名由管理员管理，禁止自助解绑"}
	ErrStoreConflict   = &Error{CodeStoreConflict, "并发写入冲突，请重试"}
)

func invalidInput(msg string) *Error {
	return &Error{CodeInvalidInput, msg}
}

// AsError 提取类型化错误，非引擎错误返回 false
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
