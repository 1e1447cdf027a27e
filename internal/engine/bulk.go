package engine

// KeyDomain 批量激活/解绑的单项输入
type KeyDomain struct {
	Key    string `json:"key"`
	Domain string `json:"domain"`
}

// BulkOutcome 批量操作的单键结果。管理界面需要逐行展示部分失败，
// 所以每个键都返回独立结果而不是整体成败。
type BulkOutcome struct {
	Key     string `json:"key"`
	OK      bool   `json:"ok"`
	Code    Code   `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

func outcome(key string, err error) BulkOutcome {
	if err == nil {
		return BulkOutcome{Key: key, OK: true}
	}
	if e, ok := AsError(err); ok {
		return BulkOutcome{Key: key, Code: e.Code, Message: e.Message}
	}
	return BulkOutcome{Key: key, Message: err.Error()}
}

// BulkActivate 按单键规则逐项激活，返回每个键的独立结果
func (e *Engine) BulkActivate(items []KeyDomain, caller Caller) []BulkOutcome {
	outcomes := make([]BulkOutcome, 0, len(items))
	for _, item := range items {
		_, err := e.Activate(item.Key, item.Domain, caller)
		outcomes = append(outcomes, outcome(item.Key, err))
	}
	return outcomes
}

// BulkDeactivate 按单键规则逐项解绑
func (e *Engine) BulkDeactivate(items []KeyDomain, caller Caller) []BulkOutcome {
	outcomes := make([]BulkOutcome, 0, len(items))
	for _, item := range items {
		_, err := e.Deactivate(item.Key, item.Domain, caller)
		outcomes = append(outcomes, outcome(item.Key, err))
	}
	return outcomes
}

// BulkExtendExpiry 批量延长有效期
func (e *Engine) BulkExtendExpiry(keys []string, days int) []BulkOutcome {
	outcomes := make([]BulkOutcome, 0, len(keys))
	for _, key := range keys {
		_, err := e.ExtendExpiry(key, days)
		outcomes = append(outcomes, outcome(key, err))
	}
	return outcomes
}

// BulkSetStatus 批量修改状态
func (e *Engine) BulkSetStatus(keys []string, status string) []BulkOutcome {
	outcomes := make([]BulkOutcome, 0, len(keys))
	for _, key := range keys {
		_, err := e.SetStatus(key, status)
		outcomes = append(outcomes, outcome(key, err))
	}
	return outcomes
}
