package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// DomainList 有序域名集合，以 JSON 文本存储在单列中
type DomainList []string

func (d DomainList) Value() (driver.Value, error) {
	if d == nil {
		d = DomainList{}
	}
	b, err := json.Marshal([]string(d))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *DomainList) Scan(value interface{}) error {
	if value == nil {
		*d = DomainList{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("无法将 %T 解析为 DomainList", value)
	}

	if len(raw) == 0 {
		*d = DomainList{}
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(d))
}

// Contains 判断域名是否已在集合中（调用方保证已归一化）
func (d DomainList) Contains(domain string) bool {
	for _, v := range d {
		if v == domain {
			return true
		}
	}
	return false
}

// Remove 返回去掉指定域名后的新集合
func (d DomainList) Remove(domain string) DomainList {
	out := make(DomainList, 0, len(d))
	for _, v := range d {
		if v != domain {
			out = append(out, v)
		}
	}
	return out
}
