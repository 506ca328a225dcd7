package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 通用 JSON 字段
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	raw, ok := scanBytes(value)
	if !ok {
		*j = make(JSON)
		return nil
	}
	return json.Unmarshal(raw, j)
}

// StringArray 字符串数组
type StringArray []string

// Value 实现 driver.Valuer 接口
func (s StringArray) Value() (driver.Value, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Scan 实现 sql.Scanner 接口
func (s *StringArray) Scan(value interface{}) error {
	raw, ok := scanBytes(value)
	if !ok {
		*s = StringArray{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

func scanBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, len(v) > 0
	case string:
		return []byte(v), v != ""
	default:
		return nil, false
	}
}
