package crm

import "github.com/spf13/cast"

// Response 解码后的 CRM 响应
type Response map[string]any

// Record CRM 返回的实体，字段不做约束
type Record map[string]any

// Result 返回 result 字段，null 视为不存在
func (r Response) Result() (any, bool) {
	return r.Lookup("result")
}

// Lookup 逐层取嵌套字段，例如 Lookup("result", "item", "id")
func (r Response) Lookup(path ...string) (any, bool) {
	var cur any = map[string]any(r)
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok || cur == nil {
			return nil, false
		}
	}
	return cur, cur != nil
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	case Response:
		return m, true
	}
	return nil, false
}

func toRecord(v any) (Record, bool) {
	m, ok := asMap(v)
	if !ok {
		return nil, false
	}
	return Record(m), true
}

// toRecords 列表中非对象的元素被忽略
func toRecords(v any) ([]Record, bool) {
	list, ok := v.([]any)
	if !ok {
		return nil, false
	}
	records := make([]Record, 0, len(list))
	for _, item := range list {
		if rec, ok := toRecord(item); ok {
			records = append(records, rec)
		}
	}
	return records, true
}

func toID(v any) (int64, bool) {
	switch v.(type) {
	case bool, map[string]any, []any:
		return 0, false
	}
	id, err := cast.ToInt64E(v)
	if err != nil {
		return 0, false
	}
	return id, true
}
