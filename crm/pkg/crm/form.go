package crm

import (
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Params 请求参数，可以任意嵌套 map / slice
type Params map[string]any

// EncodeForm 按方括号约定展开嵌套参数:
// fields[TITLE]=x, select[0]=ID, fields[PHONE][0][VALUE]=...
// bool 编码为 1/0，nil 跳过
func EncodeForm(params Params) url.Values {
	values := url.Values{}
	for key, v := range params {
		appendValue(values, key, reflect.ValueOf(v))
	}
	return values
}

func appendValue(values url.Values, key string, v reflect.Value) {
	if !v.IsValid() {
		return
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Pointer:
		if v.IsNil() {
			return
		}
		appendValue(values, key, v.Elem())
		return
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			appendValue(values, fmt.Sprintf("%s[%v]", key, iter.Key().Interface()), iter.Value())
		}
		return
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			values.Add(key, string(v.Bytes()))
			return
		}
		for i := 0; i < v.Len(); i++ {
			appendValue(values, key+"["+strconv.Itoa(i)+"]", v.Index(i))
		}
		return
	case reflect.Bool:
		if v.Bool() {
			values.Add(key, "1")
		} else {
			values.Add(key, "0")
		}
		return
	}

	raw := v.Interface()
	if t, ok := raw.(time.Time); ok {
		values.Add(key, t.Format(time.RFC3339))
		return
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		s = fmt.Sprint(raw)
	}
	values.Add(key, s)
}
