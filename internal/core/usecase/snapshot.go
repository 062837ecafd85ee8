package usecase

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

// CaptureSnapshot serializes v for the audit log. Auditable values are reduced to
// their allow-listed projection first, so nothing outside it is ever written.
// A nil input yields nil. Already serialized JSON passes through unchanged.
func CaptureSnapshot(v any) json.RawMessage {
	if isNil(v) {
		return nil
	}
	if raw, ok := v.(json.RawMessage); ok {
		return raw
	}
	if a, ok := v.(domain.Auditable); ok {
		v = a.AuditSnapshot()
	}
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprintf("%+v", v))
	}
	return data
}

func keyDescriptor(a domain.Auditable) string {
	return string(CaptureSnapshot(a.AuditKey()))
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
