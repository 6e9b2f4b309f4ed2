package variants

import (
	"encoding/base64"
	"encoding/json"
	"math"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
)

// toInt64 accepts integer kinds, integral floats, json.Number and numeric text.
// Booleans are rejected even though cast would turn them into 0/1.
func toInt64(input any) (int64, bool) {
	switch v := input.(type) {
	case nil, bool:
		return 0, false
	case int64:
		return v, true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
	case uint:
		if uint64(v) > math.MaxInt64 {
			return 0, false
		}
	case float32:
		return floatToInt64(float64(v))
	case float64:
		return floatToInt64(v)
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		input = strings.TrimSpace(v)
		if input == "" {
			return 0, false
		}
	}
	n, err := cast.ToInt64E(input)
	return n, err == nil
}

func toUint64(input any) (uint64, bool) {
	switch v := input.(type) {
	case nil, bool:
		return 0, false
	case uint64:
		return v, true
	case float32:
		return floatToUint64(float64(v))
	case float64:
		return floatToUint64(v)
	case json.Number:
		input = v.String()
	case string:
		input = strings.TrimSpace(v)
		if input == "" {
			return 0, false
		}
	}
	n, err := cast.ToUint64E(input)
	return n, err == nil
}

func toFloat64(input any) (float64, bool) {
	switch v := input.(type) {
	case nil, bool:
		return 0, false
	case float64:
		return v, true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		input = strings.TrimSpace(v)
		if input == "" {
			return 0, false
		}
	}
	f, err := cast.ToFloat64E(input)
	return f, err == nil && !math.IsNaN(f)
}

func integral(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f)
}

// floatToInt64 converts integral floats inside [-2^63, 2^63). Conversions outside that
// range are implementation defined in Go, so they are rejected here.
func floatToInt64(f float64) (int64, bool) {
	if !integral(f) || f < -0x1p63 || f >= 0x1p63 {
		return 0, false
	}
	return int64(f), true
}

func floatToUint64(f float64) (uint64, bool) {
	if !integral(f) || f < 0 || f >= 0x1p64 {
		return 0, false
	}
	return uint64(f), true
}

func toInt32(input any) (int32, bool) {
	n, ok := toInt64(input)
	if !ok || n < math.MinInt32 || n > math.MaxInt32 {
		return 0, false
	}
	return int32(n), true
}

func toUint32(input any) (uint32, bool) {
	n, ok := toUint64(input)
	if !ok || n > math.MaxUint32 {
		return 0, false
	}
	return uint32(n), true
}

func toString(input any) (string, bool) {
	s, ok := input.(string)
	return s, ok
}

// toSlice exposes any slice or array as []any. Strings and byte slices are not sequences.
func toSlice(input any) ([]any, bool) {
	switch v := input.(type) {
	case nil, string, []byte:
		return nil, false
	case []any:
		return v, true
	}
	rv := reflect.ValueOf(input)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toPair reads a two element composite: [2]any, []any of length 2, or any two element array.
func toPair(input any) (any, any, bool) {
	if _, isMap := input.(map[string]any); isMap {
		return nil, nil, false
	}
	items, ok := toSlice(input)
	if !ok || len(items) != 2 {
		return nil, nil, false
	}
	return items[0], items[1], true
}

// decodeMap decodes a loosely typed map (a JSON or YAML document fragment) into out.
// Unknown keys are an error so that unrelated maps are not silently accepted.
func decodeMap(input any, out any) bool {
	m, ok := input.(map[string]any)
	if !ok {
		return false
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.DecodeHookFuncType(base64Bytes),
	})
	if err != nil {
		return false
	}
	return dec.Decode(m) == nil
}

// base64Bytes lets []byte fields be read from the base64 text JSON produces for them.
func base64Bytes(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String || to != reflect.TypeOf([]byte(nil)) {
		return data, nil
	}
	return base64.StdEncoding.DecodeString(data.(string))
}
