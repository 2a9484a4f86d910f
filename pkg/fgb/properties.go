package fgb

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/flatgeobuf/flatgeobuf/src/go/flattypes"
	"github.com/paulmach/orb/geojson"
)

// columnTypes infers one column type per configured column from the values
// found across all features. Columns whose values disagree fall back to Json,
// columns that are always null are typed String.
func columnTypes(features []*geojson.Feature, columns []string) []flattypes.ColumnType {
	types := make([]flattypes.ColumnType, len(columns))
	for i, name := range columns {
		seen := false
		for _, f := range features {
			if f == nil {
				continue
			}
			v, ok := f.Properties[name]
			if !ok || v == nil {
				continue
			}
			t := valueType(v)
			switch {
			case !seen:
				types[i], seen = t, true
			case types[i] != t:
				types[i] = flattypes.ColumnTypeJson
			}
		}
		if !seen {
			types[i] = flattypes.ColumnTypeString
		}
	}
	return types
}

func valueType(v any) flattypes.ColumnType {
	switch v.(type) {
	case bool:
		return flattypes.ColumnTypeBool
	case int, int8, int16, int32, int64:
		return flattypes.ColumnTypeLong
	case float32, float64, json.Number:
		return flattypes.ColumnTypeDouble
	case string:
		return flattypes.ColumnTypeString
	default:
		return flattypes.ColumnTypeJson
	}
}

// encodeProperties writes each non-null property as a little-endian uint16
// column index followed by the value in its column's encoding.
func encodeProperties(props geojson.Properties, columns []string, types []flattypes.ColumnType) []byte {
	if len(props) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for i, name := range columns {
		v, ok := props[name]
		if !ok || v == nil {
			continue
		}
		value, ok := encodeValue(v, types[i])
		if !ok {
			continue
		}
		_ = binary.Write(&buf, binary.LittleEndian, uint16(i))
		buf.Write(value)
	}
	return buf.Bytes()
}

func encodeValue(v any, t flattypes.ColumnType) ([]byte, bool) {
	switch t {
	case flattypes.ColumnTypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, false
		}
		if b {
			return []byte{1}, true
		}
		return []byte{0}, true

	case flattypes.ColumnTypeLong:
		n, ok := toInt64(v)
		if !ok {
			return nil, false
		}
		return binary.LittleEndian.AppendUint64(nil, uint64(n)), true

	case flattypes.ColumnTypeDouble:
		f, ok := toFloat64(v)
		if !ok {
			return nil, false
		}
		return binary.LittleEndian.AppendUint64(nil, math.Float64bits(f)), true

	case flattypes.ColumnTypeString:
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		return lengthPrefixed([]byte(s)), true

	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return lengthPrefixed(b), true
	}
}

func lengthPrefixed(b []byte) []byte {
	out := binary.LittleEndian.AppendUint32(make([]byte, 0, 4+len(b)), uint32(len(b)))
	return append(out, b...)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}
