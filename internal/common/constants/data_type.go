package constants

import (
	"fmt"
	"strings"
)

// DataType identifies the element type of a kernel argument. The numbering
// matches the DataType enum of the kernel wire schema.
type DataType int32

const (
	DTInvalid    DataType = 0
	DTFloat      DataType = 1
	DTDouble     DataType = 2
	DTInt32      DataType = 3
	DTUint8      DataType = 4
	DTInt16      DataType = 5
	DTInt8       DataType = 6
	DTString     DataType = 7
	DTComplex64  DataType = 8
	DTInt64      DataType = 9
	DTBool       DataType = 10
	DTQint8      DataType = 11
	DTQuint8     DataType = 12
	DTQint32     DataType = 13
	DTBfloat16   DataType = 14
	DTQint16     DataType = 15
	DTQuint16    DataType = 16
	DTUint16     DataType = 17
	DTComplex128 DataType = 18
	DTHalf       DataType = 19
	DTResource   DataType = 20
	DTVariant    DataType = 21
	DTUint32     DataType = 22
	DTUint64     DataType = 23
)

type dataTypeInfo struct {
	name  string // enum value name on the wire
	alias string // short, Go-flavoured name
}

var dataTypes = map[DataType]dataTypeInfo{
	DTInvalid:    {"DT_INVALID", "invalid"},
	DTFloat:      {"DT_FLOAT", "float32"},
	DTDouble:     {"DT_DOUBLE", "float64"},
	DTInt32:      {"DT_INT32", "int32"},
	DTUint8:      {"DT_UINT8", "uint8"},
	DTInt16:      {"DT_INT16", "int16"},
	DTInt8:       {"DT_INT8", "int8"},
	DTString:     {"DT_STRING", "string"},
	DTComplex64:  {"DT_COMPLEX64", "complex64"},
	DTInt64:      {"DT_INT64", "int64"},
	DTBool:       {"DT_BOOL", "bool"},
	DTQint8:      {"DT_QINT8", "qint8"},
	DTQuint8:     {"DT_QUINT8", "quint8"},
	DTQint32:     {"DT_QINT32", "qint32"},
	DTBfloat16:   {"DT_BFLOAT16", "bfloat16"},
	DTQint16:     {"DT_QINT16", "qint16"},
	DTQuint16:    {"DT_QUINT16", "quint16"},
	DTUint16:     {"DT_UINT16", "uint16"},
	DTComplex128: {"DT_COMPLEX128", "complex128"},
	DTHalf:       {"DT_HALF", "float16"},
	DTResource:   {"DT_RESOURCE", "resource"},
	DTVariant:    {"DT_VARIANT", "variant"},
	DTUint32:     {"DT_UINT32", "uint32"},
	DTUint64:     {"DT_UINT64", "uint64"},
}

// String returns the wire enum name, e.g. "DT_FLOAT".
func (d DataType) String() string {
	if info, ok := dataTypes[d]; ok {
		return info.name
	}
	return fmt.Sprintf("DataType(%d)", int32(d))
}

// Alias returns the short name, e.g. "float32".
func (d DataType) Alias() string {
	if info, ok := dataTypes[d]; ok {
		return info.alias
	}
	return d.String()
}

// IsValid reports whether d is a known, non-invalid data type.
func (d DataType) IsValid() bool {
	_, ok := dataTypes[d]
	return ok && d != DTInvalid
}

// ParseDataType accepts either the wire name ("DT_FLOAT") or the alias
// ("float32"), case-insensitively.
func ParseDataType(s string) (DataType, error) {
	s = strings.TrimSpace(s)
	for dt, info := range dataTypes {
		if dt == DTInvalid {
			continue
		}
		if strings.EqualFold(s, info.name) || strings.EqualFold(s, info.alias) {
			return dt, nil
		}
	}
	switch strings.ToLower(s) {
	case "float":
		return DTFloat, nil
	case "double":
		return DTDouble, nil
	case "half":
		return DTHalf, nil
	}
	return DTInvalid, fmt.Errorf("unknown data type %q", s)
}

// DataTypeOf maps a Go element type to its DataType. Types with no
// counterpart map to DTInvalid.
func DataTypeOf[T any]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return DTFloat
	case float64:
		return DTDouble
	case int32:
		return DTInt32
	case uint8:
		return DTUint8
	case int16:
		return DTInt16
	case int8:
		return DTInt8
	case string:
		return DTString
	case complex64:
		return DTComplex64
	case int64:
		return DTInt64
	case bool:
		return DTBool
	case uint16:
		return DTUint16
	case complex128:
		return DTComplex128
	case uint32:
		return DTUint32
	case uint64:
		return DTUint64
	default:
		return DTInvalid
	}
}
