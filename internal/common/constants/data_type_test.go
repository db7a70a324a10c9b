package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	tests := map[string]DataType{
		"DT_FLOAT":  DTFloat,
		"dt_float":  DTFloat,
		"float32":   DTFloat,
		"float":     DTFloat,
		"double":    DTDouble,
		"Float64":   DTDouble,
		"half":      DTHalf,
		" int64 ":   DTInt64,
		"DT_UINT64": DTUint64,
		"bfloat16":  DTBfloat16,
	}
	for in, want := range tests {
		got, err := ParseDataType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"", "invalid", "DT_INVALID", "float128"} {
		_, err := ParseDataType(bad)
		assert.Error(t, err, bad)
	}
}

func TestDataTypeNames(t *testing.T) {
	assert.Equal(t, "DT_BOOL", DTBool.String())
	assert.Equal(t, "bool", DTBool.Alias())
	assert.Equal(t, "DataType(99)", DataType(99).String())
	assert.False(t, DTInvalid.IsValid())
	assert.False(t, DataType(99).IsValid())
	assert.True(t, DTUint32.IsValid())

	for dt := range dataTypes {
		if dt == DTInvalid {
			continue
		}
		got, err := ParseDataType(dt.String())
		require.NoError(t, err)
		assert.Equal(t, dt, got)
	}
}

func TestDataTypeOf(t *testing.T) {
	assert.Equal(t, DTFloat, DataTypeOf[float32]())
	assert.Equal(t, DTDouble, DataTypeOf[float64]())
	assert.Equal(t, DTInt32, DataTypeOf[int32]())
	assert.Equal(t, DTString, DataTypeOf[string]())
	assert.Equal(t, DTBool, DataTypeOf[bool]())
	assert.Equal(t, DTUint64, DataTypeOf[uint64]())
	assert.Equal(t, DTInvalid, DataTypeOf[int]())
	assert.Equal(t, DTInvalid, DataTypeOf[[]float32]())
}
