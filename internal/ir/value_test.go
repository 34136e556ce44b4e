package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIRValueSealed(t *testing.T) {
	var _ IRValue = IRNull{}
	var _ IRValue = IRString("day")
	var _ IRValue = IRInt(2)
	var _ IRValue = IRBool(true)
	var _ IRValue = IRArray{IRString("a"), IRInt(1)}
	var _ IRValue = IRObject{"unit": IRString("day")}
}

func TestSortedKeys_UTF16Order(t *testing.T) {
	obj := IRObject{
		"\ue000":     IRInt(1),
		"\U00010000": IRInt(2), // surrogate pair 0xD800 0xDC00
		"a":          IRInt(3),
		"A":          IRInt(4),
		"aa":         IRInt(5),
	}

	// UTF-8 would put U+10000 after U+E000; UTF-16 puts it first.
	assert.Equal(t, []string{"A", "a", "aa", "\U00010000", "\ue000"}, obj.SortedKeys())
}

func TestNewIRObject(t *testing.T) {
	obj := NewIRObject(
		O("unit", IRString("day")),
		O("case", IRInt(0)),
		O("unit", IRString("hour")),
	)
	assert.Equal(t, IRObject{"case": IRInt(0), "unit": IRString("hour")}, obj)
}

func TestMarshalIRValue(t *testing.T) {
	v := IRObject{
		"z":      IRNull{},
		"a":      IRArray{IRInt(1), IRBool(false)},
		"script": IRString("<b>"),
	}

	data, err := MarshalIRValue(v)
	require.NoError(t, err)
	assert.Equal(t, `{"a":[1,false],"script":"<b>","z":null}`, string(data))

	viaStdlib, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(viaStdlib))
}

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"n":42,"s":"x","b":true,"nil":null,"arr":[1,"two"]}`))
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"n":   IRInt(42),
		"s":   IRString("x"),
		"b":   IRBool(true),
		"nil": IRNull{},
		"arr": IRArray{IRInt(1), IRString("two")},
	}, v)
}

func TestUnmarshalIRValue_RejectsFloats(t *testing.T) {
	for _, in := range []string{`1.5`, `1e3`, `[0.1]`, `{"x":2.0}`} {
		_, err := UnmarshalIRValue([]byte(in))
		assert.Error(t, err, in)
	}
}

func TestUnmarshalIRValue_RejectsTrailingData(t *testing.T) {
	_, err := UnmarshalIRValue([]byte(`1 2`))
	assert.Error(t, err)
}

func TestFromGo(t *testing.T) {
	v, err := FromGo(map[string]any{"day": 60, "month": int64(2), "unknown": nil})
	require.NoError(t, err)
	assert.Equal(t, IRObject{"day": IRInt(60), "month": IRInt(2), "unknown": IRNull{}}, v)

	_, err = FromGo(3.5)
	assert.Error(t, err)

	_, err = FromGo(struct{}{})
	assert.Error(t, err)
}

func TestDriverValue(t *testing.T) {
	tests := []struct {
		in   IRValue
		want any
	}{
		{IRNull{}, nil},
		{IRString("day"), "day"},
		{IRInt(7), int64(7)},
		{IRBool(true), true},
	}
	for _, tc := range tests {
		got, err := DriverValue(tc.in)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}

	_, err := DriverValue(IRArray{})
	assert.Error(t, err)
	_, err = DriverValue(IRObject{})
	assert.Error(t, err)
}
