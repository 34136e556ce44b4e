package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    IRValue
		expected string
	}{
		{"string", IRString("day"), `"day"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(60), "60"},
		{"negative int", IRInt(-107), "-107"},
		{"min int64", IRInt(-9223372036854775808), "-9223372036854775808"},
		{"bool", IRBool(false), "false"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"nested", IRObject{"z": IRObject{"b": IRInt(1), "a": IRInt(2)}, "a": IRInt(3)}, `{"a":3,"z":{"a":2,"b":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("a < b && c > d"))
	require.NoError(t, err)
	assert.Equal(t, `"a < b && c > d"`, string(result))
}

func TestMarshalCanonicalRejectsNull(t *testing.T) {
	_, err := MarshalCanonical(IRNull{})
	assert.Error(t, err)

	_, err = MarshalCanonical(nil)
	assert.Error(t, err)

	_, err = MarshalCanonical(IRObject{"client": IRNull{}})
	assert.Error(t, err)
}

func TestMarshalCanonicalNFC(t *testing.T) {
	decomposed := "e\u0301"
	composed := "\u00e9"

	a, err := MarshalCanonical(IRObject{decomposed: IRString(decomposed)})
	require.NoError(t, err)
	b, err := MarshalCanonical(IRObject{composed: IRString(composed)})
	require.NoError(t, err)
	assert.Equal(t, string(b), string(a))
}

func TestMarshalCanonicalEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `a\b`, `"a\\b"`},
		{"newline", "a\nb", `"a\nb"`},
		{"control", "\x01", `"\u0001"`},
		{"line separator kept literal", "a\u2028b", "\"a b\""},
		{"paragraph separator kept literal", "a\u2029b", "\"a b\""},
		{"escaped backslash before u2028 text", `\u2028`, `"\\u2028"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(IRString(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalDeterministic(t *testing.T) {
	build := func() IRObject {
		return IRObject{
			"scenario_name": IRString("leap"),
			"trace": IRArray{
				IRObject{"case": IRInt(0), "unit": IRString("day"), "client": IRInt(60), "server": IRInt(60)},
			},
		}
	}

	first, err := MarshalCanonical(build())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := MarshalCanonical(build())
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}
