package ingestion

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowJSONPreservesKeyOrder(t *testing.T) {
	var row Row
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":"1","alpha":2,"mid":null,"flag":true,"ratio":1.5}`), &row))

	assert.Equal(t, []string{"zeta", "alpha", "mid", "flag", "ratio"}, row.Keys())
	assert.Equal(t, ValueTypeString, row.Value("zeta").Type)
	assert.Equal(t, ValueTypeInteger, row.Value("alpha").Type)
	assert.True(t, row.Value("mid").IsMissing())
	assert.Equal(t, ValueTypeBoolean, row.Value("flag").Type)
	assert.Equal(t, ValueTypeFloat, row.Value("ratio").Type)

	out, err := json.Marshal(row)
	require.NoError(t, err)
	assert.Equal(t, `{"zeta":"1","alpha":2,"mid":null,"flag":true,"ratio":1.5}`, string(out))
}

func TestRowUnmarshalRejectsNonObject(t *testing.T) {
	var row Row
	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &row))
}

func TestValueMissingness(t *testing.T) {
	tests := []struct {
		name    string
		value   Value
		missing bool
	}{
		{"nil", ValueOf(nil), true},
		{"empty string", NewStringValue(""), true},
		{"whitespace", NewStringValue("   \t"), true},
		{"NaN", NewFloatValue(math.NaN()), true},
		{"zero", NewIntegerValue(0), false},
		{"false", NewBooleanValue(false), false},
		{"text", NewStringValue("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.missing, tt.value.IsMissing())
		})
	}
}

func TestValueRawIsJSONSafe(t *testing.T) {
	assert.Nil(t, NewFloatValue(math.Inf(1)).Raw())
	assert.Nil(t, NewFloatValue(math.NaN()).Raw())
	assert.Equal(t, 2.5, NewFloatValue(2.5).Raw())

	_, err := json.Marshal(NewFloatValue(math.NaN()))
	assert.NoError(t, err)
}

func TestRowHashAndEqualIgnoreKeyOrder(t *testing.T) {
	a := NewRow(2)
	a.Set("x", NewStringValue("1"))
	a.Set("y", NewIntegerValue(2))

	b := NewRow(2)
	b.Set("y", NewIntegerValue(2))
	b.Set("x", NewStringValue("1"))

	assert.Equal(t, a.Hash(), b.Hash())
	assert.True(t, a.Equal(b))

	// A string "2" and a number 2 are different cells
	c := NewRow(2)
	c.Set("x", NewStringValue("1"))
	c.Set("y", NewStringValue("2"))
	assert.False(t, a.Equal(c))
	assert.NotEqual(t, a.Hash(), c.Hash())
}

func TestRowFromMap(t *testing.T) {
	row := RowFromMap([]string{"b", "a"}, map[string]interface{}{"a": 1, "b": "x", "d": nil, "c": 2.5})
	assert.Equal(t, []string{"b", "a", "c", "d"}, row.Keys())
	assert.Equal(t, int64(1), *row.Value("a").IntegerVal)
	assert.True(t, row.Value("d").IsMissing())
}
