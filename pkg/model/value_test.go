package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueTimestamp(t *testing.T) {
	var tests = []struct {
		name string
		raw  string
	}{
		{
			name: "numeric timestamp",
			raw:  `{"Unit": "°C", "Timestamp": 1700000000, "NumericValue": 21.5, "StringValue": "21,5", "Dynamisation": false, "ParameterID": "P1"}`,
		},
		{
			name: "string timestamp",
			raw:  `{"Unit": "°C", "Timestamp": "1700000000", "NumericValue": 21.5, "StringValue": "21,5", "Dynamisation": false, "ParameterID": "P1"}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, "°C", v.Unit)
			require.NotNil(t, v.NumericValue)
			assert.Equal(t, 21.5, *v.NumericValue)
			assert.Equal(t, "21,5", v.StringValue)
			assert.Equal(t, "P1", v.ParameterID)
			assert.True(t, v.Time.Equal(time.Unix(1700000000, 0)))
			assert.Equal(t, time.Local, v.Time.Location())
		})
	}
}

func TestParseValueNullNumber(t *testing.T) {
	v, err := ParseValue(json.RawMessage(`{"Unit": "", "Timestamp": 1700000000, "NumericValue": null, "StringValue": "Aus", "ParameterID": "Betrieb"}`))
	require.NoError(t, err)
	assert.Nil(t, v.NumericValue)
	assert.Equal(t, "Aus", v.StringValue)

	v, err = ParseValue(json.RawMessage(`{"Timestamp": 1700000000, "ParameterID": "Betrieb"}`))
	require.NoError(t, err)
	assert.Nil(t, v.NumericValue)

	v, err = ParseValue(json.RawMessage(`{"Timestamp": 1700000000, "NumericValue": 0, "ParameterID": "P1"}`))
	require.NoError(t, err)
	require.NotNil(t, v.NumericValue)
	assert.Equal(t, 0.0, *v.NumericValue)
}

func TestParseValueMalformed(t *testing.T) {
	_, err := ParseValue(json.RawMessage(`{"Timestamp": 1700000000}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseValue(json.RawMessage(`{"ParameterID": "P1"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)

	_, err = ParseValue(json.RawMessage(`{"ParameterID": "P1", "Timestamp": "yesterday"}`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestParseModuleValues(t *testing.T) {
	mv, err := ParseModuleValues(json.RawMessage(`[
  {"ModuleIndex": 2, "ModuleType": 3, "Values": [
    {"Unit": "°C", "Timestamp": 1700000000, "NumericValue": 48, "StringValue": "48", "Dynamisation": true, "ParameterID": "WW"}
  ]},
  {"ModuleIndex": 0, "ModuleType": 1, "Values": []}
]`))
	require.NoError(t, err)
	require.Len(t, mv, 2)
	assert.Equal(t, 2, mv[0].ModuleIndex)
	assert.Equal(t, ModuleTypeHotWaterCircuit, mv[0].ModuleType)
	require.Len(t, mv[0].Values, 1)
	assert.True(t, mv[0].Values[0].Dynamisation)
	assert.Len(t, mv[1].Values, 0)

	_, err = ParseModuleValues(json.RawMessage(`[{"ModuleType": 3, "Values": []}]`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}
