package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseParameter(t *testing.T) {
	p, err := ParseParameter(json.RawMessage(`{
  "ParameterID": "Aussentemperatur",
  "Name": "Outdoor temperature",
  "DataType": 3,
  "MinValue": -40,
  "MaxValue": 60,
  "DefaultValue": null,
  "IsReadable": true,
  "IsWriteable": false,
  "EnumValues": [{"Value": 0, "Name": "Off"}, {"Value": 1, "Name": "On"}]
}`))
	require.NoError(t, err)

	assert.Equal(t, "Aussentemperatur", p.ParameterID)
	assert.Equal(t, DataTypeValue, p.DataType)
	require.NotNil(t, p.MinValue)
	assert.Equal(t, -40.0, *p.MinValue)
	require.NotNil(t, p.MaxValue)
	assert.Equal(t, 60.0, *p.MaxValue)
	assert.Nil(t, p.DefaultValue)
	assert.True(t, p.IsReadable)
	assert.False(t, p.IsWriteable)
	assert.Equal(t, []EnumOption{{Value: 0, Name: "Off"}, {Value: 1, Name: "On"}}, p.EnumValues)
	assert.Nil(t, p.Value)
}

func TestParseParameterEnumValuesNormalized(t *testing.T) {
	var tests = []struct {
		name string
		raw  string
	}{
		{
			name: "null enum values",
			raw:  `{"ParameterID": "P1", "Name": "p", "DataType": -1, "IsReadable": true, "IsWriteable": true, "EnumValues": null}`,
		},
		{
			name: "absent enum values",
			raw:  `{"ParameterID": "P1", "Name": "p", "DataType": -1, "IsReadable": true, "IsWriteable": true}`,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseParameter(json.RawMessage(tt.raw))
			require.NoError(t, err)
			assert.NotNil(t, p.EnumValues)
			assert.Len(t, p.EnumValues, 0)
			assert.Equal(t, DataTypeDecimal, p.DataType)
			assert.Nil(t, p.MinValue)
			assert.Nil(t, p.MaxValue)
		})
	}
}

func TestParseParameterMalformed(t *testing.T) {
	var tests = []struct {
		name string
		raw  string
	}{
		{name: "missing id", raw: `{"Name": "p", "DataType": 3, "IsReadable": true, "IsWriteable": true}`},
		{name: "missing name", raw: `{"ParameterID": "P1", "DataType": 3, "IsReadable": true, "IsWriteable": true}`},
		{name: "missing data type", raw: `{"ParameterID": "P1", "Name": "p", "IsReadable": true, "IsWriteable": true}`},
		{name: "missing readable", raw: `{"ParameterID": "P1", "Name": "p", "DataType": 3, "IsWriteable": true}`},
		{name: "missing writeable", raw: `{"ParameterID": "P1", "Name": "p", "DataType": 3, "IsReadable": true}`},
		{name: "data type wrong shape", raw: `{"ParameterID": "P1", "Name": "p", "DataType": "value", "IsReadable": true, "IsWriteable": true}`},
		{name: "readable wrong shape", raw: `{"ParameterID": "P1", "Name": "p", "DataType": 3, "IsReadable": "yes", "IsWriteable": true}`},
		{name: "not an object", raw: `[]`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseParameter(json.RawMessage(tt.raw))
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.Nil(t, p)
		})
	}
}

func TestParseParametersFailsOnOneBadEntry(t *testing.T) {
	_, err := ParseParameters(json.RawMessage(`[
  {"ParameterID": "P1", "Name": "a", "DataType": 3, "IsReadable": true, "IsWriteable": false},
  {"ParameterID": "P2", "Name": "b", "IsReadable": true, "IsWriteable": false}
]`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
	assert.Contains(t, err.Error(), "P2")
}

func TestAttachValueDoesNotValidate(t *testing.T) {
	max := 10.0
	p := &Parameter{ParameterID: "P1", DataType: DataTypeFunction, MaxValue: &max}
	n := 99.0
	v := &Value{ParameterID: "P1", NumericValue: &n}

	p.AttachValue(v)

	assert.Same(t, v, p.Value)
}
