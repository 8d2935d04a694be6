package model

import (
	"encoding/json"
)

type EnumOption struct {
	Value int    `json:"value"`
	Name  string `json:"name"`
}

// Parameter is one readable or writeable setting of a module. Value stays nil
// until a reading for ParameterID has been matched during a poll.
type Parameter struct {
	ParameterID  string       `json:"parameterId"`
	Name         string       `json:"name"`
	DataType     DataType     `json:"dataType"`
	MinValue     *float64     `json:"minValue,omitempty"`
	MaxValue     *float64     `json:"maxValue,omitempty"`
	DefaultValue *float64     `json:"defaultValue,omitempty"`
	IsReadable   bool         `json:"isReadable"`
	IsWriteable  bool         `json:"isWriteable"`
	EnumValues   []EnumOption `json:"enumValues"`
	Value        *Value       `json:"value,omitempty"`
}

type wireEnumOption struct {
	Value *int    `json:"Value"`
	Name  *string `json:"Name"`
}

type wireParameter struct {
	ParameterID  *string          `json:"ParameterID"`
	Name         *string          `json:"Name"`
	DataType     *int             `json:"DataType"`
	MinValue     *float64         `json:"MinValue"`
	MaxValue     *float64         `json:"MaxValue"`
	DefaultValue *float64         `json:"DefaultValue"`
	IsReadable   *bool            `json:"IsReadable"`
	IsWriteable  *bool            `json:"IsWriteable"`
	EnumValues   []wireEnumOption `json:"EnumValues"`
}

func ParseParameter(raw json.RawMessage) (*Parameter, error) {
	w := wireParameter{}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed("parameter", err)
	}
	return w.parameter()
}

// ParseParameters parses the Parameters list of an EventType/Read response.
func ParseParameters(raw json.RawMessage) ([]*Parameter, error) {
	var list []wireParameter
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, malformed("parameter list", err)
	}
	result := make([]*Parameter, 0, len(list))
	for _, w := range list {
		p, err := w.parameter()
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, nil
}

func (w wireParameter) parameter() (*Parameter, error) {
	if w.ParameterID == nil {
		return nil, missing("parameter", "ParameterID")
	}
	what := "parameter " + *w.ParameterID
	switch {
	case w.Name == nil:
		return nil, missing(what, "Name")
	case w.DataType == nil:
		return nil, missing(what, "DataType")
	case w.IsReadable == nil:
		return nil, missing(what, "IsReadable")
	case w.IsWriteable == nil:
		return nil, missing(what, "IsWriteable")
	}

	// null and absent EnumValues both end up as an empty list.
	enums := make([]EnumOption, 0, len(w.EnumValues))
	for _, e := range w.EnumValues {
		if e.Value == nil || e.Name == nil {
			return nil, missing(what, "EnumValues.Value/Name")
		}
		enums = append(enums, EnumOption{Value: *e.Value, Name: *e.Name})
	}

	return &Parameter{
		ParameterID:  *w.ParameterID,
		Name:         *w.Name,
		DataType:     DataType(*w.DataType),
		MinValue:     w.MinValue,
		MaxValue:     w.MaxValue,
		DefaultValue: w.DefaultValue,
		IsReadable:   *w.IsReadable,
		IsWriteable:  *w.IsWriteable,
		EnumValues:   enums,
	}, nil
}

// AttachValue stores v on the parameter. The value is not checked against
// bounds or data type; the portal does not do that either.
func (p *Parameter) AttachValue(v *Value) {
	p.Value = v
}
