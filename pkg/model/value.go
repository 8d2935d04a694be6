package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Value is a single reading for a parameter as returned by DataAccess/Read.
// NumericValue is nil when the portal sends null, text-only readings like
// "Aus" do that.
type Value struct {
	Unit         string    `json:"unit"`
	Time         time.Time `json:"time"`
	NumericValue *float64  `json:"numericValue"`
	StringValue  string    `json:"stringValue"`
	Dynamisation bool      `json:"dynamisation"`
	ParameterID  string    `json:"parameterId"`
}

// ModuleValues groups the values the vendor reported for one module.
type ModuleValues struct {
	ModuleIndex int
	ModuleType  ModuleType
	Values      []*Value
}

type wireValue struct {
	Unit         string        `json:"Unit"`
	Timestamp    *epochSeconds `json:"Timestamp"`
	NumericValue *float64      `json:"NumericValue"`
	StringValue  string        `json:"StringValue"`
	Dynamisation bool          `json:"Dynamisation"`
	ParameterID  *string       `json:"ParameterID"`
}

type wireModuleValues struct {
	ModuleIndex *int              `json:"ModuleIndex"`
	ModuleType  *int              `json:"ModuleType"`
	Values      []json.RawMessage `json:"Values"`
}

// epochSeconds accepts both 1700000000 and "1700000000".
type epochSeconds int64

func (e *epochSeconds) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return fmt.Errorf("invalid epoch timestamp %s", string(b))
	}
	*e = epochSeconds(f)
	return nil
}

func ParseValue(raw json.RawMessage) (*Value, error) {
	w := wireValue{}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed("value", err)
	}
	if w.ParameterID == nil {
		return nil, missing("value", "ParameterID")
	}
	if w.Timestamp == nil {
		return nil, missing("value "+*w.ParameterID, "Timestamp")
	}

	return &Value{
		Unit:         w.Unit,
		Time:         time.Unix(int64(*w.Timestamp), 0),
		NumericValue: w.NumericValue,
		StringValue:  w.StringValue,
		Dynamisation: w.Dynamisation,
		ParameterID:  *w.ParameterID,
	}, nil
}

// ParseModuleValues parses the Modules list of a DataAccess/Read response.
func ParseModuleValues(raw json.RawMessage) ([]ModuleValues, error) {
	var list []wireModuleValues
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, malformed("module values", err)
	}

	result := make([]ModuleValues, 0, len(list))
	for _, w := range list {
		if w.ModuleIndex == nil {
			return nil, missing("module values", "ModuleIndex")
		}
		if w.ModuleType == nil {
			return nil, missing("module values", "ModuleType")
		}
		mv := ModuleValues{
			ModuleIndex: *w.ModuleIndex,
			ModuleType:  ModuleType(*w.ModuleType),
			Values:      make([]*Value, 0, len(w.Values)),
		}
		for _, rv := range w.Values {
			v, err := ParseValue(rv)
			if err != nil {
				return nil, err
			}
			mv.Values = append(mv.Values, v)
		}
		result = append(result, mv)
	}
	return result, nil
}
