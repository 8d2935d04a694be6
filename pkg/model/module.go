package model

import (
	"encoding/json"
	"fmt"
)

// Module is identified by (Index, Type) within its device.
type Module struct {
	Index           int          `json:"index"`
	CustomNumbering int          `json:"customNumbering"`
	Name            string       `json:"name"`
	Type            ModuleType   `json:"type"`
	Dynamisation    bool         `json:"dynamisation"`
	FWUVersion      string       `json:"fwuVersion"`
	Parameters      []*Parameter `json:"parameters"`
}

type wireModule struct {
	Index           *int   `json:"Index"`
	CustomNumbering int    `json:"CustomNumbering"`
	Name            string `json:"Name"`
	Type            *int   `json:"Type"`
	Dynamisation    bool   `json:"Dynamisation"`
	FWUVersion      string `json:"FWUVersion"`
}

func ParseModule(raw json.RawMessage) (*Module, error) {
	w := wireModule{}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed("module", err)
	}
	return w.module()
}

func (w wireModule) module() (*Module, error) {
	if w.Index == nil {
		return nil, missing(fmt.Sprintf("module %q", w.Name), "Index")
	}
	if w.Type == nil {
		return nil, missing(fmt.Sprintf("module %q", w.Name), "Type")
	}
	return &Module{
		Index:           *w.Index,
		CustomNumbering: w.CustomNumbering,
		Name:            w.Name,
		Type:            ModuleType(*w.Type),
		Dynamisation:    w.Dynamisation,
		FWUVersion:      w.FWUVersion,
		Parameters:      []*Parameter{},
	}, nil
}

// SetParameters replaces the parameter collection wholesale.
func (m *Module) SetParameters(params []*Parameter) {
	if params == nil {
		params = []*Parameter{}
	}
	m.Parameters = params
}

// FindParameter returns nil when the module has no parameter with that id.
func (m *Module) FindParameter(parameterID string) *Parameter {
	for _, p := range m.Parameters {
		if p.ParameterID == parameterID {
			return p
		}
	}
	return nil
}

func (m *Module) String() string {
	return fmt.Sprintf("%d/%s", m.Index, m.Type)
}
