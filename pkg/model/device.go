package model

import (
	"encoding/json"
	"time"
)

type Device struct {
	ID               int              `json:"id"`
	Name             string           `json:"name"`
	DeviceType       DeviceType       `json:"deviceType"`
	ConnectionStatus ConnectionStatus `json:"connectionStatus"`
	HasErrors        bool             `json:"hasErrors"`
	Modules          []*Module        `json:"modules"`

	HeatingStatistic  *Statistic `json:"heatingStatistic,omitempty"`
	HotWaterStatistic *Statistic `json:"hotWaterStatistic,omitempty"`
	SummaryStatistic  *Statistic `json:"summaryStatistic,omitempty"`
	DefrostStatistic  *Statistic `json:"defrostStatistic,omitempty"`
	CoolingStatistic  *Statistic `json:"coolingStatistic,omitempty"`
}

type wireDevice struct {
	ID               *int              `json:"ID"`
	Name             string            `json:"Name"`
	DeviceType       int               `json:"DeviceType"`
	ConnectionStatus int               `json:"ConnectionStatus"`
	HasErrors        bool              `json:"HasErrors"`
	Modules          []json.RawMessage `json:"Modules"`
}

func ParseDevice(raw json.RawMessage) (*Device, error) {
	w := wireDevice{}
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, malformed("device", err)
	}
	return w.device()
}

// ParseDevices parses the Devices list of a Device/Read response. Modules are
// built with empty parameter collections.
func ParseDevices(raw json.RawMessage) ([]*Device, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, malformed("device list", err)
	}
	devices := make([]*Device, 0, len(list))
	for _, r := range list {
		d, err := ParseDevice(r)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, nil
}

func (w wireDevice) device() (*Device, error) {
	if w.ID == nil {
		return nil, missing("device "+w.Name, "ID")
	}
	if w.Modules == nil {
		return nil, missing("device "+w.Name, "Modules")
	}
	d := &Device{
		ID:               *w.ID,
		Name:             w.Name,
		DeviceType:       DeviceType(w.DeviceType),
		ConnectionStatus: ConnectionStatus(w.ConnectionStatus),
		HasErrors:        w.HasErrors,
		Modules:          make([]*Module, 0, len(w.Modules)),
	}
	for _, rm := range w.Modules {
		m, err := ParseModule(rm)
		if err != nil {
			return nil, err
		}
		d.Modules = append(d.Modules, m)
	}
	return d, nil
}

// FindModule returns nil when the device has no module with that index and type.
func (d *Device) FindModule(index int, moduleType ModuleType) *Module {
	for _, m := range d.Modules {
		if m.Index == index && m.Type == moduleType {
			return m
		}
	}
	return nil
}

func (d *Device) Statistic(category StatisticType) *Statistic {
	switch category {
	case StatisticTypeHeating:
		return d.HeatingStatistic
	case StatisticTypeHotWater:
		return d.HotWaterStatistic
	case StatisticTypeSummary:
		return d.SummaryStatistic
	case StatisticTypeDefrost:
		return d.DefrostStatistic
	case StatisticTypeCooling:
		return d.CoolingStatistic
	}
	return nil
}

// SetStatistic stores s in the field matching s.Category. Unknown categories are ignored.
func (d *Device) SetStatistic(s *Statistic) bool {
	switch s.Category {
	case StatisticTypeHeating:
		d.HeatingStatistic = s
	case StatisticTypeHotWater:
		d.HotWaterStatistic = s
	case StatisticTypeSummary:
		d.SummaryStatistic = s
	case StatisticTypeDefrost:
		d.DefrostStatistic = s
	case StatisticTypeCooling:
		d.CoolingStatistic = s
	default:
		return false
	}
	return true
}

type ParameterQuery struct {
	DeviceID int           `json:"DeviceID"`
	Modules  []ModuleQuery `json:"Modules"`
}

type ModuleQuery struct {
	ModuleIndex int                  `json:"ModuleIndex"`
	ModuleType  int                  `json:"ModuleType"`
	Parameters  []ParameterQueryItem `json:"Parameters"`
}

type ParameterQueryItem struct {
	ParameterID string `json:"ParameterID"`
}

// ParameterQuery builds the DataAccess request for every module that has parameters.
func (d *Device) ParameterQuery() ParameterQuery {
	q := ParameterQuery{
		DeviceID: d.ID,
		Modules:  []ModuleQuery{},
	}
	for _, m := range d.Modules {
		if len(m.Parameters) == 0 {
			continue
		}
		mq := ModuleQuery{
			ModuleIndex: m.Index,
			ModuleType:  int(m.Type),
			Parameters:  make([]ParameterQueryItem, 0, len(m.Parameters)),
		}
		for _, p := range m.Parameters {
			mq.Parameters = append(mq.Parameters, ParameterQueryItem{ParameterID: p.ParameterID})
		}
		q.Modules = append(q.Modules, mq)
	}
	return q
}

// ParameterValueRow is one flattened (module, parameter, value) triple.
type ParameterValueRow struct {
	DeviceID          int       `json:"DeviceId"`
	DeviceName        string    `json:"DeviceName"`
	DeviceType        int       `json:"DeviceType"`
	ModuleIndex       int       `json:"ModuleIndex"`
	ModuleName        string    `json:"ModuleName"`
	ModuleType        int       `json:"ModuleType"`
	ParameterName     string    `json:"ParameterName"`
	ParameterID       string    `json:"ParameterId"`
	ParameterDataType int       `json:"ParameterDataType"`
	ParameterMaxValue *float64  `json:"ParameterMaxValue"`
	ParameterMinValue *float64  `json:"ParameterMinValue"`
	ValueStringValue  string    `json:"ValueStringValue"`
	ValueNumericValue *float64  `json:"ValueNumericValue"`
	ValueTime         time.Time `json:"ValueTime"`
	ValueUnit         string    `json:"ValueUnit"`
}

// ParameterValues returns one row per parameter holding a value. Parameters
// without a value are left out.
func (d *Device) ParameterValues() []ParameterValueRow {
	rows := []ParameterValueRow{}
	for _, m := range d.Modules {
		for _, p := range m.Parameters {
			if p.Value == nil {
				continue
			}
			rows = append(rows, ParameterValueRow{
				DeviceID:          d.ID,
				DeviceName:        d.Name,
				DeviceType:        int(d.DeviceType),
				ModuleIndex:       m.Index,
				ModuleName:        m.Name,
				ModuleType:        int(m.Type),
				ParameterName:     p.Name,
				ParameterID:       p.ParameterID,
				ParameterDataType: int(p.DataType),
				ParameterMaxValue: p.MaxValue,
				ParameterMinValue: p.MinValue,
				ValueStringValue:  p.Value.StringValue,
				ValueNumericValue: p.Value.NumericValue,
				ValueTime:         p.Value.Time,
				ValueUnit:         p.Value.Unit,
			})
		}
	}
	return rows
}
