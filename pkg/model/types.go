package model

import "fmt"

type DeviceType int

const (
	DeviceTypeCombiBoiler DeviceType = 1 // not confirmed by the vendor
	DeviceTypeHeatingPump DeviceType = 2
)

func (t DeviceType) String() string {
	switch t {
	case DeviceTypeCombiBoiler:
		return "combi_boiler"
	case DeviceTypeHeatingPump:
		return "heating_pump"
	}
	return unknown(int(t))
}

type ConnectionStatus int

const (
	ConnectionStatusOnline      ConnectionStatus = 0
	ConnectionStatusWrongSecret ConnectionStatus = 7
	ConnectionStatusBusy        ConnectionStatus = 8
	ConnectionStatusOffline     ConnectionStatus = 50
)

func (s ConnectionStatus) String() string {
	switch s {
	case ConnectionStatusOnline:
		return "online"
	case ConnectionStatusWrongSecret:
		return "wrong_secret"
	case ConnectionStatusBusy:
		return "busy"
	case ConnectionStatusOffline:
		return "offline"
	}
	return unknown(int(s))
}

type ModuleType int

const (
	ModuleTypeSystem          ModuleType = 1
	ModuleTypeHeaterCircuit   ModuleType = 2
	ModuleTypeHotWaterCircuit ModuleType = 3
	ModuleTypeSolar           ModuleType = 4
	ModuleTypeTerminal        ModuleType = 5
	ModuleTypeGateway         ModuleType = 6
	ModuleTypeWE              ModuleType = 7
	ModuleTypeDevice          ModuleType = 9
	ModuleTypeGroundModule    ModuleType = 10
	ModuleTypeTest            ModuleType = 240
	ModuleTypeSensor          ModuleType = 241
	ModuleTypeExternal        ModuleType = 255
)

func (t ModuleType) String() string {
	switch t {
	case ModuleTypeSystem:
		return "system"
	case ModuleTypeHeaterCircuit:
		return "heater_circuit"
	case ModuleTypeHotWaterCircuit:
		return "hot_water_circuit"
	case ModuleTypeSolar:
		return "solar"
	case ModuleTypeTerminal:
		return "terminal"
	case ModuleTypeGateway:
		return "gateway"
	case ModuleTypeWE:
		return "we"
	case ModuleTypeDevice:
		return "device"
	case ModuleTypeGroundModule:
		return "ground_module"
	case ModuleTypeTest:
		return "test"
	case ModuleTypeSensor:
		return "sensor"
	case ModuleTypeExternal:
		return "external"
	}
	return unknown(int(t))
}

// DataType is the vendor data type of a parameter. Decimal is reported as -1
// and never collides with the other values.
type DataType int

const (
	DataTypeDecimal  DataType = -1
	DataTypeFunction DataType = 1
	DataTypeTime     DataType = 2
	DataTypeValue    DataType = 3
	DataTypeProgram  DataType = 6
)

func (t DataType) String() string {
	switch t {
	case DataTypeDecimal:
		return "decimal"
	case DataTypeFunction:
		return "function"
	case DataTypeTime:
		return "time"
	case DataTypeValue:
		return "value"
	case DataTypeProgram:
		return "program"
	}
	return unknown(int(t))
}

// StatisticType is the energy category of a statistic series.
type StatisticType int

const (
	StatisticTypeHeating  StatisticType = 1
	StatisticTypeHotWater StatisticType = 2
	StatisticTypeSummary  StatisticType = 3
	StatisticTypeDefrost  StatisticType = 4
	StatisticTypeCooling  StatisticType = 5
)

// StatisticTypes lists every category in the order they are fetched.
var StatisticTypes = []StatisticType{
	StatisticTypeHeating,
	StatisticTypeHotWater,
	StatisticTypeSummary,
	StatisticTypeDefrost,
	StatisticTypeCooling,
}

func (t StatisticType) String() string {
	switch t {
	case StatisticTypeHeating:
		return "heating"
	case StatisticTypeHotWater:
		return "hot_water"
	case StatisticTypeSummary:
		return "summary"
	case StatisticTypeDefrost:
		return "defrost"
	case StatisticTypeCooling:
		return "cooling"
	}
	return unknown(int(t))
}

// GraphType is the time granularity of a statistic series.
type GraphType int

const (
	GraphTypeDaily   GraphType = 0
	GraphTypeMonthly GraphType = 1
	GraphTypeYearly  GraphType = 2
)

func (t GraphType) String() string {
	switch t {
	case GraphTypeDaily:
		return "daily"
	case GraphTypeMonthly:
		return "monthly"
	case GraphTypeYearly:
		return "yearly"
	}
	return unknown(int(t))
}

func ParseGraphType(s string) (GraphType, error) {
	switch s {
	case "daily", "":
		return GraphTypeDaily, nil
	case "monthly":
		return GraphTypeMonthly, nil
	case "yearly":
		return GraphTypeYearly, nil
	}
	return GraphTypeDaily, fmt.Errorf("unknown graph type %q, use daily, monthly or yearly", s)
}

func unknown(i int) string {
	return fmt.Sprintf("unknown(%d)", i)
}
