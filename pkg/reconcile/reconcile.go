// Package reconcile builds the device tree from the structure payloads and
// matches values and statistics returned by the two portal channels onto it.
package reconcile

import (
	"encoding/json"
	"fmt"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/sirupsen/logrus"
)

// MatchReport counts what happened to the values of one DataAccess/Read response.
type MatchReport struct {
	Matched         int
	ModuleMisses    int
	ParameterMisses int
	Duplicates      int
}

func (r MatchReport) Misses() int {
	return r.ModuleMisses + r.ParameterMisses
}

func (r *MatchReport) Add(o MatchReport) {
	r.Matched += o.Matched
	r.ModuleMisses += o.ModuleMisses
	r.ParameterMisses += o.ParameterMisses
	r.Duplicates += o.Duplicates
}

type Reconciler struct {
	log logrus.FieldLogger
}

func New(log logrus.FieldLogger) *Reconciler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Reconciler{log: log}
}

// BuildDevices parses the device structure. Every module starts with an empty
// parameter collection. Only the first device of a given id is kept.
func (r *Reconciler) BuildDevices(raw json.RawMessage) ([]*model.Device, error) {
	parsed, err := model.ParseDevices(raw)
	if err != nil {
		return nil, fmt.Errorf("error parsing device structure: %w", err)
	}

	seen := make(map[int]struct{}, len(parsed))
	devices := make([]*model.Device, 0, len(parsed))
	for _, d := range parsed {
		if _, ok := seen[d.ID]; ok {
			r.log.WithField("device", d.ID).Warn("dropping duplicate device in structure")
			continue
		}
		seen[d.ID] = struct{}{}
		devices = append(devices, d)
	}
	return devices, nil
}

// PopulateParameters replaces the parameters of m with the parsed list.
func (r *Reconciler) PopulateParameters(m *model.Module, raw json.RawMessage) error {
	params, err := model.ParseParameters(raw)
	if err != nil {
		return fmt.Errorf("error parsing parameters of module %s: %w", m, err)
	}

	seen := make(map[string]struct{}, len(params))
	unique := make([]*model.Parameter, 0, len(params))
	for _, p := range params {
		if _, ok := seen[p.ParameterID]; ok {
			r.log.WithFields(logrus.Fields{
				"module":    m.String(),
				"parameter": p.ParameterID,
			}).Warn("dropping duplicate parameter")
			continue
		}
		seen[p.ParameterID] = struct{}{}
		unique = append(unique, p)
	}
	m.SetParameters(unique)
	return nil
}

// MatchValues attaches every value in raw to the parameter it references.
// Values for unknown modules or parameters are dropped and counted.
func (r *Reconciler) MatchValues(d *model.Device, raw json.RawMessage) (MatchReport, error) {
	report := MatchReport{}
	moduleValues, err := model.ParseModuleValues(raw)
	if err != nil {
		return report, fmt.Errorf("error parsing values of device %d: %w", d.ID, err)
	}

	// a parameter is written at most once per poll
	set := make(map[*model.Parameter]struct{})
	for _, mv := range moduleValues {
		module := d.FindModule(mv.ModuleIndex, mv.ModuleType)
		if module == nil {
			report.ModuleMisses += len(mv.Values)
			r.log.WithFields(logrus.Fields{
				"device": d.ID,
				"module": fmt.Sprintf("%d/%s", mv.ModuleIndex, mv.ModuleType),
				"values": len(mv.Values),
			}).Debug("values reference unknown module")
			continue
		}
		for _, v := range mv.Values {
			param := module.FindParameter(v.ParameterID)
			if param == nil {
				report.ParameterMisses++
				r.log.WithFields(logrus.Fields{
					"device":    d.ID,
					"module":    module.String(),
					"parameter": v.ParameterID,
				}).Debug("value references unknown parameter")
				continue
			}
			if _, ok := set[param]; ok {
				report.Duplicates++
				continue
			}
			set[param] = struct{}{}
			param.AttachValue(v)
			report.Matched++
		}
	}
	return report, nil
}

// ParseStatistic parses raw as a series of the given category without
// touching any device.
func (r *Reconciler) ParseStatistic(raw json.RawMessage, category model.StatisticType, granularity model.GraphType) (*model.Statistic, error) {
	s, err := model.ParseStatistic(raw, category, granularity)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s statistic: %w", category, err)
	}
	return s, nil
}

// AttachStatistic parses raw and stores it in the device field for category.
func (r *Reconciler) AttachStatistic(d *model.Device, raw json.RawMessage, category model.StatisticType, granularity model.GraphType) error {
	s, err := r.ParseStatistic(raw, category, granularity)
	if err != nil {
		return fmt.Errorf("device %d: %w", d.ID, err)
	}
	if !d.SetStatistic(s) {
		return fmt.Errorf("device %d: unknown statistic category %s", d.ID, category)
	}
	return nil
}
