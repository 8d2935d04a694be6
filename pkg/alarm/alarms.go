package alarm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nergy-se/wemportal/pkg/model"
)

type ActiveAlarms struct {
	activeAlarms []string
	sync.RWMutex
}

// Replace sets the active alarms to current and reports what changed since the last call.
func (a *ActiveAlarms) Replace(current []string) (raised, cleared []string) {
	a.Lock()
	defer a.Unlock()

	next := make(map[string]struct{}, len(current))
	for _, c := range current {
		next[c] = struct{}{}
	}
	prev := make(map[string]struct{}, len(a.activeAlarms))
	for _, p := range a.activeAlarms {
		prev[p] = struct{}{}
		if _, ok := next[p]; !ok {
			cleared = append(cleared, p)
		}
	}
	for c := range next {
		if _, ok := prev[c]; !ok {
			raised = append(raised, c)
		}
	}

	a.activeAlarms = a.activeAlarms[:0]
	for c := range next {
		a.activeAlarms = append(a.activeAlarms, c)
	}
	sort.Strings(a.activeAlarms)
	sort.Strings(raised)
	sort.Strings(cleared)
	return raised, cleared
}

func (a *ActiveAlarms) List() []string {
	a.RLock()
	defer a.RUnlock()
	list := make([]string, len(a.activeAlarms))
	copy(list, a.activeAlarms)
	return list
}

// FromDevices returns one alarm per device reporting errors and one per
// device that is not online.
func FromDevices(devices []*model.Device) []string {
	alarms := []string{}
	for _, d := range devices {
		if d.HasErrors {
			alarms = append(alarms, fmt.Sprintf("device %d %s: has errors", d.ID, d.Name))
		}
		if d.ConnectionStatus != model.ConnectionStatusOnline {
			alarms = append(alarms, fmt.Sprintf("device %d %s: %s", d.ID, d.Name, d.ConnectionStatus))
		}
	}
	return alarms
}
