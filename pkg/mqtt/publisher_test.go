package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	payload []byte
	retain  bool
}

type fakeTransport struct {
	mu       sync.Mutex
	messages map[string]message
	fail     string
	closed   bool
}

func (f *fakeTransport) Publish(topic string, payload []byte, retain bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if topic == f.fail {
		return errors.New("broker gone")
	}
	if f.messages == nil {
		f.messages = map[string]message{}
	}
	f.messages[topic] = message{payload: payload, retain: retain}
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

func testDevice() *model.Device {
	ww := 48.0
	return &model.Device{
		ID:               1,
		Name:             "WWP",
		DeviceType:       model.DeviceTypeHeatingPump,
		ConnectionStatus: model.ConnectionStatusOnline,
		Modules: []*model.Module{{
			Index: 2,
			Type:  model.ModuleTypeHotWaterCircuit,
			Parameters: []*model.Parameter{
				{ParameterID: "WW/Ist", Value: &model.Value{ParameterID: "WW/Ist", NumericValue: &ww, Unit: "°C"}},
				{ParameterID: "WW-Soll"},
			},
		}},
		HeatingStatistic: &model.Statistic{Category: model.StatisticTypeHeating, Points: []model.StatisticPoint{}},
	}
}

func TestPublishDevices(t *testing.T) {
	tr := &fakeTransport{}
	p := NewPublisher(tr, "wemportal/")
	fetchedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, p.PublishDevices([]*model.Device{testDevice()}, fetchedAt))

	topics := []string{}
	for topic, m := range tr.messages {
		topics = append(topics, topic)
		assert.True(t, m.retain)
	}
	assert.ElementsMatch(t, []string{
		"wemportal/1/status",
		"wemportal/1/2_hot_water_circuit/WW_Ist",
		"wemportal/1/statistics/heating",
	}, topics)

	row := model.ParameterValueRow{}
	require.NoError(t, json.Unmarshal(tr.messages["wemportal/1/2_hot_water_circuit/WW_Ist"].payload, &row))
	require.NotNil(t, row.ValueNumericValue)
	assert.Equal(t, 48.0, *row.ValueNumericValue)
	assert.Equal(t, "WW/Ist", row.ParameterID)

	assert.JSONEq(t, `{"name": "WWP", "deviceType": "heating_pump", "connectionStatus": "online", "hasErrors": false, "fetchedAt": "2024-01-01T12:00:00Z"}`,
		string(tr.messages["wemportal/1/status"].payload))
}

func TestPublishDevicesContinuesOnError(t *testing.T) {
	tr := &fakeTransport{fail: "wemportal/1/status"}
	p := NewPublisher(tr, "wemportal")

	err := p.PublishDevices([]*model.Device{testDevice()}, time.Now())
	assert.ErrorContains(t, err, "broker gone")
	assert.Contains(t, tr.messages, "wemportal/1/statistics/heating")
}

func TestPublishAlarms(t *testing.T) {
	tr := &fakeTransport{}
	p := NewPublisher(tr, "wemportal")

	require.NoError(t, p.PublishAlarms(nil))
	assert.Equal(t, "[]", string(tr.messages["wemportal/alarms"].payload))

	require.NoError(t, p.PublishAlarms([]string{"device 1 WWP: offline"}))
	assert.JSONEq(t, `["device 1 WWP: offline"]`, string(tr.messages["wemportal/alarms"].payload))

	require.NoError(t, p.Close())
	assert.True(t, tr.closed)
}

func TestSegment(t *testing.T) {
	assert.Equal(t, "a_b_c_d", segment("a/b+c#d"))
	assert.Equal(t, "plain", segment("plain"))
}
