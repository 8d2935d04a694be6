package mqtt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
)

type Transport interface {
	Publish(topic string, payload []byte, retain bool) error
	Close() error
}

// Publisher writes snapshots as retained messages below a base topic.
type Publisher struct {
	transport Transport
	topic     string
}

func NewPublisher(transport Transport, topic string) *Publisher {
	return &Publisher{
		transport: transport,
		topic:     strings.TrimSuffix(topic, "/"),
	}
}

type deviceStatus struct {
	Name             string    `json:"name"`
	DeviceType       string    `json:"deviceType"`
	ConnectionStatus string    `json:"connectionStatus"`
	HasErrors        bool      `json:"hasErrors"`
	FetchedAt        time.Time `json:"fetchedAt"`
}

// PublishDevices sends the status, every parameter value and every attached
// statistic of each device. Errors are collected and publishing continues.
func (p *Publisher) PublishDevices(devices []*model.Device, fetchedAt time.Time) error {
	var errs []error
	for _, d := range devices {
		errs = append(errs, p.publishJSON(p.StatusTopic(d.ID), deviceStatus{
			Name:             d.Name,
			DeviceType:       d.DeviceType.String(),
			ConnectionStatus: d.ConnectionStatus.String(),
			HasErrors:        d.HasErrors,
			FetchedAt:        fetchedAt,
		}))

		for _, row := range d.ParameterValues() {
			topic := p.ValueTopic(d.ID, row.ModuleIndex, model.ModuleType(row.ModuleType), row.ParameterID)
			errs = append(errs, p.publishJSON(topic, row))
		}

		for _, category := range model.StatisticTypes {
			if s := d.Statistic(category); s != nil {
				errs = append(errs, p.publishJSON(p.StatisticTopic(d.ID, category), s))
			}
		}
	}
	return errors.Join(errs...)
}

func (p *Publisher) PublishAlarms(active []string) error {
	if active == nil {
		active = []string{}
	}
	return p.publishJSON(p.topic+"/alarms", active)
}

func (p *Publisher) Close() error {
	return p.transport.Close()
}

func (p *Publisher) StatusTopic(deviceID int) string {
	return fmt.Sprintf("%s/%d/status", p.topic, deviceID)
}

func (p *Publisher) ValueTopic(deviceID, moduleIndex int, moduleType model.ModuleType, parameterID string) string {
	return fmt.Sprintf("%s/%d/%d_%s/%s", p.topic, deviceID, moduleIndex, moduleType, segment(parameterID))
}

func (p *Publisher) StatisticTopic(deviceID int, category model.StatisticType) string {
	return p.topic + "/" + strconv.Itoa(deviceID) + "/statistics/" + category.String()
}

func (p *Publisher) publishJSON(topic string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if err := p.transport.Publish(topic, b, true); err != nil {
		return fmt.Errorf("error publishing %s: %w", topic, err)
	}
	return nil
}

var topicReplacer = strings.NewReplacer("/", "_", "+", "_", "#", "_")

// segment makes s safe to use as one topic level.
func segment(s string) string {
	return topicReplacer.Replace(s)
}
