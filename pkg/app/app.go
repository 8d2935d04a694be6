package app

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/nergy-se/wemportal/pkg/alarm"
	"github.com/nergy-se/wemportal/pkg/api/v1/config"
	"github.com/nergy-se/wemportal/pkg/client"
	"github.com/nergy-se/wemportal/pkg/metrics"
	"github.com/nergy-se/wemportal/pkg/mqtt"
	"github.com/nergy-se/wemportal/pkg/portal"
	"github.com/nergy-se/wemportal/pkg/server"
	"github.com/nergy-se/wemportal/pkg/state"
	"github.com/sirupsen/logrus"
)

type App struct {
	wg       *sync.WaitGroup
	config   *config.CliConfig
	interval time.Duration

	portal    *portal.Portal
	store     *state.Store
	alarms    *alarm.ActiveAlarms
	metrics   *metrics.Metrics
	publisher *mqtt.Publisher
}

func New(config *config.CliConfig) *App {
	return &App{
		wg:      &sync.WaitGroup{},
		config:  config,
		store:   &state.Store{},
		alarms:  &alarm.ActiveAlarms{},
		metrics: metrics.New(),
	}
}

func (a *App) Start(ctx context.Context) error {
	interval, err := a.config.Interval()
	if err != nil {
		return err
	}
	a.interval = interval
	granularity, err := a.config.GraphType()
	if err != nil {
		return err
	}

	api := client.NewAPIClient(a.config.Server, a.config.Username, a.config.Secret())
	web := client.NewWebClient(a.config.WebServerURL(), a.config.Username, a.config.Secret())
	a.portal = portal.New(api, web, portal.Options{
		Granularity:             granularity,
		Concurrency:             a.config.Concurrency,
		TolerateParameterErrors: a.config.TolerateParameterErrors,
		Observer:                a.metrics,
	})

	transport, err := a.mqttTransport(ctx)
	if err != nil {
		return err
	}
	if transport != nil {
		a.publisher = mqtt.NewPublisher(transport, a.config.MQTTTopic)
	}

	if a.config.Listen != "" {
		server.New(a.store, a.metrics.Handler(), a.config.HTTPLog).Start(ctx, a.wg, a.config.Listen)
	}

	a.wg.Add(1)
	go a.pollLoop(ctx)
	return nil
}

func (a *App) Wait() {
	a.wg.Wait()
}

// Snapshot returns the latest successful poll or nil.
func (a *App) Snapshot() *portal.Snapshot {
	return a.store.Get()
}

// mqttTransport prefers an external broker over the embedded one. Both
// empty disables publishing.
func (a *App) mqttTransport(ctx context.Context) (mqtt.Transport, error) {
	if a.config.MQTTBroker != "" {
		clientID := fmt.Sprintf("wemportal_%d", os.Getpid())
		c, err := mqtt.Connect(a.config.MQTTBroker, clientID, a.config.MQTTUsername, a.config.MQTTPassword)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	if a.config.MQTTListen != "" {
		b, err := mqtt.StartBroker(ctx, a.wg, a.config.MQTTListen)
		if err != nil {
			return nil, fmt.Errorf("error starting mqtt broker: %w", err)
		}
		return b, nil
	}
	return nil, nil
}

func (a *App) pollLoop(ctx context.Context) {
	defer a.wg.Done()
	a.poll(ctx)
	delay := nextDelay(time.Now(), a.interval)
	timer := time.NewTimer(delay)
	logrus.Debug("scheduling next poll in ", delay)
	for {
		select {
		case <-timer.C:
			a.poll(ctx)
			timer.Reset(nextDelay(time.Now(), a.interval))
		case <-ctx.Done():
			timer.Stop()
			a.shutdown()
			return
		}
	}
}

func (a *App) poll(ctx context.Context) {
	snapshot, err := a.portal.Fetch(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		logrus.Errorf("error polling wemportal: %s", err)
		a.store.SetError(err, time.Now())

		// start the next poll with a fresh login in case the session expired
		if err := a.portal.Close(ctx); err != nil {
			logrus.Errorf("error closing sessions: %s", err)
		}
		return
	}
	a.handle(snapshot)
}

func (a *App) handle(snapshot *portal.Snapshot) {
	a.store.Set(snapshot)
	a.metrics.UpdateValues(snapshot.Devices)

	raised, cleared := a.alarms.Replace(alarm.FromDevices(snapshot.Devices))
	for _, r := range raised {
		logrus.Warnf("alarm raised: %s", r)
	}
	for _, c := range cleared {
		logrus.Infof("alarm cleared: %s", c)
	}

	if a.publisher != nil {
		if err := a.publisher.PublishDevices(snapshot.Devices, snapshot.FetchedAt); err != nil {
			logrus.Error(err)
		}
		if err := a.publisher.PublishAlarms(a.alarms.List()); err != nil {
			logrus.Error(err)
		}
	}

	logrus.WithFields(logrus.Fields{
		"devices":         len(snapshot.Devices),
		"duration":        snapshot.Duration,
		"lookupMisses":    snapshot.Misses.Misses(),
		"statisticErrors": len(snapshot.StatisticErrors),
	}).Info("poll done")
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.portal.Close(ctx); err != nil {
		logrus.Errorf("error closing sessions: %s", err)
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logrus.Errorf("error closing mqtt: %s", err)
		}
	}
}
