// Package portal runs one poll across both portal channels and returns a
// reconciled snapshot of every device.
package portal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nergy-se/wemportal/pkg/model"
	"github.com/nergy-se/wemportal/pkg/reconcile"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type APIChannel interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Connected() bool
	DeviceStructure(ctx context.Context) (json.RawMessage, error)
	ModuleParameters(ctx context.Context, deviceID, moduleIndex int, moduleType model.ModuleType) (json.RawMessage, error)
	RefreshAndReadValues(ctx context.Context, query model.ParameterQuery) (json.RawMessage, error)
}

type WebChannel interface {
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Connected() bool
	StatisticStructure(ctx context.Context, deviceID int) ([]int64, error)
	Statistics(ctx context.Context, systemTableIDs []int64, category model.StatisticType, granularity model.GraphType, asOf time.Time) (json.RawMessage, error)
}

// Observer is told about every finished poll.
type Observer interface {
	FetchDone(duration time.Duration, devices int, err error)
	LookupMisses(report reconcile.MatchReport)
	StatisticFailed(category model.StatisticType)
}

type nopObserver struct{}

func (nopObserver) FetchDone(time.Duration, int, error) {}
func (nopObserver) LookupMisses(reconcile.MatchReport)  {}
func (nopObserver) StatisticFailed(model.StatisticType) {}

type Options struct {
	Granularity model.GraphType

	// Concurrency is the number of statistic requests in flight. Values below 2 fetch sequentially.
	Concurrency int

	// TolerateParameterErrors drops a device whose parameters can not be
	// fetched instead of failing the poll.
	TolerateParameterErrors bool

	Clock    func() time.Time
	Observer Observer
	Log      logrus.FieldLogger
}

// StatisticError is a statistic category that could not be attached to a device.
type StatisticError struct {
	DeviceID int
	Category model.StatisticType
	Err      error
}

func (e StatisticError) Error() string {
	return fmt.Sprintf("device %d %s statistic: %s", e.DeviceID, e.Category, e.Err)
}

func (e StatisticError) Unwrap() error {
	return e.Err
}

type Snapshot struct {
	Devices         []*model.Device
	FetchedAt       time.Time
	Duration        time.Duration
	Misses          reconcile.MatchReport
	StatisticErrors []StatisticError

	// SkippedDevices lists devices dropped because their parameters failed.
	SkippedDevices []int
}

// Device returns nil when the snapshot has no device with that id.
func (s *Snapshot) Device(id int) *model.Device {
	for _, d := range s.Devices {
		if d.ID == id {
			return d
		}
	}
	return nil
}

type Portal struct {
	api  APIChannel
	web  WebChannel
	opts Options
	rec  *reconcile.Reconciler
	log  logrus.FieldLogger
	mu   sync.Mutex
}

func New(api APIChannel, web WebChannel, opts Options) *Portal {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Observer == nil {
		opts.Observer = nopObserver{}
	}
	if opts.Log == nil {
		opts.Log = logrus.StandardLogger()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &Portal{
		api:  api,
		web:  web,
		opts: opts,
		rec:  reconcile.New(opts.Log),
		log:  opts.Log,
	}
}

// Fetch rebuilds every device from scratch. Nothing from an earlier poll is
// reused except the channel sessions. On error no devices are returned.
func (p *Portal) Fetch(ctx context.Context) (*Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	started := p.opts.Clock()
	snapshot, err := p.fetch(ctx)
	duration := p.opts.Clock().Sub(started)

	if err != nil {
		p.opts.Observer.FetchDone(duration, 0, err)
		return nil, err
	}
	snapshot.FetchedAt = started
	snapshot.Duration = duration
	p.opts.Observer.FetchDone(duration, len(snapshot.Devices), nil)
	p.opts.Observer.LookupMisses(snapshot.Misses)
	for _, e := range snapshot.StatisticErrors {
		p.opts.Observer.StatisticFailed(e.Category)
	}
	return snapshot, nil
}

func (p *Portal) fetch(ctx context.Context) (*Snapshot, error) {
	if err := p.login(ctx); err != nil {
		return nil, err
	}

	raw, err := p.api.DeviceStructure(ctx)
	if err != nil {
		return nil, fmt.Errorf("error fetching device structure: %w", err)
	}
	devices, err := p.rec.BuildDevices(raw)
	if err != nil {
		return nil, err
	}

	snapshot := &Snapshot{}
	devices, snapshot.SkippedDevices, err = p.discoverParameters(ctx, devices)
	if err != nil {
		return nil, err
	}

	for _, d := range devices {
		report, err := p.matchValues(ctx, d)
		if err != nil {
			return nil, err
		}
		snapshot.Misses.Add(report)
	}

	snapshot.StatisticErrors, err = p.attachStatistics(ctx, devices)
	if err != nil {
		return nil, err
	}
	snapshot.Devices = devices
	return snapshot, nil
}

// login opens the sessions that are not open yet.
func (p *Portal) login(ctx context.Context) error {
	if !p.api.Connected() {
		if err := p.api.Login(ctx); err != nil {
			return fmt.Errorf("error login to api: %w", err)
		}
	}
	if !p.web.Connected() {
		if err := p.web.Login(ctx); err != nil {
			return fmt.Errorf("error login to web: %w", err)
		}
	}
	return nil
}

func (p *Portal) discoverParameters(ctx context.Context, devices []*model.Device) ([]*model.Device, []int, error) {
	kept := make([]*model.Device, 0, len(devices))
	skipped := []int{}
	for _, d := range devices {
		err := p.populateDevice(ctx, d)
		if err == nil {
			kept = append(kept, d)
			continue
		}
		if !p.opts.TolerateParameterErrors || ctx.Err() != nil {
			return nil, nil, err
		}
		p.log.WithField("device", d.ID).Warnf("skipping device: %s", err)
		skipped = append(skipped, d.ID)
	}
	return kept, skipped, nil
}

func (p *Portal) populateDevice(ctx context.Context, d *model.Device) error {
	for _, m := range d.Modules {
		raw, err := p.api.ModuleParameters(ctx, d.ID, m.Index, m.Type)
		if err != nil {
			return fmt.Errorf("error fetching parameters of device %d module %s: %w", d.ID, m, err)
		}
		if err := p.rec.PopulateParameters(m, raw); err != nil {
			return fmt.Errorf("device %d: %w", d.ID, err)
		}
	}
	return nil
}

func (p *Portal) matchValues(ctx context.Context, d *model.Device) (reconcile.MatchReport, error) {
	query := d.ParameterQuery()
	if len(query.Modules) == 0 {
		p.log.WithField("device", d.ID).Debug("device has no parameters, skipping value read")
		return reconcile.MatchReport{}, nil
	}
	raw, err := p.api.RefreshAndReadValues(ctx, query)
	if err != nil {
		return reconcile.MatchReport{}, fmt.Errorf("error fetching values of device %d: %w", d.ID, err)
	}
	report, err := p.rec.MatchValues(d, raw)
	if err != nil {
		return report, err
	}
	if report.Misses() > 0 {
		p.log.WithFields(logrus.Fields{
			"device":          d.ID,
			"moduleMisses":    report.ModuleMisses,
			"parameterMisses": report.ParameterMisses,
		}).Info("values referenced unknown modules or parameters")
	}
	return report, nil
}

// attachStatistics fetches every category of every device. A failing category
// is recorded and does not stop the others. Results are attached only after
// all requests are done so a cancelled poll leaves no device half updated.
func (p *Portal) attachStatistics(ctx context.Context, devices []*model.Device) ([]StatisticError, error) {
	asOf := p.opts.Clock()
	tableIDs := make([][]int64, len(devices))
	structureErrs := make([]error, len(devices))

	g := &errgroup.Group{}
	g.SetLimit(p.opts.Concurrency)
	for i, d := range devices {
		i, d := i, d
		g.Go(func() error {
			ids, err := p.web.StatisticStructure(ctx, d.ID)
			if err != nil {
				structureErrs[i] = fmt.Errorf("error fetching statistic structure: %w", err)
				return nil
			}
			tableIDs[i] = ids
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([][]*model.Statistic, len(devices))
	errs := make([][]error, len(devices))
	for i := range devices {
		results[i] = make([]*model.Statistic, len(model.StatisticTypes))
		errs[i] = make([]error, len(model.StatisticTypes))
	}

	for i, d := range devices {
		for j, category := range model.StatisticTypes {
			if structureErrs[i] != nil {
				errs[i][j] = structureErrs[i]
				continue
			}
			i, j, d, category := i, j, d, category
			g.Go(func() error {
				raw, err := p.web.Statistics(ctx, tableIDs[i], category, p.opts.Granularity, asOf)
				if err != nil {
					errs[i][j] = err
					return nil
				}
				s, err := p.rec.ParseStatistic(raw, category, p.opts.Granularity)
				if err != nil {
					errs[i][j] = fmt.Errorf("device %d: %w", d.ID, err)
					return nil
				}
				results[i][j] = s
				return nil
			})
		}
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	statErrs := []StatisticError{}
	for i, d := range devices {
		for j, category := range model.StatisticTypes {
			if errs[i][j] != nil {
				p.log.WithFields(logrus.Fields{
					"device":   d.ID,
					"category": category.String(),
				}).Warnf("statistic not available: %s", errs[i][j])
				statErrs = append(statErrs, StatisticError{DeviceID: d.ID, Category: category, Err: errs[i][j]})
				continue
			}
			d.SetStatistic(results[i][j])
		}
	}
	return statErrs, nil
}

// Close logs out of both channels.
func (p *Portal) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return errors.Join(p.api.Logout(ctx), p.web.Logout(ctx))
}
