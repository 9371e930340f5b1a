package services

import (
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"parkdesk/billing"
	"parkdesk/database"
	"parkdesk/metrics"
)

// Recorder receives operational counters. *metrics.Metrics implements it.
type Recorder interface {
	TimerStarted()
	SessionSettled(source string)
	OrphansSwept(n int)
	SetActiveTimers(n int)
}

type noopRecorder struct{}

func (noopRecorder) TimerStarted()         {}
func (noopRecorder) SessionSettled(string) {}
func (noopRecorder) OrphansSwept(int)      {}
func (noopRecorder) SetActiveTimers(int)   {}

type Options struct {
	Store   *database.Store
	Clock   clockwork.Clock
	Log     *logrus.Logger
	Metrics *metrics.Metrics

	DefaultHourlyRate float64
	NightRate         float64
	PageSize          int
	// Location is the calendar for zone-less dates and month boundaries.
	Location *time.Location
}

// Service implements the parking operations on top of the store and the billing engine.
type Service struct {
	store    *database.Store
	ledger   *billing.Ledger
	renewer  *billing.Renewer
	clock    clockwork.Clock
	log      *logrus.Logger
	recorder Recorder

	defaultHourlyRate float64
	nightRate         float64
	pageSize          int
	loc               *time.Location
}

func New(opts Options) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Log == nil {
		opts.Log = logrus.New()
	}
	if opts.DefaultHourlyRate <= 0 {
		opts.DefaultHourlyRate = billing.DefaultHourlyRate
	}
	if opts.NightRate <= 0 {
		opts.NightRate = billing.DefaultNightRate
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 20
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}

	var (
		observer        billing.Observer
		renewalObserver billing.RenewalObserver
		recorder        Recorder = noopRecorder{}
	)
	if opts.Metrics != nil {
		observer = opts.Metrics
		renewalObserver = opts.Metrics
		recorder = opts.Metrics
	}

	return &Service{
		store:             opts.Store,
		ledger:            billing.NewLedger(opts.Store, opts.Clock, opts.Log, observer),
		renewer:           billing.NewRenewer(opts.Store, opts.Clock, opts.Location, opts.Log, renewalObserver),
		clock:             opts.Clock,
		log:               opts.Log,
		recorder:          recorder,
		defaultHourlyRate: opts.DefaultHourlyRate,
		nightRate:         opts.NightRate,
		pageSize:          opts.PageSize,
		loc:               opts.Location,
	}
}

// Location is the calendar zone-less dates are read in.
func (s *Service) Location() *time.Location {
	return s.loc
}

func (s *Service) now() time.Time {
	return s.clock.Now().In(s.loc)
}

// listQuery fills in the page size and the current time.
func (s *Service) listQuery(q database.ListQuery) database.ListQuery {
	if q.PageSize <= 0 {
		q.PageSize = s.pageSize
	}
	if q.Now.IsZero() {
		q.Now = s.clock.Now()
	}
	return q
}

// NormalizeVehicleNumber trims and upper-cases a plate so that "kbl 123" and "KBL 123 " match.
func NormalizeVehicleNumber(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}

func requireVehicleNumber(s string) (string, error) {
	n := NormalizeVehicleNumber(s)
	if n == "" {
		return "", billing.Validation("vehicle number is required")
	}
	return n, nil
}
