package service

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"cpa-savings/domain"
	"cpa-savings/repository"
)

var (
	ErrQueueFull         = errors.New("lead queue is full")
	ErrDispatcherStopped = errors.New("lead dispatcher is stopped")
)

const (
	DefaultLeadQueueSize       = 64
	DefaultLeadWorkers         = 2
	DefaultLeadStatusTTL       = 24 * time.Hour
	DefaultLeadDeliveryTimeout = 15 * time.Second
)

type DispatcherOptions struct {
	QueueSize       int
	Workers         int
	StatusTTL       time.Duration
	DeliveryTimeout time.Duration
	// OnDelivered is called from a worker goroutine once a lead has been
	// delivered or has failed.
	OnDelivered func(domain.DeliveryReport)
}

// LeadDispatcher delivers leads in the background. Deliveries are detached
// from the request that submitted them: they are never cancelled by a later
// submission and never retried.
type LeadDispatcher struct {
	sink     LeadSink
	statuses repository.CacheRepository
	opts     DispatcherOptions
	queue    chan domain.Lead
	now      func() time.Time

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
}

func NewLeadDispatcher(
	sink LeadSink,
	statuses repository.CacheRepository,
	opts DispatcherOptions,
) *LeadDispatcher {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultLeadQueueSize
	}
	if opts.Workers <= 0 {
		opts.Workers = DefaultLeadWorkers
	}
	if opts.StatusTTL <= 0 {
		opts.StatusTTL = DefaultLeadStatusTTL
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultLeadDeliveryTimeout
	}

	d := &LeadDispatcher{
		sink:     sink,
		statuses: statuses,
		opts:     opts,
		queue:    make(chan domain.Lead, opts.QueueSize),
		now:      time.Now,
	}

	d.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go d.worker()
	}
	return d
}

// Enabled reports whether leads go anywhere.
func (d *LeadDispatcher) Enabled() bool {
	_, noop := d.sink.(NoopSink)
	return !noop
}

// Dispatch queues a lead without waiting for delivery. The returned lead
// carries the ID to pass to Status.
func (d *LeadDispatcher) Dispatch(
	ctx context.Context,
	identity domain.Identity,
	result domain.CalculationResult,
) (domain.Lead, error) {

	if !d.Enabled() {
		return domain.Lead{}, ErrSinkDisabled
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		return domain.Lead{}, ErrDispatcherStopped
	}

	lead := domain.Lead{
		ID:          uuid.NewString(),
		Identity:    identity,
		Result:      result,
		SubmittedAt: d.now().UTC(),
	}

	// Pending is recorded first so a fast worker cannot be overwritten.
	d.record(ctx, domain.DeliveryReport{
		LeadID:      lead.ID,
		Status:      domain.DeliveryPending,
		SubmittedAt: lead.SubmittedAt,
	})

	select {
	case d.queue <- lead:
		return lead, nil
	default:
		d.complete(ctx, lead, ErrQueueFull)
		return lead, ErrQueueFull
	}
}

func (d *LeadDispatcher) worker() {
	defer d.wg.Done()

	for lead := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.opts.DeliveryTimeout)
		err := d.sink.Deliver(ctx, lead)
		if err != nil {
			log.Printf("Warning: lead %s delivery failed: %v", lead.ID, err)
		} else {
			log.Printf("Lead %s delivered", lead.ID)
		}
		d.complete(ctx, lead, err)
		cancel()
	}
}

func (d *LeadDispatcher) complete(ctx context.Context, lead domain.Lead, err error) {
	completedAt := d.now().UTC()
	report := domain.DeliveryReport{
		LeadID:      lead.ID,
		Status:      domain.DeliveryDelivered,
		SubmittedAt: lead.SubmittedAt,
		CompletedAt: &completedAt,
	}
	if err != nil {
		report.Status = domain.DeliveryFailed
		report.Error = err.Error()
	}

	// The status write must not inherit an expired delivery deadline.
	d.record(context.WithoutCancel(ctx), report)

	if d.opts.OnDelivered != nil {
		d.opts.OnDelivered(report)
	}
}

func (d *LeadDispatcher) record(ctx context.Context, report domain.DeliveryReport) {
	if d.statuses == nil {
		return
	}
	data, err := json.Marshal(report)
	if err == nil {
		err = d.statuses.Set(ctx, statusKey(report.LeadID), string(data), d.opts.StatusTTL)
	}
	if err != nil {
		log.Printf("Warning: failed to record status of lead %s: %v", report.LeadID, err)
	}
}

// Status returns the latest delivery report for a lead.
func (d *LeadDispatcher) Status(ctx context.Context, id string) (domain.DeliveryReport, bool, error) {
	if d.statuses == nil {
		return domain.DeliveryReport{}, false, nil
	}

	raw, ok, err := d.statuses.Get(ctx, statusKey(id))
	if err != nil || !ok {
		return domain.DeliveryReport{}, false, err
	}

	var report domain.DeliveryReport
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return domain.DeliveryReport{}, false, err
	}
	return report, true, nil
}

// Stop refuses new leads, lets the workers drain the queue and waits for
// them until ctx expires.
func (d *LeadDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.stopped {
		d.stopped = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func statusKey(id string) string {
	return "lead:" + id
}
