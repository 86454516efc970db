package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/screwyprof/airdrop/pkg/clock"
	"github.com/screwyprof/airdrop/pkg/cosmosgrpc"
)

// JoinPolicy decides what a failed address means for the rest of the batch
type JoinPolicy int

const (
	// CollectAll runs every address to completion and reports failures per address
	CollectAll JoinPolicy = iota
	// FailFast cancels the batch on the first failure
	FailFast
)

// ParseJoinPolicy accepts "collect-all" or "fail-fast"
func ParseJoinPolicy(s string) (JoinPolicy, error) {
	switch s {
	case "collect-all", "":
		return CollectAll, nil
	case "fail-fast":
		return FailFast, nil
	default:
		return 0, fmt.Errorf("unknown join policy %q, want collect-all or fail-fast", s)
	}
}

func (p JoinPolicy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "collect-all"
}

// Option configures the Service
// ------------------------------------------------
type Option func(*Service)

// WithClock injects a custom Clock (e.g., for testing)
func WithClock(c Clock) Option {
	return func(s *Service) { s.clock = c }
}

// WithMaxBatchSize caps the number of allocations processed per batch; 0 disables the cap
func WithMaxBatchSize(n int) Option {
	return func(s *Service) { s.maxBatchSize = n }
}

// WithJoinPolicy sets how failures affect the batch
func WithJoinPolicy(p JoinPolicy) Option {
	return func(s *Service) { s.joinPolicy = p }
}

// WithCallTimeout bounds each remote query; 0 disables the timeout
func WithCallTimeout(d time.Duration) Option {
	return func(s *Service) { s.callTimeout = d }
}

// WithNormalizer rewrites every address before it is queried
func WithNormalizer(n Normalizer) Option {
	return func(s *Service) { s.normalizer = n }
}

// Service snapshots the on-chain state of airdrop allocations
// -----------------------------------------------------------
type Service struct {
	dial         DialFunc
	normalizer   Normalizer
	clock        Clock
	maxBatchSize int
	joinPolicy   JoinPolicy
	callTimeout  time.Duration
}

// NewService constructs a Service with required dependencies and options
// ---------------------------------------------------------------------
// By default, it uses a real clock, a batch cap of 5, collect-all joining,
// a 30s call timeout, and no address normalization.
func NewService(dial DialFunc, opts ...Option) *Service {
	s := &Service{
		dial:         dial,
		clock:        clock.SystemClock{},
		maxBatchSize: DefaultMaxBatchSize,
		joinPolicy:   CollectAll,
		callTimeout:  DefaultCallTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start snapshots allocations concurrently and returns the events channel and done channel.
//
// Every produced record is emitted as RecordProduced the moment it is ready.
// The batch ends with BatchDone, or with BatchFailed under FailFast.
//
// Example:
//
//	events, done := service.Start(ctx, allocations)
//	closer := snapshot.NewSubscriber(events,
//	  snapshot.OnRecordProduced(func(e snapshot.RecordProduced) { ... }),
//	)
//	<-done
//	closer()
//
// Cancelling ctx aborts in-flight queries; they surface as transport failures.
func (s *Service) Start(ctx context.Context, allocations []Allocation) (<-chan Event, <-chan struct{}) {
	events := make(chan Event, 10)
	done := make(chan struct{})
	go func() {
		defer close(events)
		defer close(done)
		s.run(ctx, allocations, events)
	}()
	return events, done
}

// Run is Start for callers that only need the final report
func (s *Service) Run(ctx context.Context, allocations []Allocation) (Report, error) {
	events, done := s.Start(ctx, allocations)

	var (
		report Report
		err    error
	)
	closer := NewSubscriber(events,
		OnBatchDone(func(e BatchDone) { report = e.Report }),
		OnBatchFailed(func(e BatchFailed) { err = e.Err }),
	)
	<-done
	closer()

	return report, err
}

func (s *Service) run(ctx context.Context, allocations []Allocation, events chan<- Event) {
	start := s.clock.Now()
	accepted := s.capBatch(allocations)

	events <- BatchStarted{
		StartedAt: start,
		Requested: len(allocations),
		Accepted:  len(accepted),
	}

	report, err := s.join(ctx, accepted, events)
	if err != nil {
		events <- BatchFailed{Err: err}
		return
	}

	report.Requested = len(allocations)
	report.Accepted = len(accepted)
	events <- BatchDone{
		Report:   report,
		Duration: s.clock.Now().Sub(start),
	}
}

func (s *Service) capBatch(allocations []Allocation) []Allocation {
	if s.maxBatchSize > 0 && len(allocations) > s.maxBatchSize {
		return allocations[:s.maxBatchSize]
	}
	return allocations
}

type outcome struct {
	record Record
	err    error
}

// join runs one task per allocation and assembles results in input order
func (s *Service) join(ctx context.Context, allocations []Allocation, events chan<- Event) (Report, error) {
	outcomes := make([]outcome, len(allocations))

	g, gctx := errgroup.WithContext(ctx)
	for i, alloc := range allocations {
		g.Go(func() error {
			record, err := s.Aggregate(gctx, alloc)
			outcomes[i] = outcome{record: record, err: err}
			if err != nil {
				if s.joinPolicy == FailFast {
					return err
				}
				events <- AddressFailed{Index: i, Address: alloc.Address, Err: err}
				return nil
			}
			events <- RecordProduced{Index: i, Record: record}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	report := Report{Records: make([]Record, 0, len(allocations))}
	for i, o := range outcomes {
		if o.err != nil {
			report.Failures = append(report.Failures, Failure{Index: i, Address: allocations[i].Address, Err: o.err})
			continue
		}
		report.Records = append(report.Records, o.record)
	}
	return report, nil
}

// Aggregate snapshots a single allocation. It is safe for concurrent use.
func (s *Service) Aggregate(ctx context.Context, alloc Allocation) (Record, error) {
	address := alloc.Address
	if s.normalizer != nil {
		normalized, err := s.normalizer.Normalize(address)
		if err != nil {
			return Record{}, newError(KindAddress, address, err)
		}
		address = normalized
	}

	client, err := s.dial(ctx)
	if err != nil {
		return Record{}, newError(KindTransport, address, err)
	}
	defer func() { _ = client.Close() }()

	sequence, err := s.sequence(ctx, client, address)
	if err != nil {
		return Record{}, err
	}

	staked, err := s.stakedAmount(ctx, client, address)
	if err != nil {
		return Record{}, err
	}

	return Record{
		Address:       address,
		Sequence:      sequence,
		AirdropAmount: alloc.Amount,
		StakedAmount:  staked,
	}, nil
}

func (s *Service) sequence(ctx context.Context, client Client, address string) (uint64, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	account, err := client.Account(callCtx, address)
	if err != nil {
		return 0, classify(address, err)
	}
	return account.Sequence, nil
}

func (s *Service) stakedAmount(ctx context.Context, client Client, address string) (Amount, error) {
	callCtx, cancel := s.callContext(ctx)
	defer cancel()

	delegations, err := client.DelegatorDelegations(callCtx, address)
	if err != nil {
		return Amount{}, classify(address, err)
	}

	staked, err := SumDelegations(delegations)
	if err != nil {
		return Amount{}, newError(KindParse, address, err)
	}
	return staked, nil
}

func (s *Service) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.callTimeout)
}

// SumDelegations adds up delegation balances; a missing balance counts as zero
func SumDelegations(delegations []cosmosgrpc.Delegation) (Amount, error) {
	var total Amount
	for _, d := range delegations {
		if d.Balance == nil {
			continue
		}
		amount, err := ParseAmount(d.Balance.Amount)
		if err != nil {
			return Amount{}, fmt.Errorf("delegation to %s: %w", d.Validator, err)
		}
		total, err = total.Add(amount)
		if err != nil {
			return Amount{}, fmt.Errorf("delegation to %s: %w", d.Validator, err)
		}
	}
	return total, nil
}

// classify maps a query error to a snapshot Kind
func classify(address string, err error) *Error {
	switch {
	case errors.Is(err, cosmosgrpc.ErrAccountNotFound):
		return newError(KindAccountNotFound, address, err)
	case errors.Is(err, cosmosgrpc.ErrDecode):
		return newError(KindDecode, address, err)
	case errors.Is(err, cosmosgrpc.ErrStatus):
		return newError(KindStatus, address, err)
	default:
		return newError(KindTransport, address, err)
	}
}
