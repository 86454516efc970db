package snapshot

// Subscriber handles event subscriptions.
type Subscriber struct {
	done                  chan struct{}
	batchStartedHandler   func(BatchStarted)
	recordProducedHandler func(RecordProduced)
	addressFailedHandler  func(AddressFailed)
	batchDoneHandler      func(BatchDone)
	batchFailedHandler    func(BatchFailed)
}

// OnBatchStarted sets the handler for BatchStarted events
func OnBatchStarted(fn func(BatchStarted)) func(*Subscriber) {
	return func(s *Subscriber) { s.batchStartedHandler = fn }
}

// OnRecordProduced sets the handler for RecordProduced events
func OnRecordProduced(fn func(RecordProduced)) func(*Subscriber) {
	return func(s *Subscriber) { s.recordProducedHandler = fn }
}

// OnAddressFailed sets the handler for AddressFailed events
func OnAddressFailed(fn func(AddressFailed)) func(*Subscriber) {
	return func(s *Subscriber) { s.addressFailedHandler = fn }
}

// OnBatchDone sets the handler for BatchDone events
func OnBatchDone(fn func(BatchDone)) func(*Subscriber) {
	return func(s *Subscriber) { s.batchDoneHandler = fn }
}

// OnBatchFailed sets the handler for BatchFailed events
func OnBatchFailed(fn func(BatchFailed)) func(*Subscriber) {
	return func(s *Subscriber) { s.batchFailedHandler = fn }
}

// NewSubscriber creates a Subscriber with the given options and starts the dispatch loop.
// Returns a closer function that waits for all events to be processed.
//
// Example:
//
//	closer := snapshot.NewSubscriber(events,
//	  snapshot.OnRecordProduced(func(e snapshot.RecordProduced) { ... }),
//	)
//	defer closer()  // Ensures all events processed before exit
//
// Handlers run on a single goroutine, in the order events were emitted.
func NewSubscriber(events <-chan Event, opts ...func(*Subscriber)) func() {
	s := &Subscriber{
		done:                  make(chan struct{}),
		batchStartedHandler:   func(BatchStarted) {},   // nop by default
		recordProducedHandler: func(RecordProduced) {}, // nop by default
		addressFailedHandler:  func(AddressFailed) {},  // nop by default
		batchDoneHandler:      func(BatchDone) {},      // nop by default
		batchFailedHandler:    func(BatchFailed) {},    // nop by default
	}

	for _, opt := range opts {
		opt(s)
	}

	go func() {
		defer close(s.done)
		for ev := range events {
			switch e := ev.(type) {
			case BatchStarted:
				s.batchStartedHandler(e)
			case RecordProduced:
				s.recordProducedHandler(e)
			case AddressFailed:
				s.addressFailedHandler(e)
			case BatchDone:
				s.batchDoneHandler(e)
			case BatchFailed:
				s.batchFailedHandler(e)
			}
		}
	}()

	return func() {
		<-s.done
	}
}

// Fanout merges several subscriptions into one closer. Each gets its own copy of every event.
func Fanout(events <-chan Event, subscribers ...func(<-chan Event) func()) func() {
	channels := make([]chan Event, len(subscribers))
	closers := make([]func(), len(subscribers))
	for i, subscribe := range subscribers {
		channels[i] = make(chan Event, cap(events))
		closers[i] = subscribe(channels[i])
	}

	go func() {
		for ev := range events {
			for _, ch := range channels {
				ch <- ev
			}
		}
		for _, ch := range channels {
			close(ch)
		}
	}()

	return func() {
		for _, closer := range closers {
			closer()
		}
	}
}
