package resilience

import (
	"errors"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when a breaker rejects a request without
// running it.
var ErrCircuitOpen = errors.New("circuit open")

// State is the breaker state.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Counts tracks request outcomes within the current closed period.
type Counts struct {
	Requests            uint32
	Failures            uint32
	ConsecutiveFailures uint32
}

// Settings configures a breaker.
type Settings struct {
	// Timeout is how long an open breaker rejects before allowing a
	// probe request.
	Timeout time.Duration
	// ReadyToTrip decides, after each failure in the closed state,
	// whether to open. Defaults to five consecutive failures.
	ReadyToTrip func(Counts) bool
}

// Breaker fails fast against a peer that keeps erroring. Closed passes
// requests through and counts outcomes; open rejects immediately until
// Timeout elapses; half-open lets exactly one probe through, closing on
// success and reopening on failure.
type Breaker struct {
	name     string
	settings Settings

	mu       sync.Mutex
	state    State
	counts   Counts
	openedAt time.Time
	probing  bool
}

// New creates a closed breaker.
func New(name string, settings Settings) *Breaker {
	if settings.Timeout == 0 {
		settings.Timeout = 60 * time.Second
	}
	if settings.ReadyToTrip == nil {
		settings.ReadyToTrip = func(c Counts) bool {
			return c.ConsecutiveFailures >= 5
		}
	}
	return &Breaker{name: name, settings: settings}
}

// Name returns the breaker's name.
func (b *Breaker) Name() string { return b.name }

// State returns the current state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.currentState(time.Now())
}

// Counts returns a copy of the closed-period counters.
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}

// Execute runs req unless the breaker rejects it. A rejected request
// returns ErrCircuitOpen without running req; req's own error is passed
// through and counted.
func (b *Breaker) Execute(req func() (any, error)) (any, error) {
	if err := b.before(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			b.after(false)
			panic(r)
		}
	}()

	result, err := req()
	b.after(err == nil)
	return result, err
}

func (b *Breaker) before() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(time.Now()) {
	case StateOpen:
		return ErrCircuitOpen
	case StateHalfOpen:
		// One probe at a time.
		if b.probing {
			return ErrCircuitOpen
		}
		b.probing = true
	default:
		b.counts.Requests++
	}
	return nil
}

func (b *Breaker) after(success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.currentState(time.Now()) {
	case StateHalfOpen:
		b.probing = false
		if success {
			b.state = StateClosed
			b.counts = Counts{}
		} else {
			b.open()
		}
	case StateClosed:
		if success {
			b.counts.ConsecutiveFailures = 0
			return
		}
		b.counts.Failures++
		b.counts.ConsecutiveFailures++
		if b.settings.ReadyToTrip(b.counts) {
			b.open()
		}
	}
}

// open transitions to the open state. Caller holds mu.
func (b *Breaker) open() {
	b.state = StateOpen
	b.openedAt = time.Now()
	b.counts = Counts{}
	b.probing = false
}

// currentState applies the open-to-half-open timeout. Caller holds mu.
func (b *Breaker) currentState(now time.Time) State {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.settings.Timeout {
		b.state = StateHalfOpen
	}
	return b.state
}
