package scoring

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/zen-systems/gradeflow/pkg/oracle"
	"github.com/zen-systems/gradeflow/pkg/rubric"
)

// Config holds the scheduler's pacing knobs, fixed at construction.
type Config struct {
	// MaxConcurrent is the hard ceiling on simultaneously in-flight
	// oracle calls. It may be smaller than BatchSize.
	MaxConcurrent int
	// BatchSize is the number of units released into flight together
	// once warm-up completes.
	BatchSize int
	// WarmupCount units are processed one at a time before batching
	// begins, absorbing provider cold-start and rate-limit discovery.
	WarmupCount int
	// WarmupDelay is the pause after each warm-up unit.
	WarmupDelay time.Duration
	// BaseDelay is the base for exponential backoff and the pause
	// between consecutive batches.
	BaseDelay time.Duration
	// MaxRetries is the per-unit attempt ceiling.
	MaxRetries int
}

// DefaultConfig returns the scheduler defaults.
func DefaultConfig() Config {
	return Config{
		MaxConcurrent: 3,
		BatchSize:     5,
		WarmupCount:   2,
		WarmupDelay:   2 * time.Second,
		BaseDelay:     time.Second,
		MaxRetries:    3,
	}
}

func (c Config) normalized() Config {
	if c.MaxConcurrent < 1 {
		c.MaxConcurrent = 1
	}
	if c.BatchSize < 1 {
		c.BatchSize = 1
	}
	if c.WarmupCount < 0 {
		c.WarmupCount = 0
	}
	if c.MaxRetries < 1 {
		c.MaxRetries = 1
	}
	return c
}

// UnitResult is the terminal outcome for one scoring unit. Score is nil only
// after the retry ceiling is exhausted; such units are excluded from the
// weighted average rather than counted as zero.
type UnitResult struct {
	Unit         rubric.ScoringUnit `json:"unit"`
	Score        *float64           `json:"score"`
	Evidence     string             `json:"evidence"`
	Reasoning    string             `json:"reasoning"`
	Improvements string             `json:"improvements,omitempty"`
	Attempts     int                `json:"attempts"`
}

// Scored reports whether the unit produced a usable score.
func (r UnitResult) Scored() bool {
	return r.Score != nil
}

// Scheduler drives every scoring unit through the oracle exactly once per
// run: a strictly sequential warm-up slice, then hard-barrier batches with
// bounded concurrency and exponential-backoff retry per unit.
type Scheduler struct {
	oracle  oracle.Oracle
	model   string
	prompts *PromptBuilder
	cfg     Config
	sem     *semaphore.Weighted

	logger   func(format string, args ...any)
	sleep    func(ctx context.Context, d time.Duration)
	jitter   func() float64
	onResult func(UnitResult)

	mu sync.Mutex // serializes onResult across a batch
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithLogger sets a custom logger for progress output.
func WithLogger(logger func(format string, args ...any)) SchedulerOption {
	return func(s *Scheduler) {
		s.logger = logger
	}
}

// WithResultHook registers a callback invoked once per unit as its terminal
// result is produced, in completion order. The audit sink uses this to write
// rows incrementally so a crashed run still leaves a valid partial trail.
func WithResultHook(hook func(UnitResult)) SchedulerOption {
	return func(s *Scheduler) {
		s.onResult = hook
	}
}

// NewScheduler creates a scheduler over the given oracle and prompt builder.
func NewScheduler(o oracle.Oracle, model string, prompts *PromptBuilder, cfg Config, opts ...SchedulerOption) *Scheduler {
	cfg = cfg.normalized()
	s := &Scheduler{
		oracle:  o,
		model:   model,
		prompts: prompts,
		cfg:     cfg,
		sem:     semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger:  log.Printf,
		sleep:   sleepContext,
		jitter:  rand.Float64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run scores every unit and returns results in unit order. Each unit reaches
// a terminal state: a score, or nil after MaxRetries attempts. Run never
// returns an error; input validation belongs upstream, before any oracle
// budget is spent.
func (s *Scheduler) Run(ctx context.Context, units []rubric.ScoringUnit) []UnitResult {
	results := make([]UnitResult, len(units))

	warm := s.cfg.WarmupCount
	if warm > len(units) {
		warm = len(units)
	}

	// Warm-up: strictly sequential, one attempt sequence at a time.
	for i := 0; i < warm; i++ {
		s.logger("[scheduler] warm-up %d/%d: %s", i+1, warm, units[i].Key())
		results[i] = s.scoreUnit(ctx, units[i])
		s.emit(results[i])
		// No pause after the final warm-up unit.
		if i+1 < warm {
			s.sleep(ctx, s.cfg.WarmupDelay)
		}
	}

	// Batched remainder. Each batch is a hard barrier: the next batch
	// never starts before every task in this one is terminal.
	rest := units[warm:]
	for start := 0; start < len(rest); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(rest) {
			end = len(rest)
		}
		s.logger("[scheduler] batch %d-%d of %d", warm+start+1, warm+end, len(units))

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[warm+i] = s.scoreUnit(ctx, rest[i])
				s.emit(results[warm+i])
			}(i)
		}
		wg.Wait()

		if end < len(rest) {
			s.sleep(ctx, s.cfg.BaseDelay)
		}
	}

	return results
}

// scoreUnit runs one unit's attempt sequence to a terminal result. The
// concurrency slot is held only across the oracle call itself, never across
// backoff sleeps, so a unit backing off does not starve the batch.
func (s *Scheduler) scoreUnit(ctx context.Context, unit rubric.ScoringUnit) UnitResult {
	prompt := s.prompts.Build(unit)

	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		text, err := s.callOracle(ctx, prompt)
		if err == nil {
			resp, parseErr := ParseResponse(text)
			if parseErr == nil && resp.Score != nil {
				return UnitResult{
					Unit:         unit,
					Score:        resp.Score,
					Evidence:     resp.Evidence,
					Reasoning:    resp.Reasoning,
					Improvements: resp.Improvements,
					Attempts:     attempt + 1,
				}
			}
			if parseErr != nil {
				err = parseErr
			} else {
				err = fmt.Errorf("oracle response missing numeric score")
			}
		}

		if oracle.IsRateLimited(err) {
			s.logger("[scheduler] %s: rate limited (attempt %d/%d): %v", unit.Key(), attempt+1, s.cfg.MaxRetries, err)
		} else {
			s.logger("[scheduler] %s: attempt %d/%d failed: %v", unit.Key(), attempt+1, s.cfg.MaxRetries, err)
		}
		if attempt+1 < s.cfg.MaxRetries {
			s.sleep(ctx, s.backoff(attempt))
		}
	}

	return UnitResult{
		Unit:      unit,
		Reasoning: "Could not parse response",
		Attempts:  s.cfg.MaxRetries,
	}
}

func (s *Scheduler) callOracle(ctx context.Context, prompt string) (string, error) {
	if err := s.sem.Acquire(ctx, 1); err != nil {
		return "", err
	}
	defer s.sem.Release(1)
	return s.oracle.Complete(ctx, s.model, prompt)
}

// backoff computes baseDelay * 2^attempt plus up to one second of jitter.
func (s *Scheduler) backoff(attempt int) time.Duration {
	d := float64(s.cfg.BaseDelay) * math.Pow(2, float64(attempt))
	d += s.jitter() * float64(time.Second)
	return time.Duration(d)
}

func (s *Scheduler) emit(result UnitResult) {
	if s.onResult == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onResult(result)
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
