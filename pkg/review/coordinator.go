package review

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"
)

const defaultTopActionItems = 10

// Coordinator fans one review state out to every configured agent and
// reduces their outputs into a consolidated scorecard. Agents run
// concurrently over read-only state and return values; only the reducer,
// after the join barrier, writes to the state. Each agent manages its own
// internal concurrency; the coordinator imposes no cross-agent cap.
type Coordinator struct {
	agents         []Agent
	topActionItems int
	logger         func(format string, args ...any)
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithTopActionItems caps the consolidated action-item list at n entries.
func WithTopActionItems(n int) CoordinatorOption {
	return func(c *Coordinator) {
		c.topActionItems = n
	}
}

// WithCoordinatorLogger sets a custom logger.
func WithCoordinatorLogger(logger func(format string, args ...any)) CoordinatorOption {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// NewCoordinator creates a coordinator over the given agents. Agent ids
// must be unique: each agent writes exactly one output slot.
func NewCoordinator(agents []Agent, opts ...CoordinatorOption) (*Coordinator, error) {
	if len(agents) == 0 {
		return nil, fmt.Errorf("at least one agent is required")
	}
	seen := make(map[string]struct{}, len(agents))
	for _, agent := range agents {
		if _, dup := seen[agent.ID()]; dup {
			return nil, fmt.Errorf("duplicate agent id %q", agent.ID())
		}
		seen[agent.ID()] = struct{}{}
	}

	c := &Coordinator{
		agents:         agents,
		topActionItems: defaultTopActionItems,
		logger:         log.Printf,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// AgentIDs returns the configured agent ids in fan-out order.
func (c *Coordinator) AgentIDs() []string {
	ids := make([]string, len(c.agents))
	for i, agent := range c.agents {
		ids[i] = agent.ID()
	}
	return ids
}

// Run executes the review: fan out one task per agent, join, reduce. A
// failed agent is recorded as an error payload in its own slot and never
// blocks aggregation of the others. Run returns an error only when the
// context is cancelled before the join completes.
func (c *Coordinator) Run(ctx context.Context, state *ReviewState) error {
	if state.ProposalText == "" {
		return fmt.Errorf("review state has no proposal text")
	}

	outputs := make([]AgentOutput, len(c.agents))

	g, ctx := errgroup.WithContext(ctx)
	for i, agent := range c.agents {
		i, agent := i, agent
		g.Go(func() error {
			c.logger("[review] running %s", agent.ID())
			output, err := agent.Review(ctx, state)
			if err != nil {
				c.logger("[review] %s failed: %v", agent.ID(), err)
				output = errorOutput(agent.ID(), err)
			} else {
				c.logger("[review] %s complete", agent.ID())
			}
			// Disjoint index per task; no two tasks share a slot.
			outputs[i] = output
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.reduce(state, outputs)
	return nil
}

// reduce merges agent outputs into the run state. It runs single-threaded
// after the join barrier, so plain map writes are safe.
func (c *Coordinator) reduce(state *ReviewState, outputs []AgentOutput) {
	state.Outputs = make(map[string]AgentOutput, len(outputs))
	state.ConsolidatedScores = make(map[string]float64)
	var allItems []string

	for _, output := range outputs {
		state.Outputs[output.AgentID] = output
		// Union by key: a later agent reporting the same criterion
		// name overwrites the earlier one. Per-agent maps survive in
		// Outputs, so nothing is lost.
		for criterion, score := range output.Scores {
			state.ConsolidatedScores[criterion] = score
		}
		allItems = append(allItems, output.ActionItems...)
		if output.PanelSummary != nil {
			state.PanelSummary = output.PanelSummary
		}
	}

	state.ActionItems = DedupeActionItems(allItems, c.topActionItems)
	state.Summary = buildSummary(c.AgentIDs(), state)
}

func errorOutput(agentID string, err error) AgentOutput {
	return AgentOutput{
		AgentID:     agentID,
		Feedback:    fmt.Sprintf("Error: %v", err),
		Scores:      map[string]float64{},
		ActionItems: []string{},
		Confidence:  0.0,
	}
}
