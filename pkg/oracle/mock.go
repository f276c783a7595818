package oracle

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockOracle returns deterministic responses for local runs and tests.
type MockOracle struct {
	mu              sync.Mutex
	responses       map[string]string
	defaultResponse string
	failures        int
	failWith        error
	calls           int
}

// NewMockOracle creates a mock oracle with a default scoring response.
func NewMockOracle() *MockOracle {
	return &MockOracle{
		responses:       make(map[string]string),
		defaultResponse: `{"score": 3.0, "evidence": "mock evidence", "reasoning": "mock reasoning"}`,
	}
}

// NewMockOracleWithResponses creates a mock oracle with predefined responses
// keyed by prompt substring match.
func NewMockOracleWithResponses(responses map[string]string, defaultResponse string) *MockOracle {
	if defaultResponse == "" {
		defaultResponse = `{"score": 3.0, "evidence": "mock evidence", "reasoning": "mock reasoning"}`
	}
	return &MockOracle{responses: responses, defaultResponse: defaultResponse}
}

// FailFirst makes the next n calls fail with err before succeeding.
func (o *MockOracle) FailFirst(n int, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures = n
	o.failWith = err
}

// Calls returns how many times Complete has been invoked.
func (o *MockOracle) Calls() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.calls
}

// Name returns the oracle identifier.
func (o *MockOracle) Name() string {
	return "mock"
}

// Models returns the list of supported mock models.
func (o *MockOracle) Models() []string {
	return []string{"mock-1"}
}

// Complete returns a deterministic response for the prompt.
func (o *MockOracle) Complete(_ context.Context, model string, prompt string) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.failures > 0 {
		o.failures--
		if o.failWith != nil {
			return "", o.failWith
		}
		return "", fmt.Errorf("mock oracle failure")
	}
	for key, response := range o.responses {
		if key != "" && strings.Contains(prompt, key) {
			return response, nil
		}
	}
	_ = model
	return o.defaultResponse, nil
}
