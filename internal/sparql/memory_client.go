package sparql

import (
	"context"
	"sync"
)

// MemoryClient is a simple in-memory implementation of the Client interface
// used for unit testing query construction without a running endpoint.
type MemoryClient struct {
	mu            sync.Mutex
	selectCalls   []string
	askCalls      []string
	selectResults []Result
	askResults    []bool
	err           error
}

// NewMemoryClient instantiates the in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{}
}

// WithError configures the client to return the provided error for
// subsequent calls.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// PushSelectResult appends a result returned on the next Select call.
func (m *MemoryClient) PushSelectResult(res Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selectResults = append(m.selectResults, res)
}

// PushAskResult appends a result returned on the next Ask call.
func (m *MemoryClient) PushAskResult(answer bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.askResults = append(m.askResults, answer)
}

func (m *MemoryClient) Select(_ context.Context, query string) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.selectCalls = append(m.selectCalls, query)

	if len(m.selectResults) == 0 {
		return Result{}, nil
	}
	res := m.selectResults[0]
	m.selectResults = m.selectResults[1:]
	return res, nil
}

func (m *MemoryClient) Ask(_ context.Context, query string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return false, m.err
	}
	m.askCalls = append(m.askCalls, query)

	if len(m.askResults) == 0 {
		return false, nil
	}
	answer := m.askResults[0]
	m.askResults = m.askResults[1:]
	return answer, nil
}

func (m *MemoryClient) Close(context.Context) error {
	return nil
}

// SelectCalls returns a snapshot of executed SELECT queries.
func (m *MemoryClient) SelectCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.selectCalls...)
}

// AskCalls returns a snapshot of executed ASK queries.
func (m *MemoryClient) AskCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.askCalls...)
}
