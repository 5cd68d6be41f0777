package mock

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/kiranshivaraju/medequip/pkg/models"
)

// DefaultAnswer is the response NewMockBackend returns.
const DefaultAnswer = `{"equipment":"stethoscope","condition":"good","description":"Dual-head stethoscope with flexible tubing.","visibleIssues":["Light wear on chest piece"],"confidence":"high"}`

// MockBackend satisfies models.VisionBackend for testing.
type MockBackend struct {
	Name_        string
	Model_       string
	Label_       string
	GenerateFunc func(ctx context.Context, req models.VisionRequest) (string, error)

	calls atomic.Int64
}

func (m *MockBackend) Name() string  { return m.Name_ }
func (m *MockBackend) Model() string { return m.Model_ }
func (m *MockBackend) Label() string { return m.Label_ }

// Calls reports how many times Generate ran.
func (m *MockBackend) Calls() int { return int(m.calls.Load()) }

func (m *MockBackend) Generate(ctx context.Context, req models.VisionRequest) (string, error) {
	m.calls.Add(1)
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, req)
	}
	return "", nil
}

// NewMockBackend returns a MockBackend answering with DefaultAnswer.
func NewMockBackend() *MockBackend {
	return NewAnswerBackend(DefaultAnswer)
}

// NewAnswerBackend returns a MockBackend that always answers with text.
func NewAnswerBackend(text string) *MockBackend {
	return &MockBackend{
		Name_:  "mock",
		Model_: "mock-v1",
		Label_: "Mock Vision Model",
		GenerateFunc: func(_ context.Context, _ models.VisionRequest) (string, error) {
			return text, nil
		},
	}
}

// NewFailingBackend returns a MockBackend that always returns the given error.
func NewFailingBackend(err error) *MockBackend {
	return &MockBackend{
		Name_:  "mock-failing",
		Model_: "mock-v1",
		Label_: "Mock Vision Model",
		GenerateFunc: func(_ context.Context, _ models.VisionRequest) (string, error) {
			return "", err
		},
	}
}

// NewTimeoutBackend returns a MockBackend that blocks until the context is done.
func NewTimeoutBackend() *MockBackend {
	return &MockBackend{
		Name_:  "mock-timeout",
		Model_: "mock-v1",
		Label_: "Mock Vision Model",
		GenerateFunc: func(ctx context.Context, _ models.VisionRequest) (string, error) {
			<-ctx.Done()
			return "", fmt.Errorf("mock: %w", ctx.Err())
		},
	}
}

// Compile-time check that MockBackend implements VisionBackend.
var _ models.VisionBackend = (*MockBackend)(nil)
