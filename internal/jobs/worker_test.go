package jobs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSweepableStore is a mock implementation of SweepableStore
type MockSweepableStore struct {
	mock.Mock
}

func (m *MockSweepableStore) Sweep() int {
	args := m.Called()
	return args.Int(0)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(250 * time.Millisecond)

	// Stop worker
	worker.Stop()
	wg.Wait()

	// Verify ProcessJobs was called at least once
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	// Start worker in goroutine
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	// Let it run for a bit
	time.Sleep(150 * time.Millisecond)

	// Cancel context
	cancel()
	wg.Wait()

	// Verify ProcessJobs was called
	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestSessionSweeper_ProcessJobs tests a sweep that evicts sessions
func TestSessionSweeper_ProcessJobs(t *testing.T) {
	mockStore := new(MockSweepableStore)
	mockStore.On("Sweep").Return(3)

	sweeper := NewSessionSweeper(mockStore)
	err := sweeper.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// TestSessionSweeper_ProcessJobs_NothingExpired tests a no-op sweep
func TestSessionSweeper_ProcessJobs_NothingExpired(t *testing.T) {
	mockStore := new(MockSweepableStore)
	mockStore.On("Sweep").Return(0)

	sweeper := NewSessionSweeper(mockStore)
	err := sweeper.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockStore.AssertExpectations(t)
}

// TestSessionSweeper_ProcessJobs_CancelledContext tests the sweep is skipped
// once the context is done
func TestSessionSweeper_ProcessJobs_CancelledContext(t *testing.T) {
	mockStore := new(MockSweepableStore)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sweeper := NewSessionSweeper(mockStore)
	err := sweeper.ProcessJobs(ctx)

	assert.Error(t, err)
	mockStore.AssertNotCalled(t, "Sweep")
}
