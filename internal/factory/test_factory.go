package factory

import (
	"time"

	"github.com/mcoot/edugames/internal/dependencies/mocks"
	"github.com/mcoot/edugames/internal/metrics"
	"github.com/mcoot/edugames/internal/services/credentials"
	"github.com/mcoot/edugames/internal/storage"
	"github.com/mcoot/edugames/internal/storage/memory"
	"github.com/mcoot/edugames/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock *mocks.MockClock
	MockIDs   *mocks.MockIDs
}

// TestCredentials uses the minimum bcrypt cost so tests stay fast
func TestCredentials() credentials.Config {
	return credentials.Config{
		Secret:     []byte("test-secret"),
		BcryptCost: 4,
		TokenTTL:   time.Hour,
	}
}

// NewTestApp creates an App over in-memory storage with mocked dependencies
func NewTestApp() *TestApp {
	return NewTestAppWithStorage(memory.New())
}

// NewTestAppWithStorage creates a TestApp over the given storage
func NewTestAppWithStorage(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockIDs := mocks.NewMockIDs()

	app := newWithDependencies(store, mockClock, mockIDs, TestCredentials(), metrics.New(), testutil.NopLogger())

	return &TestApp{
		App:       app,
		MockClock: mockClock,
		MockIDs:   mockIDs,
	}
}
