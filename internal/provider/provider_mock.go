package provider

import (
	"context"

	"github.com/huangsam/podium/internal/contract"
	"github.com/huangsam/podium/schema"
	"github.com/stretchr/testify/mock"
)

// MockSessionProvider is a mock implementation of SessionProvider for testing.
type MockSessionProvider struct {
	mock.Mock
}

var _ contract.SessionProvider = &MockSessionProvider{} // Compile-time check

// Laps implements the SessionProvider interface.
func (m *MockSessionProvider) Laps(ctx context.Context, ref schema.SessionRef) ([]schema.LapRecord, error) {
	args := m.Called(ctx, ref)
	laps, _ := args.Get(0).([]schema.LapRecord)
	return laps, args.Error(1)
}

// StaticProvider returns the same laps for every session.
type StaticProvider []schema.LapRecord

// Laps implements the SessionProvider interface.
func (s StaticProvider) Laps(context.Context, schema.SessionRef) ([]schema.LapRecord, error) {
	return append([]schema.LapRecord(nil), s...), nil
}
