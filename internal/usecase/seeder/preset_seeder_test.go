package seeder

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/simaogato/fundflow-backend/internal/domain"
)

// MockPresetRepository is a mock implementation of PresetRepository
type MockPresetRepository struct {
	mock.Mock
}

func (m *MockPresetRepository) GetByName(ctx context.Context, name string) (*domain.AssumptionPreset, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AssumptionPreset), args.Error(1)
}

func (m *MockPresetRepository) Create(ctx context.Context, preset *domain.AssumptionPreset) error {
	args := m.Called(ctx, preset)
	return args.Error(0)
}

func TestPresetSeeder_Seed_PresetsMissing(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPresetRepository)
	seeder := NewPresetSeeder(mockRepo)

	mockRepo.On("GetByName", ctx, PresetConservative).Return(nil, domain.ErrNotFound)
	mockRepo.On("GetByName", ctx, PresetExpanded).Return(nil, domain.ErrNotFound)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *domain.AssumptionPreset) bool {
		return p.ID == PresetConservativeID &&
			p.Name == PresetConservative &&
			p.Assumptions.HoldPeriods == 5
	})).Return(nil)

	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *domain.AssumptionPreset) bool {
		return p.ID == PresetExpandedID &&
			p.Name == PresetExpanded &&
			p.Assumptions.HoldPeriods == 7 &&
			p.Assumptions.PaymentsPerPeriod == 12
	})).Return(nil)

	err := seeder.Seed(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestPresetSeeder_Seed_PresetsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPresetRepository)
	seeder := NewPresetSeeder(mockRepo)

	for _, preset := range Presets() {
		p := preset
		mockRepo.On("GetByName", ctx, p.Name).Return(&p, nil)
	}

	err := seeder.Seed(ctx)

	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPresetSeeder_Seed_PartialPresetsExist(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPresetRepository)
	seeder := NewPresetSeeder(mockRepo)

	existing := Presets()[0]
	mockRepo.On("GetByName", ctx, PresetConservative).Return(&existing, nil)
	mockRepo.On("GetByName", ctx, PresetExpanded).Return(nil, domain.ErrNotFound)
	mockRepo.On("Create", ctx, mock.MatchedBy(func(p *domain.AssumptionPreset) bool {
		return p.ID == PresetExpandedID
	})).Return(nil)

	err := seeder.Seed(ctx)

	assert.NoError(t, err)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestPresetSeeder_Seed_LookupFailureStops(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockPresetRepository)
	seeder := NewPresetSeeder(mockRepo)

	mockRepo.On("GetByName", ctx, PresetConservative).Return(nil, errors.New("connection reset"))

	err := seeder.Seed(ctx)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPresets_AreValid(t *testing.T) {
	for _, preset := range Presets() {
		p := preset
		assert.NoError(t, p.Validate(), p.Name)
	}
}
