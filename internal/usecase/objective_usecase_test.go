package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/kompas/kompas/internal/domain"
)

func TestCreateObjective_ScopeRules(t *testing.T) {
	tests := []struct {
		name    string
		level   domain.Level
		scopeID *string
		wantErr error
	}{
		{name: "global without scope", level: domain.LevelGlobal, scopeID: nil},
		{name: "business unit with scope", level: domain.LevelBusinessUnit, scopeID: strPtr("bu1")},
		{name: "individual with scope", level: domain.LevelIndividual, scopeID: strPtr("u1")},
		{name: "business unit without scope", level: domain.LevelBusinessUnit, scopeID: nil, wantErr: domain.ErrMissingScope},
		{name: "division with empty scope", level: domain.LevelDivision, scopeID: strPtr(""), wantErr: domain.ErrMissingScope},
		{name: "global with scope", level: domain.LevelGlobal, scopeID: strPtr("bu1"), wantErr: domain.ErrScopeNotAllowed},
		{name: "unknown level", level: domain.Level("COSMIC"), scopeID: nil, wantErr: domain.ErrInvalidLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			typeRepo := new(MockObjectiveTypeRepository)
			objectiveRepo := new(MockObjectiveRepository)
			progressRepo := new(MockProgressRepository)

			if tt.wantErr == nil {
				objectiveType := domain.NewObjectiveType("OPP_WON_AMOUNT", "Won amount", "Sales", domain.UnitCurrency, domain.EntityOpportunity, domain.OperationWon, "amount")
				objectiveType.ID = "ot-1"
				typeRepo.On("FindByID", mock.Anything, "ot-1").Return(objectiveType, nil).Once()
				objectiveRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Once()
			}

			uc := NewObjectiveUseCase(typeRepo, objectiveRepo, progressRepo)
			created, err := uc.CreateObjective(context.Background(), CreateObjectiveRequest{
				Level:           tt.level,
				ObjectiveTypeID: "ot-1",
				FiscalYearID:    "fy1",
				Title:           "Revenue target",
				TargetValue:     100000,
				ScopeID:         tt.scopeID,
			})

			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				objectiveRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.level, created.Level)
			assert.Equal(t, float64(0), created.CurrentValue)
			assert.True(t, created.IsActive)
			objectiveRepo.AssertExpectations(t)
		})
	}
}

func TestCreateObjective_UnknownType(t *testing.T) {
	typeRepo := new(MockObjectiveTypeRepository)
	objectiveRepo := new(MockObjectiveRepository)
	progressRepo := new(MockProgressRepository)

	typeRepo.On("FindByID", mock.Anything, "missing").Return(nil, domain.ErrObjectiveTypeNotFound).Once()

	uc := NewObjectiveUseCase(typeRepo, objectiveRepo, progressRepo)
	_, err := uc.CreateObjective(context.Background(), CreateObjectiveRequest{
		Level:           domain.LevelGlobal,
		ObjectiveTypeID: "missing",
		FiscalYearID:    "fy1",
		Title:           "Revenue target",
	})

	assert.True(t, errors.Is(err, domain.ErrObjectiveTypeNotFound))
	objectiveRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateObjective_NeverTouchesCurrentValue(t *testing.T) {
	typeRepo := new(MockObjectiveTypeRepository)
	objectiveRepo := new(MockObjectiveRepository)
	progressRepo := new(MockProgressRepository)

	existing := activeObjective("obj-1", domain.LevelGlobal, 12345, nil)
	objectiveRepo.On("FindByID", mock.Anything, domain.LevelGlobal, "obj-1").Return(existing, nil).Once()

	var persisted *domain.Objective
	objectiveRepo.On("Update", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(1).(*domain.Objective)
	}).Return(nil).Once()

	title := "Renamed target"
	target := float64(250000)
	uc := NewObjectiveUseCase(typeRepo, objectiveRepo, progressRepo)
	updated, err := uc.UpdateObjective(context.Background(), domain.LevelGlobal, "obj-1", UpdateObjectiveRequest{
		Title:       &title,
		TargetValue: &target,
	})

	assert.NoError(t, err)
	assert.Equal(t, "Renamed target", updated.Title)
	assert.Equal(t, float64(250000), updated.TargetValue)
	assert.Equal(t, float64(12345), persisted.CurrentValue)
}

func TestGetProgress(t *testing.T) {
	t.Run("clamps the limit and returns entries", func(t *testing.T) {
		typeRepo := new(MockObjectiveTypeRepository)
		objectiveRepo := new(MockObjectiveRepository)
		progressRepo := new(MockProgressRepository)

		objectiveRepo.On("FindByID", mock.Anything, domain.LevelIndividual, "obj-1").
			Return(activeObjective("obj-1", domain.LevelIndividual, 8000, strPtr("u2")), nil).Once()
		progressRepo.On("ListByObjective", mock.Anything, domain.LevelIndividual, "obj-1", 500).
			Return([]*domain.ProgressEntry{}, nil).Once()

		uc := NewObjectiveUseCase(typeRepo, objectiveRepo, progressRepo)
		entries, err := uc.GetProgress(context.Background(), domain.LevelIndividual, "obj-1", 9999)

		assert.NoError(t, err)
		assert.Empty(t, entries)
		progressRepo.AssertExpectations(t)
	})

	t.Run("unknown objective propagates not found", func(t *testing.T) {
		typeRepo := new(MockObjectiveTypeRepository)
		objectiveRepo := new(MockObjectiveRepository)
		progressRepo := new(MockProgressRepository)

		objectiveRepo.On("FindByID", mock.Anything, domain.LevelGlobal, "missing").
			Return(nil, domain.ErrObjectiveNotFound).Once()

		uc := NewObjectiveUseCase(typeRepo, objectiveRepo, progressRepo)
		_, err := uc.GetProgress(context.Background(), domain.LevelGlobal, "missing", 10)

		assert.True(t, errors.Is(err, domain.ErrObjectiveNotFound))
		progressRepo.AssertNotCalled(t, "ListByObjective", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
