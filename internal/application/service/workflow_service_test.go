package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

func TestWorkflowService_CreateBustsCache(t *testing.T) {
	wfRepo := newMockWorkflowRepo()
	cache := &mockDefinitionCache{}
	svc := NewWorkflowService(wfRepo, cache, nopLogger{})

	def := twoStepDefinition()
	def.ID = 0
	require.NoError(t, svc.Create(context.Background(), &def))

	assert.Equal(t, 1, cache.invalidated)
	assert.NotZero(t, def.ID)
}

func TestWorkflowService_UpdateBustsCache(t *testing.T) {
	def := twoStepDefinition()
	wfRepo := newMockWorkflowRepo(&def)
	cache := &mockDefinitionCache{}
	svc := NewWorkflowService(wfRepo, cache, nopLogger{})

	def.IsActive = false
	require.NoError(t, svc.Update(context.Background(), &def))

	assert.Equal(t, 1, cache.invalidated)
	stored, _ := wfRepo.GetByID(context.Background(), def.ID)
	assert.False(t, stored.IsActive)
}

func TestWorkflowService_ValidationRejectsBadDefinitions(t *testing.T) {
	svc := NewWorkflowService(newMockWorkflowRepo(), &mockDefinitionCache{}, nopLogger{})

	tests := []struct {
		name   string
		mutate func(def *entity.WorkflowDefinition)
	}{
		{"missing name", func(def *entity.WorkflowDefinition) { def.Name = "" }},
		{"no type and no route", func(def *entity.WorkflowDefinition) {
			def.DocumentType = ""
			def.DocumentRoute = ""
		}},
		{"zero step order", func(def *entity.WorkflowDefinition) { def.Steps[0].StepOrder = 0 }},
		{"duplicate step order", func(def *entity.WorkflowDefinition) { def.Steps[1].StepOrder = def.Steps[0].StepOrder }},
		{"empty approver set", func(def *entity.WorkflowDefinition) { def.Steps[0].Approvers = nil }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := twoStepDefinition()
			tt.mutate(&def)
			assert.Error(t, svc.Create(context.Background(), &def))
		})
	}
}
