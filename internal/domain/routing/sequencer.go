package routing

import (
	"sort"

	"github.com/nimbuserp/approval-engine/internal/domain/entity"
)

// OrderedSteps returns the workflow's steps sorted by ascending step order.
// Step orders are 1-based and unique within a workflow; gaps are allowed.
func OrderedSteps(def *entity.WorkflowDefinition) []entity.WorkflowStep {
	steps := append([]entity.WorkflowStep{}, def.Steps...)
	sort.Slice(steps, func(i, j int) bool {
		return steps[i].StepOrder < steps[j].StepOrder
	})
	return steps
}

// FirstStep returns the step with the minimum order. A document entering a
// workflow always starts at the first step; there is no limit-based
// skipping.
func FirstStep(def *entity.WorkflowDefinition) (*entity.WorkflowStep, bool) {
	steps := OrderedSteps(def)
	if len(steps) == 0 {
		return nil, false
	}
	return &steps[0], true
}

// StepAt returns the step with exactly the given order.
func StepAt(def *entity.WorkflowDefinition, order int) (*entity.WorkflowStep, bool) {
	for i := range def.Steps {
		if def.Steps[i].StepOrder == order {
			return &def.Steps[i], true
		}
	}
	return nil, false
}

// NextStep returns the next step in ascending order strictly after the
// given order. Orders may have gaps, so "next" is positional, not +1.
func NextStep(def *entity.WorkflowDefinition, afterOrder int) (*entity.WorkflowStep, bool) {
	var next *entity.WorkflowStep
	for i := range def.Steps {
		step := &def.Steps[i]
		if step.StepOrder <= afterOrder {
			continue
		}
		if next == nil || step.StepOrder < next.StepOrder {
			next = step
		}
	}
	return next, next != nil
}

// IsLastStep reports whether no step follows the given order.
func IsLastStep(def *entity.WorkflowDefinition, order int) bool {
	_, ok := NextStep(def, order)
	return !ok
}

// DefaultApprover returns the step's default target approver. A singleton
// approver set yields its only member; a true multi-approver set has no
// default and the caller must choose explicitly.
func DefaultApprover(step *entity.WorkflowStep) (*entity.Approver, bool) {
	if len(step.Approvers) == 1 {
		return &step.Approvers[0], true
	}
	return nil, false
}
