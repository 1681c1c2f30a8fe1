// Package workflows holds the Temporal workflows and activities of the
// document bounded context.
package workflows

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	appsvcs "github.com/ghuser/procuredesk/services/document/application/services"
	"github.com/ghuser/procuredesk/services/document/domain/models"
)

// ReassessWorkflowID is the fixed id of the cron reassessment workflow, so
// repeated worker starts attach to the running schedule instead of adding one.
const ReassessWorkflowID = "documents-reassessment"

// ReassessInput selects the kinds to reassess. Empty means all kinds.
type ReassessInput struct {
	Kinds []models.Kind `json:"kinds,omitempty"`
}

// ReassessSummary collects one result per reassessed kind.
type ReassessSummary struct {
	Results []appsvcs.ReassessResult `json:"results"`
}

// Reassessor is the part of the document service the activity needs.
// *appsvcs.DocumentService satisfies it.
type Reassessor interface {
	Reassess(ctx context.Context, kind models.Kind) (*appsvcs.ReassessResult, error)
}

// Activities are registered on the worker as a struct so they share the service.
type Activities struct {
	svc Reassessor
}

// NewActivities returns Activities backed by svc.
func NewActivities(svc Reassessor) *Activities {
	return &Activities{svc: svc}
}

// ReassessDocuments runs one reassessment pass for kind. The pass is
// idempotent, so a failed attempt is simply retried by Temporal.
func (a *Activities) ReassessDocuments(ctx context.Context, kind models.Kind) (*appsvcs.ReassessResult, error) {
	if !kind.IsValid() {
		return nil, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("unknown document kind %q", kind), "InvalidKind", nil)
	}
	res, err := a.svc.Reassess(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("reassess %s: %w", kind, err)
	}
	activity.GetLogger(ctx).Info("reassessment pass finished",
		"kind", kind, "overdue_marked", res.OverdueMarked, "totals_corrected", res.TotalsCorrected)
	return res, nil
}

// ReassessDocumentsWorkflow marks overdue documents and corrects drifted
// totals for every requested kind, one activity per kind.
func ReassessDocumentsWorkflow(ctx workflow.Context, in ReassessInput) (*ReassessSummary, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    10 * time.Second,
			BackoffCoefficient: 2,
			MaximumAttempts:    5,
		},
	})

	kinds := in.Kinds
	if len(kinds) == 0 {
		kinds = []models.Kind{models.KindPurchaseOrder, models.KindInvoice}
	}

	var a *Activities
	summary := &ReassessSummary{Results: make([]appsvcs.ReassessResult, 0, len(kinds))}
	for _, kind := range kinds {
		var res appsvcs.ReassessResult
		if err := workflow.ExecuteActivity(ctx, a.ReassessDocuments, kind).Get(ctx, &res); err != nil {
			return summary, err
		}
		summary.Results = append(summary.Results, res)
	}

	workflow.GetLogger(ctx).Info("documents reassessed", "kinds", len(kinds))
	return summary, nil
}
