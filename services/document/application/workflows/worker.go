package workflows

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/worker"

	"github.com/ghuser/procuredesk/pkg/workflows"
)

// Register adds the document workflows and activities to w.
func Register(w worker.Registry, svc Reassessor) {
	w.RegisterWorkflow(ReassessDocumentsWorkflow)
	w.RegisterActivity(NewActivities(svc))
}

// ScheduleReassessment starts the cron reassessment workflow on taskQueue.
// When the workflow is already running, the existing run is kept.
func ScheduleReassessment(ctx context.Context, tc *workflows.TemporalClient, taskQueue, cron string) error {
	if err := tc.StartCron(ctx, ReassessWorkflowID, taskQueue, cron, ReassessDocumentsWorkflow, ReassessInput{}); err != nil {
		return fmt.Errorf("schedule reassessment: %w", err)
	}
	return nil
}
