package temporaladapter

import (
	"context"
	"fmt"

	"go.temporal.io/sdk/client"

	"github.com/SrinivasYANAGANDALA/smart-turism/internal/core/domain"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/pkg/metrics"
	"github.com/SrinivasYANAGANDALA/smart-turism/internal/workflows"
)

// Scheduler implements ports.EscalationScheduler by starting the escalation
// workflow on Temporal. The workflow ID is derived from the alert ID so a
// duplicate trigger cannot start a second watch.
type Scheduler struct {
	client         client.Client
	taskQueue      string
	graceMinutes   int
	authorityEmail string
}

// NewScheduler creates a new Scheduler over an existing Temporal client.
func NewScheduler(c client.Client, taskQueue string, graceMinutes int, authorityEmail string) *Scheduler {
	return &Scheduler{
		client:         c,
		taskQueue:      taskQueue,
		graceMinutes:   graceMinutes,
		authorityEmail: authorityEmail,
	}
}

// ScheduleEscalation starts the unacknowledged-panic watch for an alert.
func (s *Scheduler) ScheduleEscalation(ctx context.Context, alert *domain.SafetyAlert) error {
	input := workflows.EscalationInput{
		AlertID:        alert.ID,
		TravelerID:     alert.TravelerID,
		GraceMinutes:   s.graceMinutes,
		AuthorityEmail: s.authorityEmail,
	}
	if alert.Coordinates != nil {
		input.Lat = alert.Coordinates.Lat
		input.Lon = alert.Coordinates.Lon
		input.HasCoordinates = true
	}

	opts := client.StartWorkflowOptions{
		ID:        "escalate-" + alert.ID,
		TaskQueue: s.taskQueue,
	}
	if _, err := s.client.ExecuteWorkflow(ctx, opts, workflows.EscalationWorkflow, input); err != nil {
		return fmt.Errorf("start escalation workflow: %w", err)
	}
	metrics.EscalationsStarted.Inc()
	return nil
}
