package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

// EscalationInput is the input for the panic escalation workflow.
type EscalationInput struct {
	AlertID        string
	TravelerID     string
	Lat            float64
	Lon            float64
	HasCoordinates bool
	GraceMinutes   int
	AuthorityEmail string
}

// EscalationWorkflow watches a freshly raised panic alert. If nobody
// acknowledges it within the grace period, the nearest responder is assigned
// and the authority channel is notified.
func EscalationWorkflow(ctx workflow.Context, input EscalationInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting escalation watch", "alertID", input.AlertID, "graceMinutes", input.GraceMinutes)

	grace := time.Duration(input.GraceMinutes) * time.Minute
	if grace <= 0 {
		grace = 5 * time.Minute
	}
	if err := workflow.Sleep(ctx, grace); err != nil {
		return err
	}

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	// Step 1: is the alert still unhandled?
	var status string
	if err := workflow.ExecuteActivity(ctx, "GetAlertStatus", input.AlertID).Get(ctx, &status); err != nil {
		return err
	}
	if status != "pending" {
		logger.Info("Alert handled in time, no escalation", "alertID", input.AlertID, "status", status)
		return nil
	}

	// Step 2: pull the nearest responder onto the case (best-effort).
	var responderID string
	if input.HasCoordinates {
		err := workflow.ExecuteActivity(ctx, "AssignNearestResponder", input.TravelerID, input.AlertID, input.Lat, input.Lon).Get(ctx, &responderID)
		if err != nil {
			logger.Warn("responder assignment failed", "error", err)
		}
	}

	// Step 3: notify the authority channel.
	if input.AuthorityEmail == "" {
		logger.Warn("no authority email configured, escalation ends at assignment", "alertID", input.AlertID)
		return nil
	}
	if err := workflow.ExecuteActivity(ctx, "NotifyAuthority", input, responderID).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Escalation complete", "alertID", input.AlertID, "responder", responderID)
	return nil
}
