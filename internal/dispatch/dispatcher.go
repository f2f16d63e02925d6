package dispatch

import "context"

// Outcome is the gateway's verdict for a dispatch attempt. The agent reports
// it verbatim and never retries; interpretation is the operator's job.
type Outcome string

const (
	OutcomeSent      Outcome = "sent"
	OutcomeFailed    Outcome = "failed"
	OutcomeCancelled Outcome = "cancelled"
)

// Dispatcher hands a built message and the ordered recipient numbers to the
// SMS sending mechanism and reports exactly one outcome.
type Dispatcher interface {
	Dispatch(ctx context.Context, body string, recipients []string) (Outcome, error)
	Ready() bool
}
