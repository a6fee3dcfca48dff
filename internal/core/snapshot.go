package core

import "time"

// Snapshot is a settlement figure recorded at a point in time, so later
// ledger edits can be traced back.
type Snapshot struct {
	ID                 int64     `json:"id"`
	MessageID          string    `json:"message_id,omitempty"`
	Period             Period    `json:"period"`
	SharedTotal        int64     `json:"shared_total"`
	FullReimburseTotal int64     `json:"full_reimburse_total"`
	TotalBilling       int64     `json:"total_billing"`
	AdvanceAmount      int64     `json:"advance_amount"`
	FinalDue           int64     `json:"final_due"`
	ComputedAt         time.Time `json:"computed_at"`
}
