package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProposalStatus tracks a budget proposal through its approval workflow.
type ProposalStatus string

// Proposal statuses.
const (
	ProposalDraft    ProposalStatus = "draft"
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

// Proposal is a departmental budget request.
type Proposal struct {
	SubmittedAt time.Time
	ID          string
	Title       string
	Department  string
	Category    string
	SubmittedBy string
	Status      ProposalStatus
	Amount      decimal.Decimal
}
