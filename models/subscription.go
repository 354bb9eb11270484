package models

import "time"

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentSuccess PaymentStatus = "SUCCESS"
	PaymentFailed  PaymentStatus = "FAILED"
)

type Subscription struct {
	ID                 uint          `json:"id"`
	User               *User         `json:"user,omitempty"`
	Project            *Project      `json:"project,omitempty"`
	ContributionAmount float64       `json:"contributionAmount"`
	ReservedCapacity   float64       `json:"reservedCapacity"`
	PaymentOrderID     string        `json:"paymentOrderId,omitempty"`
	PaymentStatus      PaymentStatus `json:"paymentStatus"`
	SubscribedAt       *time.Time    `json:"subscribedAt,omitempty"`
}

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "PENDING"
	WithdrawalApproved WithdrawalStatus = "APPROVED"
	WithdrawalRejected WithdrawalStatus = "REJECTED"
	WithdrawalPaid     WithdrawalStatus = "PAID"
)

type WithdrawalRequest struct {
	ID           uint             `json:"id"`
	User         *User            `json:"user,omitempty"`
	Amount       float64          `json:"amount"`
	PayoutMethod string           `json:"payoutMethod"`
	UPIID        string           `json:"upiId,omitempty"`
	Status       WithdrawalStatus `json:"status"`
	RequestedAt  *time.Time       `json:"requestedAt,omitempty"`
	ProcessedAt  *time.Time       `json:"processedAt,omitempty"`
}

// WithdrawalCapInfo is a read-only snapshot used for pre-validation; the
// server recomputes it on every withdrawal request.
type WithdrawalCapInfo struct {
	MonthlyCap              float64 `json:"monthlyCap"`
	TotalWithdrawnThisMonth float64 `json:"totalWithdrawnThisMonth"`
	RemainingAmount         float64 `json:"remainingAmount"`
	CurrentMonth            string  `json:"currentMonth"`
}
