package models

type Wallet struct {
	ID            uint    `json:"id"`
	User          *User   `json:"user,omitempty"`
	Balance       float64 `json:"balance"`
	TotalEarnings float64 `json:"totalEarnings"`
	TotalInvested float64 `json:"totalInvested"`
}

type WalletTransaction struct {
	ID     uint    `json:"id"`
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
	Notes  string  `json:"notes,omitempty"`
}

// PayableAmount applies a discount to an amount, never going below zero.
func PayableAmount(amount, discount float64) float64 {
	if discount >= amount {
		return 0
	}
	return amount - discount
}
