package withdrawal

import (
	"fmt"
	"regexp"

	"github.com/sunyield/sunyield-go/models"
)

// upiPattern matches local-part@bank-handle, e.g. john@okicici.
var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z]{3,}$`)

// Errors is the per-field validation outcome; empty strings mean the field is
// fine.
type Errors struct {
	Amount string
	UPIID  string
}

// OK reports whether every field validated.
func (e Errors) OK() bool {
	return e.Amount == "" && e.UPIID == ""
}

// Validate checks a prospective withdrawal against the current balance and
// the month's cap snapshot. It is a pure function of its inputs: re-running it
// with the same inputs yields the same errors.
func Validate(amount, minAmount, balance float64, capInfo *models.WithdrawalCapInfo, upiID string) Errors {
	var errs Errors

	switch {
	case amount <= 0:
		errs.Amount = "Amount must be greater than 0"
	case amount < minAmount:
		errs.Amount = fmt.Sprintf("Minimum withdrawal amount is ₹%.0f", minAmount)
	case amount > balance:
		errs.Amount = "Insufficient wallet balance"
	case capInfo != nil && amount > capInfo.RemainingAmount:
		errs.Amount = fmt.Sprintf("Monthly withdrawal limit exceeded. You can withdraw up to ₹%.0f this month.", capInfo.RemainingAmount)
	}

	if upiID == "" {
		errs.UPIID = "UPI ID is required"
	} else if !upiPattern.MatchString(upiID) {
		errs.UPIID = "Please enter a valid UPI ID (e.g., username@bank)"
	}

	return errs
}
