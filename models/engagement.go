package models

type EngagementType string

const (
	EngagementReinvest EngagementType = "REINVEST"
	EngagementDonate   EngagementType = "DONATE"
	EngagementGift     EngagementType = "GIFT"
)

type Direction string

const (
	DirectionIncoming Direction = "INCOMING"
	DirectionOutgoing Direction = "OUTGOING"
)

type EngagementTransaction struct {
	ID        uint           `json:"id"`
	Type      EngagementType `json:"type"`
	Amount    float64        `json:"amount"`
	Date      string         `json:"date"`
	Notes     string         `json:"notes,omitempty"`
	Direction Direction      `json:"direction,omitempty"`
	Project   *Project       `json:"project,omitempty"`
	FromUser  *User          `json:"fromUser,omitempty"`
	ToUser    *User          `json:"toUser,omitempty"`
}

// Label renders the transaction for history views; gifts are labelled by
// direction rather than type.
func (t EngagementTransaction) Label() string {
	switch t.Type {
	case EngagementReinvest:
		return "Reinvestment"
	case EngagementDonate:
		return "Donation"
	case EngagementGift:
		if t.Direction == DirectionIncoming {
			return "Gift Received"
		}
		return "Gift Sent"
	default:
		return string(t.Type)
	}
}

type EngagementStats struct {
	TotalReinvested   float64 `json:"totalReinvested"`
	TotalDonated      float64 `json:"totalDonated"`
	TotalGifted       float64 `json:"totalGifted"`
	TotalReceived     float64 `json:"totalReceived"`
	AvailableCredits  float64 `json:"availableCredits"`
	TotalTransactions int     `json:"totalTransactions"`
}
