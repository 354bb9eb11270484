package models

import "time"

type ProjectStatus string

const (
	ProjectActive ProjectStatus = "ACTIVE"
	ProjectPaused ProjectStatus = "PAUSED"
)

type Efficiency string

const (
	EfficiencyHigh   Efficiency = "HIGH"
	EfficiencyMedium Efficiency = "MEDIUM"
	EfficiencyLow    Efficiency = "LOW"
)

type Project struct {
	ID                      uint          `json:"id"`
	Name                    string        `json:"name"`
	Location                string        `json:"location"`
	EnergyCapacity          float64       `json:"energyCapacity"`
	SubscriptionPrice       float64       `json:"subscriptionPrice"`
	MinContribution         float64       `json:"minContribution"`
	Efficiency              Efficiency    `json:"efficiency,omitempty"`
	OperationalValidityYear int           `json:"operationalValidityYear,omitempty"`
	Status                  ProjectStatus `json:"status"`
	Description             string        `json:"description,omitempty"`
	ImageURL                string        `json:"imageUrl,omitempty"`
}

// MinimumContribution falls back to the subscription price for projects
// created before flexible contributions existed.
func (p Project) MinimumContribution() float64 {
	if p.MinContribution > 0 {
		return p.MinContribution
	}
	return p.SubscriptionPrice
}

// Expired reports whether the project's operational validity year has passed.
// Display-level only: an expired project can still be contributed to.
func (p Project) Expired(now time.Time) bool {
	return p.OperationalValidityYear > 0 && p.OperationalValidityYear < now.Year()
}
