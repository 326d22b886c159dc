package domain

import "time"

type Identity struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// Lead is a visitor's contact details together with the result they were shown.
type Lead struct {
	ID          string
	Identity    Identity
	Result      CalculationResult
	SubmittedAt time.Time
}

type DeliveryStatus string

const (
	DeliveryPending   DeliveryStatus = "pending"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

type DeliveryReport struct {
	LeadID      string         `json:"leadId"`
	Status      DeliveryStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	SubmittedAt time.Time      `json:"submittedAt"`
	CompletedAt *time.Time     `json:"completedAt,omitempty"`
}
