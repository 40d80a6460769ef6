package models

import "time"

// Appointment is a confirmed booking of a provider's slot by a customer.
// Records are immutable after creation; rescheduling is a delete+create
// at a higher layer, not an update.
type Appointment struct {
	ID         string    `json:"id"`
	ProviderID string    `json:"provider_id"`
	CustomerID string    `json:"customer_id"`
	Date       time.Time `json:"date"`
	Type       string    `json:"type"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
