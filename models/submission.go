package models

import "time"

const (
	SubmissionPending  = "pending"
	SubmissionApproved = "approved"
	SubmissionRejected = "rejected"
)

// Submission is a listing sent through the public form, waiting for moderation.
type Submission struct {
	ID            int       `json:"id"`
	ContactName   string    `json:"contactName"`
	ContactEmail  string    `json:"contactEmail"`
	ContactPhone  string    `json:"contactPhone,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	City          string    `json:"city"`
	Area          string    `json:"area,omitempty"`
	Address       string    `json:"address,omitempty"`
	PropertyType  string    `json:"propertyType"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     float64   `json:"bathrooms"`
	SquareFootage int       `json:"squareFootage"`
	Amenities     []string  `json:"amenities"`
	Status        string    `json:"status"`
	PropertyID    *string   `json:"propertyId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	ModifiedAt    time.Time `json:"modifiedAt"`
}
