package models

import "time"

type Event struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	ImageKey    *string   `json:"-"`
	IsArchived  bool      `json:"isArchived"`
	IsDeleted   bool      `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	ModifiedAt  time.Time `json:"modifiedAt"`
}

// EventFilters narrows the public event listing. Nil fields are unconstrained.
type EventFilters struct {
	City            *string
	From            *time.Time
	To              *time.Time
	IncludeArchived bool
	Page            int
	PageSize        int
}
