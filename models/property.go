package models

import (
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/pkg/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PropertyStatusActive = "active"
	PropertyStatusDraft  = "draft"
	PropertyStatusSold   = "sold"
)

var PropertyTypes = []string{"apartment", "house", "penthouse", "villa"}

type Location struct {
	City    string `bson:"city" json:"city"`
	Area    string `bson:"area" json:"area"`
	Address string `bson:"address" json:"address"`
}

type Features struct {
	Bedrooms      int     `bson:"bedrooms" json:"bedrooms"`
	Bathrooms     float64 `bson:"bathrooms" json:"bathrooms"`
	SquareFootage int     `bson:"squareFootage" json:"squareFootage"`
	PropertyType  string  `bson:"propertyType" json:"propertyType"`
	YearBuilt     int     `bson:"yearBuilt,omitempty" json:"yearBuilt,omitempty"`
}

// Property is a listing document. Images holds object storage keys, never URLs;
// handlers sign them per response.
type Property struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	DescriptionLocalized map[string]string  `bson:"descriptionLocalized,omitempty" json:"descriptionLocalized,omitempty"`
	Price                float64            `bson:"price" json:"price"`
	Location             Location           `bson:"location" json:"location"`
	Features             Features           `bson:"features" json:"features"`
	Amenities            []string           `bson:"amenities" json:"amenities"`
	Images               []string           `bson:"images" json:"-"`
	ListingType          string             `bson:"listingType" json:"listingType"`
	Status               string             `bson:"status" json:"status"`
	CreatedAt            time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Field exposes the filterable paths so predicates can be evaluated in memory.
func (p *Property) Field(path string) (any, bool) {
	switch path {
	case query.FieldTitle:
		return p.Title, true
	case query.FieldDescription:
		return p.Description, true
	case query.FieldListingType:
		return p.ListingType, true
	case query.FieldStatus:
		return p.Status, true
	case query.FieldPropertyType:
		return p.Features.PropertyType, true
	case query.FieldCity:
		return p.Location.City, true
	case query.FieldPrice:
		return p.Price, true
	case query.FieldBedrooms:
		return p.Features.Bedrooms, true
	case query.FieldBathrooms:
		return p.Features.Bathrooms, true
	case query.FieldSquareFootage:
		return p.Features.SquareFootage, true
	case query.FieldAmenities:
		return p.Amenities, true
	}
	return nil, false
}
