package query

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Listing types accepted by the listingType filter.
const (
	ListingStandard = "standard"
	ListingFeatured = "featured"
)

// Query-string keys recognised by ParseValues. Anything else is ignored.
const (
	KeyListingType      = "listingType"
	KeySearchTerm       = "searchTerm"
	KeyPropertyType     = "propertyType"
	KeyCity             = "city"
	KeyMinPrice         = "minPrice"
	KeyMaxPrice         = "maxPrice"
	KeyBedrooms         = "bedrooms"
	KeyMinBathrooms     = "minBathrooms"
	KeyMaxBathrooms     = "maxBathrooms"
	KeyMinSquareFootage = "minSquareFootage"
	KeyMaxSquareFootage = "maxSquareFootage"
	KeyAmenities        = "amenities"
	KeyLimit            = "limit"
)

// PropertyFilterParams is the typed form of the property search query string.
// A nil field (or nil Amenities) means no constraint on that field.
type PropertyFilterParams struct {
	ListingType      *string
	SearchTerm       *string
	PropertyType     *string
	City             *string
	MinPrice         *float64
	MaxPrice         *float64
	Bedrooms         *int
	MinBathrooms     *float64
	MaxBathrooms     *float64
	MinSquareFootage *int
	MaxSquareFootage *int
	Amenities        []string
	Limit            *int
}

// ValidationError reports a recognised filter key whose value could not be used.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// ParseValues converts raw query-string values into PropertyFilterParams.
//
// Empty values count as absent. A recognised key with an unusable value rejects the
// whole request: the first offending key is returned as a *ValidationError and no
// partial params are handed back.
func ParseValues(v url.Values) (PropertyFilterParams, error) {
	var p PropertyFilterParams
	var err error

	if s, ok := str(v, KeyListingType); ok {
		if s != ListingStandard && s != ListingFeatured {
			return PropertyFilterParams{}, &ValidationError{Field: KeyListingType, Value: s, Reason: "must be standard or featured"}
		}
		p.ListingType = &s
	}
	if s, ok := str(v, KeySearchTerm); ok {
		p.SearchTerm = &s
	}
	if s, ok := str(v, KeyPropertyType); ok {
		p.PropertyType = &s
	}
	if s, ok := str(v, KeyCity); ok {
		p.City = &s
	}

	if p.MinPrice, err = nonNegativeFloat(v, KeyMinPrice); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.MaxPrice, err = nonNegativeFloat(v, KeyMaxPrice); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.Bedrooms, err = nonNegativeInt(v, KeyBedrooms); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.MinBathrooms, err = nonNegativeFloat(v, KeyMinBathrooms); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.MaxBathrooms, err = nonNegativeFloat(v, KeyMaxBathrooms); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.MinSquareFootage, err = nonNegativeInt(v, KeyMinSquareFootage); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.MaxSquareFootage, err = nonNegativeInt(v, KeyMaxSquareFootage); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.Limit, err = nonNegativeInt(v, KeyLimit); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.Limit != nil && *p.Limit == 0 {
		return PropertyFilterParams{}, &ValidationError{Field: KeyLimit, Value: "0", Reason: "must be a positive integer"}
	}

	if err := checkBounds(KeyMinPrice, p.MinPrice, p.MaxPrice); err != nil {
		return PropertyFilterParams{}, err
	}
	if err := checkBounds(KeyMinBathrooms, p.MinBathrooms, p.MaxBathrooms); err != nil {
		return PropertyFilterParams{}, err
	}
	if p.MinSquareFootage != nil && p.MaxSquareFootage != nil && *p.MinSquareFootage > *p.MaxSquareFootage {
		return PropertyFilterParams{}, &ValidationError{
			Field:  KeyMinSquareFootage,
			Value:  strconv.Itoa(*p.MinSquareFootage),
			Reason: "must not exceed " + KeyMaxSquareFootage,
		}
	}

	p.Amenities = amenities(v[KeyAmenities])
	return p, nil
}

func str(v url.Values, key string) (string, bool) {
	s := strings.TrimSpace(v.Get(key))
	return s, s != ""
}

func nonNegativeFloat(v url.Values, key string) (*float64, error) {
	s, ok := str(v, key)
	if !ok {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, &ValidationError{Field: key, Value: s, Reason: "must be a number"}
	}
	if f < 0 {
		return nil, &ValidationError{Field: key, Value: s, Reason: "must not be negative"}
	}
	return &f, nil
}

func nonNegativeInt(v url.Values, key string) (*int, error) {
	s, ok := str(v, key)
	if !ok {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, &ValidationError{Field: key, Value: s, Reason: "must be an integer"}
	}
	if n < 0 {
		return nil, &ValidationError{Field: key, Value: s, Reason: "must not be negative"}
	}
	return &n, nil
}

func checkBounds(minKey string, min, max *float64) error {
	if min != nil && max != nil && *min > *max {
		return &ValidationError{
			Field:  minKey,
			Value:  strconv.FormatFloat(*min, 'f', -1, 64),
			Reason: "must not exceed the matching max bound",
		}
	}
	return nil
}

// amenities accepts repeated keys and comma separated lists, dropping blanks and duplicates.
func amenities(raw []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, entry := range raw {
		for _, part := range strings.Split(entry, ",") {
			tag := strings.TrimSpace(part)
			if tag == "" {
				continue
			}
			if _, dup := seen[tag]; dup {
				continue
			}
			seen[tag] = struct{}{}
			out = append(out, tag)
		}
	}
	return out
}
