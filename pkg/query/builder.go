package query

// Document paths of the properties collection that filters reach.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldListingType   = "listingType"
	FieldStatus        = "status"
	FieldPropertyType  = "features.propertyType"
	FieldCity          = "location.city"
	FieldPrice         = "price"
	FieldBedrooms      = "features.bedrooms"
	FieldBathrooms     = "features.bathrooms"
	FieldSquareFootage = "features.squareFootage"
	FieldAmenities     = "amenities"
)

// Build turns filter params into a predicate plus an optional result cap.
// Every present constraint is AND-ed in a fixed order; with no constraints the
// predicate is an empty All, which matches every record.
func Build(p PropertyFilterParams) (Predicate, *int) {
	var conds []Predicate

	if p.ListingType != nil {
		conds = append(conds, Eq(FieldListingType, *p.ListingType))
	}
	if p.SearchTerm != nil {
		conds = append(conds, Any(
			Contains(FieldTitle, *p.SearchTerm),
			Contains(FieldDescription, *p.SearchTerm),
		))
	}
	if p.PropertyType != nil {
		conds = append(conds, Eq(FieldPropertyType, *p.PropertyType))
	}
	if p.City != nil {
		conds = append(conds, Eq(FieldCity, *p.City))
	}
	if p.MinPrice != nil || p.MaxPrice != nil {
		conds = append(conds, Range(FieldPrice, p.MinPrice, p.MaxPrice))
	}
	// bedrooms is an exact match, unlike the bathroom and footage ranges.
	if p.Bedrooms != nil {
		conds = append(conds, Eq(FieldBedrooms, *p.Bedrooms))
	}
	if p.MinBathrooms != nil || p.MaxBathrooms != nil {
		conds = append(conds, Range(FieldBathrooms, p.MinBathrooms, p.MaxBathrooms))
	}
	if p.MinSquareFootage != nil || p.MaxSquareFootage != nil {
		conds = append(conds, Range(FieldSquareFootage, intToFloat(p.MinSquareFootage), intToFloat(p.MaxSquareFootage)))
	}
	if len(p.Amenities) > 0 {
		tags := make([]string, len(p.Amenities))
		copy(tags, p.Amenities)
		conds = append(conds, ContainsAll(FieldAmenities, tags))
	}

	var limit *int
	if p.Limit != nil {
		n := *p.Limit
		limit = &n
	}
	return All(conds...), limit
}

func intToFloat(n *int) *float64 {
	if n == nil {
		return nil
	}
	f := float64(*n)
	return &f
}
