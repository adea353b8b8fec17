package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
)

type listResult struct {
	Items []struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		Status      string   `json:"status"`
		Images      []string `json:"images"`
		ListingType string   `json:"listingType"`
	} `json:"items"`
	Total int `json:"total"`
}

func (s *APISuite) seedListings() (camden, draft *models.Property) {
	camden = s.seedProperty(models.Property{
		Title: "Two bed flat in Camden", Description: "Bright flat with a garden", Price: 250000,
		Location:  models.Location{City: "London", Area: "Camden"},
		Features:  models.Features{Bedrooms: 2, Bathrooms: 1, SquareFootage: 700, PropertyType: "apartment"},
		Amenities: []string{"garden", "parking"}, Images: []string{"properties/a/1.jpg", "broken/2.jpg"},
		ListingType: "standard", Status: models.PropertyStatusActive,
	}, 3*time.Hour)
	s.seedProperty(models.Property{
		Title: "Family house", Description: "Semi-detached", Price: 400000,
		Location:  models.Location{City: "Manchester"},
		Features:  models.Features{Bedrooms: 4, Bathrooms: 2, SquareFootage: 1500, PropertyType: "house"},
		Amenities: []string{"garden"}, ListingType: "standard", Status: models.PropertyStatusActive,
	}, 2*time.Hour)
	s.seedProperty(models.Property{
		Title: "Penthouse with river views", Price: 600000,
		Location:    models.Location{City: "London", Area: "Battersea"},
		Features:    models.Features{Bedrooms: 3, Bathrooms: 2.5, SquareFootage: 1800, PropertyType: "penthouse"},
		ListingType: "featured", Status: models.PropertyStatusActive,
	}, time.Hour)
	draft = s.seedProperty(models.Property{
		Title: "Unpublished studio", Price: 150000,
		Location:    models.Location{City: "London"},
		Features:    models.Features{PropertyType: "apartment"},
		ListingType: "standard", Status: models.PropertyStatusDraft,
	}, 0)
	return camden, draft
}

func (s *APISuite) TestListPropertiesOnlyActive() {
	s.seedListings()

	w, env := s.do(http.MethodGet, "/properties?city=London", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var res listResult
	s.decode(env, &res)

	s.Equal(2, res.Total)
	s.Require().Len(res.Items, 2)
	s.Equal("Penthouse with river views", res.Items[0].Title, "newest first")
	s.Equal("Two bed flat in Camden", res.Items[1].Title)
	for _, item := range res.Items {
		s.Equal(models.PropertyStatusActive, item.Status)
	}
}

func (s *APISuite) TestListPropertiesSignsImages() {
	s.seedListings()

	_, env := s.do(http.MethodGet, "/properties?searchTerm=camden", nil)
	var res listResult
	s.decode(env, &res)
	s.Require().Len(res.Items, 1)
	s.Equal([]string{"https://cdn.test/properties/a/1.jpg?X-Amz-Signature=abc"}, res.Items[0].Images)
	s.NotContains(string(env.Data), "broken/2.jpg")
}

func (s *APISuite) TestListPropertiesFilters() {
	s.seedListings()

	tests := []struct {
		query string
		want  int
	}{
		{"", 3},
		{"amenities=garden,parking", 1},
		{"amenities=garden", 2},
		{"minPrice=300000&maxPrice=600000", 2},
		{"listingType=featured", 1},
		{"bedrooms=4", 1},
		{"minBathrooms=2&maxBathrooms=2", 1},
		{"propertyType=apartment", 1},
		{"searchTerm=RIVER", 1},
		{"city=Leeds", 0},
	}
	for _, tt := range tests {
		w, env := s.do(http.MethodGet, "/properties?"+tt.query, nil)
		s.Require().Equal(http.StatusOK, w.Code, tt.query)
		var res listResult
		s.decode(env, &res)
		s.Equal(tt.want, res.Total, tt.query)
		s.Len(res.Items, tt.want, tt.query)
	}
}

func (s *APISuite) TestListPropertiesLimitKeepsTotal() {
	s.seedListings()
	_, env := s.do(http.MethodGet, "/properties?limit=1", nil)
	var res listResult
	s.decode(env, &res)
	s.Len(res.Items, 1)
	s.Equal(3, res.Total)
}

func (s *APISuite) TestListPropertiesRejectsBadFilter() {
	for query, field := range map[string]string{
		"minPrice=abc":              "minPrice",
		"bedrooms=-1":               "bedrooms",
		"minPrice=500&maxPrice=100": "minPrice",
		"limit=0":                   "limit",
	} {
		w, env := s.do(http.MethodGet, "/properties?"+query, nil)
		s.Equal(http.StatusBadRequest, w.Code, query)
		s.Require().NotNil(env.Error, query)
		s.Equal("VALIDATION_ERROR", env.Error.Code)
		s.Equal(field, env.Error.Details["field"], query)
	}
}

func (s *APISuite) TestGetProperty() {
	camden, draft := s.seedListings()

	w, env := s.do(http.MethodGet, "/properties/"+camden.ID.Hex(), nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var got struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	s.decode(env, &got)
	s.Equal(camden.ID.Hex(), got.ID)

	w, _ = s.do(http.MethodGet, "/properties/"+draft.ID.Hex(), nil)
	s.Equal(http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/properties/not-an-id", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestAdminRoutesNeedToken() {
	w, env := s.do(http.MethodGet, "/admin/properties", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("UNAUTHORIZED", env.Error.Code)

	s.token = "not.a.jwt"
	w, env = s.do(http.MethodGet, "/admin/properties", nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("INVALID_TOKEN", env.Error.Code)
}

func (s *APISuite) TestLogin() {
	w, _ := s.do(http.MethodPost, "/admin/login", map[string]string{"username": testAdmin, "password": "wrong"})
	s.Equal(http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/admin/login", map[string]string{"username": "someone", "password": testPassword})
	s.Equal(http.StatusUnauthorized, w.Code)
	w, _ = s.do(http.MethodPost, "/admin/login", map[string]string{})
	s.Equal(http.StatusBadRequest, w.Code)

	s.login()
	w, _ = s.do(http.MethodGet, "/admin/properties", nil)
	s.Equal(http.StatusOK, w.Code)
}

func (s *APISuite) TestAdminListSeesDrafts() {
	s.seedListings()
	s.login()

	_, env := s.do(http.MethodGet, "/admin/properties?status=draft", nil)
	var res listResult
	s.decode(env, &res)
	s.Equal(1, res.Total)
	s.Equal("Unpublished studio", res.Items[0].Title)

	w, _ := s.do(http.MethodGet, "/admin/properties?status=archived", nil)
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *APISuite) TestAdminPropertyLifecycle() {
	s.login()

	w, env := s.do(http.MethodPost, "/admin/properties", map[string]interface{}{
		"title":     "Canal-side loft",
		"price":     325000,
		"location":  map[string]string{"city": "Birmingham"},
		"features":  map[string]interface{}{"bedrooms": 1, "bathrooms": 1, "squareFootage": 600, "propertyType": "apartment"},
		"amenities": []string{"lift", " lift ", ""},
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID          string   `json:"id"`
		Status      string   `json:"status"`
		ListingType string   `json:"listingType"`
		Amenities   []string `json:"amenities"`
	}
	s.decode(env, &created)
	s.Equal(models.PropertyStatusDraft, created.Status)
	s.Equal("standard", created.ListingType)
	s.Equal([]string{"lift"}, created.Amenities)

	w, _ = s.do(http.MethodGet, "/properties/"+created.ID, nil)
	s.Equal(http.StatusNotFound, w.Code, "drafts are not public")

	w, _ = s.do(http.MethodPatch, "/admin/properties/"+created.ID+"/status", map[string]string{"status": "active"})
	s.Require().Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/properties/"+created.ID, nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPatch, "/admin/properties/"+created.ID, map[string]interface{}{"price": 310000})
	s.Require().Equal(http.StatusOK, w.Code)
	stored, _ := s.properties.GetByID(context.Background(), created.ID)
	s.Equal(310000.0, stored.Price)
	s.Equal("Canal-side loft", stored.Title)

	w, _ = s.do(http.MethodPatch, "/admin/properties/"+created.ID, map[string]interface{}{"price": -1})
	s.Equal(http.StatusBadRequest, w.Code)

	w, _ = s.do(http.MethodPatch, "/admin/properties/"+created.ID+"/status", map[string]string{"status": "gone"})
	s.Equal(http.StatusBadRequest, w.Code)

	s.properties.AddImage(context.Background(), created.ID, "properties/x/1.png")
	w, _ = s.do(http.MethodDelete, "/admin/properties/"+created.ID, nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.Equal([]string{"properties/x/1.png"}, s.images.removed)

	w, _ = s.do(http.MethodDelete, "/admin/properties/"+created.ID, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestAdminCreatePropertyValidation() {
	s.login()
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"title":    "Cottage",
			"price":    200000,
			"location": map[string]string{"city": "York"},
			"features": map[string]interface{}{"propertyType": "house"},
		}
	}

	bad := []func(m map[string]interface{}){
		func(m map[string]interface{}) { delete(m, "title") },
		func(m map[string]interface{}) { m["price"] = 0 },
		func(m map[string]interface{}) { m["location"] = map[string]string{"city": " "} },
		func(m map[string]interface{}) { m["features"] = map[string]interface{}{"propertyType": "castle"} },
		func(m map[string]interface{}) { m["listingType"] = "premium" },
	}
	for i, mutate := range bad {
		m := base()
		mutate(m)
		w, _ := s.do(http.MethodPost, "/admin/properties", m)
		s.Equal(http.StatusBadRequest, w.Code, "case %d", i)
	}

	w, _ := s.do(http.MethodPost, "/admin/properties", base())
	s.Equal(http.StatusCreated, w.Code)
}
