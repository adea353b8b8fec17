package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/query"
	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gin-gonic/gin"
)

type PropertiesHandler struct {
	store  PropertyStore
	images ImageStore
}

func NewPropertiesHandler(store PropertyStore, images ImageStore) *PropertiesHandler {
	return &PropertiesHandler{store: store, images: images}
}

// propertyView replaces the stored image keys with signed URLs.
type propertyView struct {
	*models.Property
	Images []string `json:"images"`
}

func (h *PropertiesHandler) view(ctx context.Context, p *models.Property) propertyView {
	return propertyView{Property: p, Images: signKeys(ctx, h.images, p.Images)}
}

func signKeys(ctx context.Context, images ImageStore, keys []string) []string {
	urls := make([]string, 0, len(keys))
	for _, key := range keys {
		u, err := images.SignedReadURL(ctx, key, 0)
		if err != nil {
			slog.WarnContext(ctx, "skipping unsignable image", "key", key, "err", err)
			continue
		}
		urls = append(urls, u)
	}
	return urls
}

func (h *PropertiesHandler) search(c *gin.Context, extra ...query.Predicate) {
	params, err := query.ParseValues(c.Request.URL.Query())
	if err != nil {
		respondError(c, err)
		return
	}
	pred, limit := query.Build(params)
	pred = pred.And(extra...)

	ctx := c.Request.Context()
	items, err := h.store.Find(ctx, pred, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	total, err := h.store.Count(ctx, pred)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]propertyView, 0, len(items))
	for _, p := range items {
		views = append(views, h.view(ctx, p))
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"items": views, "total": total}))
}

// List is the public search. Only active listings are visible.
func (h *PropertiesHandler) List(c *gin.Context) {
	h.search(c, query.Eq(query.FieldStatus, models.PropertyStatusActive))
}

// AdminList searches every listing, optionally narrowed by ?status=.
func (h *PropertiesHandler) AdminList(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		h.search(c)
		return
	}
	if !validStatus(status) {
		badRequest(c, "invalid status")
		return
	}
	h.search(c, query.Eq(query.FieldStatus, status))
}

func (h *PropertiesHandler) Get(c *gin.Context) {
	p, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil || p.Status != models.PropertyStatusActive {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(h.view(c.Request.Context(), p)))
}

func (h *PropertiesHandler) AdminGet(c *gin.Context) {
	p, err := h.store.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(h.view(c.Request.Context(), p)))
}

type propertyRequest struct {
	Title                *string           `json:"title" binding:"omitempty,min=3,max=200"`
	Description          *string           `json:"description" binding:"omitempty,max=10000"`
	DescriptionLocalized map[string]string `json:"descriptionLocalized"`
	Price                *float64          `json:"price" binding:"omitempty,gt=0"`
	Location             *models.Location  `json:"location"`
	Features             *models.Features  `json:"features"`
	Amenities            []string          `json:"amenities" binding:"omitempty,max=50,dive,max=50"`
	ListingType          *string           `json:"listingType" binding:"omitempty,oneof=standard featured"`
	Status               *string           `json:"status" binding:"omitempty,oneof=active draft sold"`
}

// apply copies the fields present in req onto p.
func (req propertyRequest) apply(p *models.Property) {
	if req.Title != nil {
		p.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.DescriptionLocalized != nil {
		p.DescriptionLocalized = req.DescriptionLocalized
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.Location != nil {
		p.Location = *req.Location
		p.Location.City = strings.TrimSpace(p.Location.City)
	}
	if req.Features != nil {
		p.Features = *req.Features
	}
	if req.Amenities != nil {
		p.Amenities = cleanTags(req.Amenities)
	}
	if req.ListingType != nil {
		p.ListingType = *req.ListingType
	}
	if req.Status != nil {
		p.Status = *req.Status
	}
}

// validateProperty checks what a stored listing must satisfy.
func validateProperty(p *models.Property) string {
	switch {
	case p.Title == "":
		return "title is required"
	case p.Price <= 0:
		return "price must be positive"
	case p.Location.City == "":
		return "location.city is required"
	case !slices.Contains(models.PropertyTypes, p.Features.PropertyType):
		return "features.propertyType must be one of " + strings.Join(models.PropertyTypes, ", ")
	case p.Features.Bedrooms < 0 || p.Features.Bathrooms < 0 || p.Features.SquareFootage < 0:
		return "features must not be negative"
	}
	return ""
}

func (h *PropertiesHandler) Create(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	p := &models.Property{ListingType: query.ListingStandard, Status: models.PropertyStatusDraft}
	req.apply(p)
	if msg := validateProperty(p); msg != "" {
		badRequest(c, msg)
		return
	}
	if err := h.store.Create(c.Request.Context(), p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(h.view(c.Request.Context(), p)))
}

func (h *PropertiesHandler) Update(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctx := c.Request.Context()
	p, err := h.store.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		notFound(c)
		return
	}
	req.apply(p)
	if msg := validateProperty(p); msg != "" {
		badRequest(c, msg)
		return
	}
	if err := h.store.Update(ctx, p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(h.view(ctx, p)))
}

func (h *PropertiesHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=active draft sold"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status must be one of active, draft, sold")
		return
	}
	found, err := h.store.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"status": req.Status}))
}

// Delete removes the listing and then its images. Storage failures are logged only:
// the listing is already gone.
func (h *PropertiesHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()
	p, err := h.store.GetByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		notFound(c)
		return
	}
	found, err := h.store.Delete(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !found {
		notFound(c)
		return
	}
	for _, key := range p.Images {
		if err := h.images.RemoveObject(ctx, key); err != nil {
			slog.WarnContext(ctx, "orphaned image left in storage", "key", key, "err", err)
		}
	}
	c.Status(http.StatusNoContent)
}

func validStatus(s string) bool {
	return s == models.PropertyStatusActive || s == models.PropertyStatusDraft || s == models.PropertyStatusSold
}

// cleanTags trims, drops blanks and removes duplicates, keeping first-seen order.
func cleanTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
