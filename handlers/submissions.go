package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/notify"
	"github.com/bitirgenalperen/ilkevim-sub000/pkg/query"
	"github.com/bitirgenalperen/ilkevim-sub000/repository"
	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gin-gonic/gin"
)

type SubmissionsHandler struct {
	store      SubmissionStore
	properties PropertyStore
	notifier   notify.Notifier
}

func NewSubmissionsHandler(store SubmissionStore, properties PropertyStore, notifier notify.Notifier) *SubmissionsHandler {
	return &SubmissionsHandler{store: store, properties: properties, notifier: notifier}
}

type submissionRequest struct {
	ContactName   string   `json:"contactName" binding:"required,max=100"`
	ContactEmail  string   `json:"contactEmail" binding:"required,email,max=200"`
	ContactPhone  string   `json:"contactPhone" binding:"max=40"`
	Title         string   `json:"title" binding:"required,min=3,max=200"`
	Description   string   `json:"description" binding:"max=5000"`
	Price         float64  `json:"price" binding:"required,gt=0"`
	City          string   `json:"city" binding:"required,max=100"`
	Area          string   `json:"area" binding:"max=100"`
	Address       string   `json:"address" binding:"max=300"`
	PropertyType  string   `json:"propertyType" binding:"required"`
	Bedrooms      int      `json:"bedrooms" binding:"min=0,max=50"`
	Bathrooms     float64  `json:"bathrooms" binding:"min=0,max=50"`
	SquareFootage int      `json:"squareFootage" binding:"min=0"`
	Amenities     []string `json:"amenities" binding:"max=50,dive,max=50"`
}

// Create accepts a listing from the public form. It is stored as pending until an
// admin approves it.
func (h *SubmissionsHandler) Create(c *gin.Context) {
	var req submissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	if !slices.Contains(models.PropertyTypes, req.PropertyType) {
		c.JSON(http.StatusBadRequest, types.NewErrorResponseWithDetails(types.ErrorCodeValidation,
			"propertyType must be one of "+strings.Join(models.PropertyTypes, ", "),
			map[string]interface{}{"field": "propertyType"}))
		return
	}

	s, err := h.store.CreateSubmission(c.Request.Context(), &models.Submission{
		ContactName:   strings.TrimSpace(req.ContactName),
		ContactEmail:  strings.TrimSpace(req.ContactEmail),
		ContactPhone:  strings.TrimSpace(req.ContactPhone),
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		Price:         req.Price,
		City:          strings.TrimSpace(req.City),
		Area:          strings.TrimSpace(req.Area),
		Address:       strings.TrimSpace(req.Address),
		PropertyType:  req.PropertyType,
		Bedrooms:      req.Bedrooms,
		Bathrooms:     req.Bathrooms,
		SquareFootage: req.SquareFootage,
		Amenities:     cleanTags(req.Amenities),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	notify.Async(h.notifier, fmt.Sprintf("New listing submission #%d: %s, %s, £%.0f (%s)",
		s.ID, s.Title, s.City, s.Price, s.ContactEmail))
	c.JSON(http.StatusCreated, types.NewSuccessResponse(gin.H{"id": s.ID, "status": s.Status}))
}

func (h *SubmissionsHandler) List(c *gin.Context) {
	status := c.Query("status")
	if status != "" && status != models.SubmissionPending && status != models.SubmissionApproved && status != models.SubmissionRejected {
		badRequest(c, "invalid status")
		return
	}
	pagination := types.ParsePaginationParams(c)
	items, total, err := h.store.GetSubmissions(c.Request.Context(), status, pagination.Page, pagination.PageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(pagination.BuildResponse(items, total)))
}

// pending loads the submission named in the path, answering 404 or 409 itself.
func (h *SubmissionsHandler) pending(c *gin.Context) (*models.Submission, bool) {
	id, ok := intParam(c, "id")
	if !ok {
		return nil, false
	}
	s, err := h.store.GetSubmissionByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	if s == nil {
		notFound(c)
		return nil, false
	}
	if s.Status != models.SubmissionPending {
		alreadyModerated(c, s.Status)
		return nil, false
	}
	return s, true
}

func alreadyModerated(c *gin.Context, status string) {
	c.JSON(http.StatusConflict, types.NewErrorResponse(types.ErrorCodeConflict, "submission already "+status))
}

// draftFromSubmission turns a submission into an unpublished listing.
func draftFromSubmission(s *models.Submission) *models.Property {
	return &models.Property{
		Title:       s.Title,
		Description: s.Description,
		Price:       s.Price,
		Location:    models.Location{City: s.City, Area: s.Area, Address: s.Address},
		Features: models.Features{
			Bedrooms:      s.Bedrooms,
			Bathrooms:     s.Bathrooms,
			SquareFootage: s.SquareFootage,
			PropertyType:  s.PropertyType,
		},
		Amenities:   append([]string{}, s.Amenities...),
		ListingType: query.ListingStandard,
		Status:      models.PropertyStatusDraft,
	}
}

// Approve creates a draft listing from the submission and links it back.
func (h *SubmissionsHandler) Approve(c *gin.Context) {
	s, ok := h.pending(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p := draftFromSubmission(s)
	if err := h.properties.Create(ctx, p); err != nil {
		respondError(c, err)
		return
	}
	propertyID := p.ID.Hex()
	if err := h.store.SetSubmissionStatus(ctx, s.ID, models.SubmissionApproved, &propertyID); err != nil {
		// The submission could not be linked, so the draft is dropped.
		_, _ = h.properties.Delete(ctx, propertyID)
		if errors.Is(err, repository.ErrNotFound) {
			alreadyModerated(c, "moderated")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"id":         s.ID,
		"status":     models.SubmissionApproved,
		"propertyId": propertyID,
	}))
}

func (h *SubmissionsHandler) Reject(c *gin.Context) {
	s, ok := h.pending(c)
	if !ok {
		return
	}
	if err := h.store.SetSubmissionStatus(c.Request.Context(), s.ID, models.SubmissionRejected, nil); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			alreadyModerated(c, "moderated")
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"id": s.ID, "status": models.SubmissionRejected}))
}
