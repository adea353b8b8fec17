package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gin-gonic/gin"
)

type EventsHandler struct {
	store  EventStore
	images ImageStore
}

func NewEventsHandler(store EventStore, images ImageStore) *EventsHandler {
	return &EventsHandler{store: store, images: images}
}

type eventView struct {
	*models.Event
	ImageURL string `json:"imageUrl,omitempty"`
}

func (h *EventsHandler) view(ctx context.Context, e *models.Event) eventView {
	v := eventView{Event: e}
	if e.ImageKey != nil {
		if urls := signKeys(ctx, h.images, []string{*e.ImageKey}); len(urls) == 1 {
			v.ImageURL = urls[0]
		}
	}
	return v
}

// parseDate accepts RFC 3339 timestamps or plain dates. endOfDay moves a plain date
// to its last second so "to=2026-05-01" includes that day.
func parseDate(raw string, endOfDay bool) (*time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Second)
	}
	return &t, nil
}

func (h *EventsHandler) List(c *gin.Context) {
	pagination := types.ParsePaginationParams(c)
	filters := models.EventFilters{
		IncludeArchived: strings.EqualFold(c.Query("archived"), "true"),
		Page:            pagination.Page,
		PageSize:        pagination.PageSize,
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		filters.City = &city
	}
	var err error
	if raw := c.Query("from"); raw != "" {
		if filters.From, err = parseDate(raw, false); err != nil {
			badRequest(c, "invalid from date")
			return
		}
	}
	if raw := c.Query("to"); raw != "" {
		if filters.To, err = parseDate(raw, true); err != nil {
			badRequest(c, "invalid to date")
			return
		}
	}
	if filters.From != nil && filters.To != nil && filters.To.Before(*filters.From) {
		badRequest(c, "to must not be before from")
		return
	}

	ctx := c.Request.Context()
	events, total, err := h.store.GetEvents(ctx, filters)
	if err != nil {
		respondError(c, err)
		return
	}
	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, h.view(ctx, e))
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(pagination.BuildResponse(views, total)))
}

func (h *EventsHandler) Get(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	e, err := h.store.GetEventByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if e == nil || e.IsDeleted {
		notFound(c)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(h.view(c.Request.Context(), e)))
}

func (h *EventsHandler) Create(c *gin.Context) {
	var req struct {
		Title       string    `json:"title" binding:"required,max=200"`
		Description string    `json:"description" binding:"max=5000"`
		City        string    `json:"city" binding:"required,max=100"`
		Venue       string    `json:"venue" binding:"max=200"`
		StartsAt    time.Time `json:"startsAt" binding:"required"`
		EndsAt      time.Time `json:"endsAt" binding:"required,gtefield=StartsAt"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	e, err := h.store.CreateEvent(c.Request.Context(), &models.Event{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		City:        strings.TrimSpace(req.City),
		Venue:       req.Venue,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(h.view(c.Request.Context(), e)))
}

func (h *EventsHandler) setDeleted(c *gin.Context, deleted bool) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	if err := h.store.SetEventDeleted(c.Request.Context(), id, deleted); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{"id": id, "isDeleted": deleted}))
}

func (h *EventsHandler) Delete(c *gin.Context)  { h.setDeleted(c, true) }
func (h *EventsHandler) Restore(c *gin.Context) { h.setDeleted(c, false) }
