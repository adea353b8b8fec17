package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/bitirgenalperen/ilkevim-sub000/initializers"
	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for form boundaries and headers above the file limit.
const multipartOverhead = 1 << 20

type ImagesHandler struct {
	properties PropertyStore
	events     EventImageStore
	images     ImageStore
	maxSize    int64
}

// EventImageStore is the part of the events repository that attaches images.
type EventImageStore interface {
	SetEventImage(ctx context.Context, id int, key *string) (*string, error)
}

func NewImagesHandler(properties PropertyStore, events EventImageStore, images ImageStore, maxSize int64) *ImagesHandler {
	return &ImagesHandler{properties: properties, events: events, images: images, maxSize: maxSize}
}

// receive reads the "file" form field, sniffs its real type and stores it under dir.
// On failure the response is already written.
func (h *ImagesHandler) receive(c *gin.Context, dir string) (string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+multipartOverhead)

	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			respondError(c, initializers.ErrFileTooLarge)
			return "", false
		}
		badRequest(c, "file is required")
		return "", false
	}

	sniff, err := file.Open()
	if err != nil {
		badRequest(c, "cannot open uploaded file")
		return "", false
	}
	mt, err := mimetype.DetectReader(sniff)
	_ = sniff.Close()
	if err != nil {
		badRequest(c, "failed to detect file type")
		return "", false
	}
	contentType := strings.Split(mt.String(), ";")[0]
	if err := h.images.CheckFileAllowed(file.Size, contentType); err != nil {
		respondError(c, err)
		return "", false
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, err)
		return "", false
	}
	defer src.Close()

	key := initializers.GenerateUniqueKey(file.Filename, dir)
	if _, err := h.images.UploadObject(c.Request.Context(), src, file.Size, key, contentType); err != nil {
		respondError(c, err)
		return "", false
	}
	return key, true
}

func (h *ImagesHandler) discard(c *gin.Context, key string) {
	if err := h.images.RemoveObject(c.Request.Context(), key); err != nil {
		slog.WarnContext(c.Request.Context(), "orphaned image left in storage", "key", key, "err", err)
	}
}

func (h *ImagesHandler) created(c *gin.Context, key string) {
	u, err := h.images.SignedReadURL(c.Request.Context(), key, 0)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, types.NewSuccessResponse(gin.H{"key": key, "url": u}))
}

func (h *ImagesHandler) UploadPropertyImage(c *gin.Context) {
	id := c.Param("id")
	p, err := h.properties.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil {
		notFound(c)
		return
	}

	key, ok := h.receive(c, "properties/"+id)
	if !ok {
		return
	}
	found, err := h.properties.AddImage(c.Request.Context(), id, key)
	if err != nil || !found {
		h.discard(c, key)
		if err != nil {
			respondError(c, err)
		} else {
			notFound(c)
		}
		return
	}
	h.created(c, key)
}

// DeletePropertyImage detaches ?key= from the listing and removes the object.
func (h *ImagesHandler) DeletePropertyImage(c *gin.Context) {
	id := c.Param("id")
	key := c.Query("key")
	if key == "" {
		badRequest(c, "key is required")
		return
	}
	p, err := h.properties.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if p == nil || !slices.Contains(p.Images, key) {
		notFound(c)
		return
	}
	if _, err := h.properties.RemoveImage(c.Request.Context(), id, key); err != nil {
		respondError(c, err)
		return
	}
	h.discard(c, key)
	c.Status(http.StatusNoContent)
}

// UploadEventImage replaces the image of an event.
func (h *ImagesHandler) UploadEventImage(c *gin.Context) {
	id, ok := intParam(c, "id")
	if !ok {
		return
	}
	key, ok := h.receive(c, "events/"+strconv.Itoa(id))
	if !ok {
		return
	}
	previous, err := h.events.SetEventImage(c.Request.Context(), id, &key)
	if err != nil {
		h.discard(c, key)
		respondError(c, err)
		return
	}
	if previous != nil {
		h.discard(c, *previous)
	}
	h.created(c, key)
}
