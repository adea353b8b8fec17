package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
)

// pngBytes is a 1x1 PNG, enough for content sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01, 0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4,
	0x89, 0x00, 0x00, 0x00, 0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae,
	0x42, 0x60, 0x82,
}

func (s *APISuite) upload(method, path, filename string, content []byte) (int, envelope) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	s.Require().NoError(err)
	_, err = fw.Write(content)
	s.Require().NoError(err)
	s.Require().NoError(mw.Close())

	w := s.request(method, path, &buf, mw.FormDataContentType())
	var env envelope
	if w.Body.Len() > 0 {
		s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w.Code, env
}

func (s *APISuite) TestUploadPropertyImage() {
	p := s.seedProperty(models.Property{Title: "Mews house", Price: 900000, Status: models.PropertyStatusActive}, 0)
	s.login()

	code, env := s.upload(http.MethodPost, "/admin/properties/"+p.ID.Hex()+"/images", "Front.PNG", pngBytes)
	s.Require().Equal(http.StatusCreated, code)
	var res struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	s.decode(env, &res)
	s.True(strings.HasPrefix(res.Key, "properties/"+p.ID.Hex()+"/"), res.Key)
	s.True(strings.HasSuffix(res.Key, ".png"), res.Key)
	s.Equal("image/png", s.images.uploaded[res.Key])
	s.Contains(res.URL, "X-Amz-Signature")

	stored, _ := s.properties.GetByID(context.Background(), p.ID.Hex())
	s.Equal([]string{res.Key}, stored.Images)

	w, _ := s.do(http.MethodDelete, "/admin/properties/"+p.ID.Hex()+"/images?key="+res.Key, nil)
	s.Equal(http.StatusNoContent, w.Code)
	stored, _ = s.properties.GetByID(context.Background(), p.ID.Hex())
	s.Empty(stored.Images)
	s.Equal([]string{res.Key}, s.images.removed)

	w, _ = s.do(http.MethodDelete, "/admin/properties/"+p.ID.Hex()+"/images?key="+res.Key, nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *APISuite) TestUploadRejectsByContentNotName() {
	p := s.seedProperty(models.Property{Title: "Mews house", Price: 900000}, 0)
	s.login()

	code, env := s.upload(http.MethodPost, "/admin/properties/"+p.ID.Hex()+"/images", "photo.png", []byte("#!/bin/sh\necho not an image\n"))
	s.Equal(http.StatusUnsupportedMediaType, code)
	s.Equal("UNSUPPORTED_MEDIA_TYPE", env.Error.Code)
	s.Empty(s.images.uploaded)
}

func (s *APISuite) TestUploadTooLarge() {
	p := s.seedProperty(models.Property{Title: "Mews house", Price: 900000}, 0)
	s.login()
	s.images.conf.MaxSize = 10

	code, _ := s.upload(http.MethodPost, "/admin/properties/"+p.ID.Hex()+"/images", "a.png", pngBytes)
	s.Equal(http.StatusRequestEntityTooLarge, code)
}

func (s *APISuite) TestUploadUnknownProperty() {
	s.login()
	code, _ := s.upload(http.MethodPost, "/admin/properties/ffffffffffffffffffffffff/images", "a.png", pngBytes)
	s.Equal(http.StatusNotFound, code)
}

func (s *APISuite) TestUploadEventImageReplacesPrevious() {
	old := "events/1/old.png"
	e, _ := s.events.CreateEvent(context.Background(), &models.Event{
		Title: "Open house", City: "Leeds", StartsAt: time.Now().Add(time.Hour), EndsAt: time.Now().Add(2 * time.Hour), ImageKey: &old,
	})
	s.login()

	code, env := s.upload(http.MethodPut, "/admin/events/1/image", "banner.png", pngBytes)
	s.Require().Equal(http.StatusCreated, code)
	var res struct {
		Key string `json:"key"`
	}
	s.decode(env, &res)

	stored, _ := s.events.GetEventByID(context.Background(), e.ID)
	s.Equal(res.Key, *stored.ImageKey)
	s.Equal([]string{old}, s.images.removed)
}
