package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/models"
)

type eventsPage struct {
	Data []struct {
		ID       int    `json:"id"`
		Title    string `json:"title"`
		City     string `json:"city"`
		ImageURL string `json:"imageUrl"`
	} `json:"data"`
	Pagination struct {
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
		Total    int `json:"total"`
	} `json:"pagination"`
}

func (s *APISuite) seedEvents() {
	day := func(d int) time.Time { return time.Date(2026, 5, d, 18, 0, 0, 0, time.UTC) }
	key := "events/1/poster.jpg"
	for _, e := range []models.Event{
		{Title: "Buyers evening", City: "London", StartsAt: day(2), EndsAt: day(2).Add(2 * time.Hour), ImageKey: &key},
		{Title: "Landlord clinic", City: "Manchester", StartsAt: day(10), EndsAt: day(10).Add(time.Hour)},
		{Title: "Auction preview", City: "london", StartsAt: day(20), EndsAt: day(20).Add(time.Hour)},
		{Title: "Last year's fair", City: "London", StartsAt: day(1).AddDate(-1, 0, 0), EndsAt: day(1).AddDate(-1, 0, 0), IsArchived: true},
	} {
		e := e
		_, err := s.events.CreateEvent(context.Background(), &e)
		s.Require().NoError(err)
	}
}

func (s *APISuite) TestListEvents() {
	s.seedEvents()

	w, env := s.do(http.MethodGet, "/events", nil)
	s.Require().Equal(http.StatusOK, w.Code)
	var page eventsPage
	s.decode(env, &page)
	s.Equal(3, page.Pagination.Total)
	s.Equal(12, page.Pagination.PageSize)
	s.Equal("Buyers evening", page.Data[0].Title)
	s.Equal("https://cdn.test/events/1/poster.jpg?X-Amz-Signature=abc", page.Data[0].ImageURL)
	s.Empty(page.Data[1].ImageURL)
}

func (s *APISuite) TestListEventsFilters() {
	s.seedEvents()

	tests := []struct {
		query string
		want  []string
	}{
		{"city=London", []string{"Buyers evening", "Auction preview"}},
		{"from=2026-05-05", []string{"Landlord clinic", "Auction preview"}},
		{"to=2026-05-10", []string{"Buyers evening", "Landlord clinic"}},
		{"from=2026-05-03T00:00:00Z&to=2026-05-15", []string{"Landlord clinic"}},
		{"archived=true&city=London", []string{"Last year's fair", "Buyers evening", "Auction preview"}},
	}
	for _, tt := range tests {
		w, env := s.do(http.MethodGet, "/events?"+tt.query, nil)
		s.Require().Equal(http.StatusOK, w.Code, tt.query)
		var page eventsPage
		s.decode(env, &page)
		titles := make([]string, 0, len(page.Data))
		for _, e := range page.Data {
			titles = append(titles, e.Title)
		}
		s.Equal(tt.want, titles, tt.query)
	}
}

func (s *APISuite) TestListEventsRejectsBadDates() {
	for _, q := range []string{"from=yesterday", "to=2026-13-01", "from=2026-05-10&to=2026-05-01"} {
		w, _ := s.do(http.MethodGet, "/events?"+q, nil)
		s.Equal(http.StatusBadRequest, w.Code, q)
	}
}

func (s *APISuite) TestEventAdminLifecycle() {
	s.login()
	start := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)

	w, _ := s.do(http.MethodPost, "/admin/events", map[string]interface{}{
		"title": "Bad times", "city": "Leeds", "startsAt": start, "endsAt": start.Add(-time.Hour),
	})
	s.Equal(http.StatusBadRequest, w.Code)

	w, env := s.do(http.MethodPost, "/admin/events", map[string]interface{}{
		"title": "Open house", "city": "Leeds", "venue": "12 Park Row", "startsAt": start, "endsAt": start.Add(3 * time.Hour),
	})
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID int `json:"id"`
	}
	s.decode(env, &created)

	w, _ = s.do(http.MethodGet, "/events/1", nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPatch, "/admin/events/1/delete", nil)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/events/1", nil)
	s.Equal(http.StatusNotFound, w.Code)

	w, _ = s.do(http.MethodPatch, "/admin/events/1/restore", nil)
	s.Equal(http.StatusOK, w.Code)
	w, _ = s.do(http.MethodGet, "/events/1", nil)
	s.Equal(http.StatusOK, w.Code)

	w, _ = s.do(http.MethodPatch, "/admin/events/99/delete", nil)
	s.Equal(http.StatusNotFound, w.Code)
	w, _ = s.do(http.MethodGet, "/events/abc", nil)
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal(1, created.ID)
}
