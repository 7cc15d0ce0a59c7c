package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

type memFeedbacks struct {
	rows      []model.Feedback
	gotFilter repository.FeedbackFilter
	gotPage   repository.Page
}

func (m *memFeedbacks) Create(_ context.Context, f *model.Feedback) error {
	f.ID = uint64(len(m.rows) + 1)
	m.rows = append(m.rows, *f)
	return nil
}

func (m *memFeedbacks) GetByID(_ context.Context, id uint64) (*model.Feedback, error) {
	for _, f := range m.rows {
		if f.ID == id {
			return &f, nil
		}
	}
	return nil, repository.ErrFeedbackNotFound
}

func (m *memFeedbacks) ListByUser(_ context.Context, userID uint64) ([]model.Feedback, error) {
	var out []model.Feedback
	for _, f := range m.rows {
		if f.UserID == userID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFeedbacks) List(_ context.Context, filter repository.FeedbackFilter, page repository.Page) ([]model.Feedback, int, error) {
	m.gotFilter, m.gotPage = filter, page
	var match []model.Feedback
	for _, f := range m.rows {
		if (filter.Status == "" || f.Status == filter.Status) && (filter.Type == "" || f.Type == filter.Type) {
			match = append(match, f)
		}
	}
	from := min(page.Offset(), len(match))
	to := min(from+page.Limit, len(match))
	return match[from:to], len(match), nil
}

func (m *memFeedbacks) Update(_ context.Context, f *model.Feedback) error {
	for i := range m.rows {
		if m.rows[i].ID == f.ID {
			m.rows[i] = *f
			return nil
		}
	}
	return repository.ErrFeedbackNotFound
}

func (m *memFeedbacks) Delete(_ context.Context, id uint64) error {
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows = append(m.rows[:i], m.rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrFeedbackNotFound
}

func TestFeedbackCreateAndAccess(t *testing.T) {
	store := &memFeedbacks{}
	h := NewFeedbackHandler(store, zap.NewNop())
	e := newEcho()
	e.POST("/feedbacks", h.Create, as(1, model.RoleUser))
	e.GET("/feedbacks/:id", h.Get, as(2, model.RoleUser))
	e.GET("/admin/feedbacks/:id", h.Get, as(9, model.RoleAdmin))
	e.GET("/feedbacks/my", h.Mine, as(1, model.RoleUser))

	rec := do(e, http.MethodPost, "/feedbacks", map[string]any{"type": "equipment", "content": "  socket broken  "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := decode(t, rec)["data"].(map[string]any)
	assert.Equal(t, "socket broken", data["content"])
	assert.Equal(t, model.FeedbackPending, data["status"])
	assert.EqualValues(t, 1, data["user_id"])

	rec = do(e, http.MethodPost, "/feedbacks", map[string]any{"type": "equipment", "content": "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "content is required", decode(t, rec)["message"])

	assert.Equal(t, http.StatusForbidden, do(e, http.MethodGet, "/feedbacks/1", nil).Code)
	assert.Equal(t, http.StatusOK, do(e, http.MethodGet, "/admin/feedbacks/1", nil).Code)
	assert.Equal(t, http.StatusNotFound, do(e, http.MethodGet, "/admin/feedbacks/5", nil).Code)

	m := decode(t, do(e, http.MethodGet, "/feedbacks/my", nil))
	assert.EqualValues(t, 1, m["count"])
}

func TestFeedbackListPaging(t *testing.T) {
	store := &memFeedbacks{}
	for i := 0; i < 12; i++ {
		status := model.FeedbackPending
		if i%3 == 0 {
			status = model.FeedbackResolved
		}
		store.rows = append(store.rows, model.Feedback{ID: uint64(i + 1), UserID: 1, Type: model.FeedbackOther,
			Content: "c", Status: status, CreatedAt: time.Now()})
	}
	h := NewFeedbackHandler(store, zap.NewNop())
	e := newEcho()
	e.GET("/feedbacks", h.List, as(9, model.RoleAdmin))

	m := decode(t, do(e, http.MethodGet, "/feedbacks?page=2&limit=5", nil))
	assert.EqualValues(t, 12, m["total"])
	assert.EqualValues(t, 5, m["count"])
	assert.EqualValues(t, 2, m["page"])
	assert.EqualValues(t, 3, m["pages"])

	m = decode(t, do(e, http.MethodGet, "/feedbacks?status=resolved", nil))
	assert.EqualValues(t, 4, m["total"])
	assert.Equal(t, model.FeedbackResolved, store.gotFilter.Status)
	assert.Equal(t, repository.Page{Page: 1, Limit: 10}, store.gotPage)

	decode(t, do(e, http.MethodGet, "/feedbacks?page=-3&limit=1000", nil))
	assert.Equal(t, repository.Page{Page: 1, Limit: 100}, store.gotPage)
}

func TestFeedbackUpdate(t *testing.T) {
	store := &memFeedbacks{rows: []model.Feedback{{ID: 1, UserID: 1, Type: model.FeedbackOther, Content: "c", Status: model.FeedbackPending}}}
	h := NewFeedbackHandler(store, zap.NewNop())
	e := newEcho()
	e.PUT("/feedbacks/:id", h.Update, as(9, model.RoleAdmin))
	e.DELETE("/feedbacks/:id", h.Delete, as(9, model.RoleAdmin))

	rec := do(e, http.MethodPut, "/feedbacks/1", map[string]any{"status": "closed"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPut, "/feedbacks/1", map[string]any{"status": "resolved", "response": "fixed"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.FeedbackResolved, store.rows[0].Status)
	require.NotNil(t, store.rows[0].Response)
	assert.Equal(t, "fixed", *store.rows[0].Response)

	assert.Equal(t, http.StatusOK, do(e, http.MethodDelete, "/feedbacks/1", nil).Code)
	assert.Empty(t, store.rows)
}
