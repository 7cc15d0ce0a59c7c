package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
)

// FeedbackStore persists feedback.
type FeedbackStore interface {
	Create(ctx context.Context, f *model.Feedback) error
	GetByID(ctx context.Context, id uint64) (*model.Feedback, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Feedback, error)
	List(ctx context.Context, filter repository.FeedbackFilter, page repository.Page) ([]model.Feedback, int, error)
	Update(ctx context.Context, f *model.Feedback) error
	Delete(ctx context.Context, id uint64) error
}

type FeedbackHandler struct {
	Feedbacks FeedbackStore
	Log       *zap.Logger
}

func NewFeedbackHandler(f FeedbackStore, log *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{Feedbacks: f, Log: log}
}

type createFeedbackReq struct {
	Type    string `json:"type" validate:"required,oneof=environment equipment suggestion other"`
	Content string `json:"content" validate:"required,max=500"`
}

type updateFeedbackReq struct {
	Status   *string `json:"status" validate:"omitempty,oneof=pending in_progress resolved rejected"`
	Response *string `json:"response" validate:"omitempty,max=500"`
}

// Create submits feedback as the caller.
func (h *FeedbackHandler) Create(c echo.Context) error {
	var req createFeedbackReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return fail(c, http.StatusBadRequest, "content is required")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	f := &model.Feedback{UserID: caller(c).UserID, Type: req.Type, Content: content, Status: model.FeedbackPending}
	if err := h.Feedbacks.Create(ctx, f); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, f)
}

func (h *FeedbackHandler) Mine(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, err := h.Feedbacks.ListByUser(ctx, caller(c).UserID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okList(c, items)
}

// List pages all feedback for admins, filtered by ?status= and ?type=.
func (h *FeedbackHandler) List(c echo.Context) error {
	page := queryPage(c)
	filter := repository.FeedbackFilter{Status: c.QueryParam("status"), Type: c.QueryParam("type")}
	ctx, cancel := withTimeout(c)
	defer cancel()
	items, total, err := h.Feedbacks.List(ctx, filter, page)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okPage(c, items, total, page)
}

// Get returns one feedback to its author or an admin.
func (h *FeedbackHandler) Get(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid feedback id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	f, err := h.Feedbacks.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if cl := caller(c); !cl.IsAdmin() && cl.UserID != f.UserID {
		return fail(c, http.StatusForbidden, "not authorized to access this resource")
	}
	return ok(c, http.StatusOK, f)
}

func (h *FeedbackHandler) Update(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid feedback id")
	}
	var req updateFeedbackReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	f, err := h.Feedbacks.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if req.Status != nil {
		f.Status = *req.Status
	}
	if req.Response != nil {
		f.Response = req.Response
	}
	if err := h.Feedbacks.Update(ctx, f); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, f)
}

func (h *FeedbackHandler) Delete(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid feedback id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Feedbacks.Delete(ctx, id); err != nil {
		return respond(c, h.Log, err)
	}
	return okMessage(c, "feedback deleted")
}
