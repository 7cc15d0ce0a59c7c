package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// UserHandler serves the admin user management endpoints.
type UserHandler struct {
	Users      UserStore
	BcryptCost int
	Log        *zap.Logger
}

func NewUserHandler(u UserStore, bcryptCost int, log *zap.Logger) *UserHandler {
	return &UserHandler{Users: u, BcryptCost: bcryptCost, Log: log}
}

type createUserReq struct {
	Name      string `json:"name" validate:"required,max=50"`
	StudentID string `json:"student_id" validate:"required,max=20"`
	Password  string `json:"password" validate:"omitempty,min=6,max=72"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
	Role      string `json:"role" validate:"omitempty,oneof=user admin"`
}

type updateUserReq struct {
	Name      *string `json:"name" validate:"omitempty,min=1,max=50"`
	StudentID *string `json:"student_id" validate:"omitempty,min=1,max=20"`
	Phone     *string `json:"phone" validate:"omitempty,max=20"`
	Role      *string `json:"role" validate:"omitempty,oneof=user admin"`
}

func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := withTimeout(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return okList(c, users)
}

func (h *UserHandler) Get(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, u)
}

// Create adds a user. Without a password the default one is set.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	password := req.Password
	if password == "" {
		password = utils.DefaultPassword
	}
	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	hash, err := utils.HashPassword(password, h.BcryptCost)
	if err != nil {
		return respond(c, h.Log, err)
	}

	ctx, cancel := withTimeout(c)
	defer cancel()
	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		StudentID:    strings.TrimSpace(req.StudentID),
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return respond(c, h.Log, err)
	}
	created, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusCreated, created)
}

func (h *UserHandler) Update(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	var req updateUserReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.StudentID != nil {
		u.StudentID = strings.TrimSpace(*req.StudentID)
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		u.Role = *req.Role
	}
	if err := h.Users.Update(ctx, u); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, u)
}

func (h *UserHandler) Delete(c echo.Context) error {
	id, valid := pathID(c, "id")
	if !valid {
		return fail(c, http.StatusBadRequest, "invalid user id")
	}
	ctx, cancel := withTimeout(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Info("user deleted", zap.Uint64("user_id", id), zap.Uint64("by_user", caller(c).UserID))
	return okMessage(c, "user deleted")
}
