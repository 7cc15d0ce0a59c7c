package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/config"
	"github.com/iliyamo/study-room-reservation/internal/middleware"
	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// UserStore is the user persistence the auth and admin handlers use.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByStudentID(ctx context.Context, studentID string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, u *model.User) error
	UpdateProfile(ctx context.Context, id uint64, name, phone string) error
	Delete(ctx context.Context, id uint64) error
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	Store(ctx context.Context, userID uint64, tokenHash string, exp time.Time) error
	Validate(ctx context.Context, tokenHash string, now time.Time) (uint64, error)
	Revoke(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint64) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Tokens TokenStore
	Log    *zap.Logger
	Now    func() time.Time
}

func NewAuthHandler(cfg config.Config, u UserStore, t TokenStore, log *zap.Logger) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t, Log: log, Now: time.Now}
}

type registerReq struct {
	Name      string `json:"name" validate:"required,max=50"`
	StudentID string `json:"student_id" validate:"required,max=20"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Phone     string `json:"phone" validate:"omitempty,max=20"`
}

type loginReq struct {
	StudentID string `json:"student_id" validate:"required"`
	Password  string `json:"password" validate:"required"`
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type updateMeReq struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=50"`
	Phone *string `json:"phone" validate:"omitempty,max=20"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type authResp struct {
	User    *model.User `json:"user"`
	Access  tokenPart   `json:"access"`
	Refresh tokenPart   `json:"refresh"`
}

// issue creates an access/refresh pair and stores the refresh hash.
func (h *AuthHandler) issue(ctx context.Context, u *model.User) (*authResp, error) {
	now := h.Now()
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, time.Duration(h.Cfg.AccessTTLMin)*time.Minute, now)
	if err != nil {
		return nil, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays, now)
	if err != nil {
		return nil, err
	}
	if err := h.Tokens.Store(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return nil, err
	}
	return &authResp{
		User:    u,
		Access:  tokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}

// Register creates a user with role user and returns tokens immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return respond(c, h.Log, err)
	}
	u := &model.User{
		Name:         strings.TrimSpace(req.Name),
		StudentID:    strings.TrimSpace(req.StudentID),
		PasswordHash: hash,
		Phone:        strings.TrimSpace(req.Phone),
		Role:         model.RoleUser,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return respond(c, h.Log, err)
	}
	created, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return respond(c, h.Log, err)
	}
	resp, err := h.issue(ctx, created)
	if err != nil {
		return respond(c, h.Log, err)
	}
	h.Log.Info("user registered", zap.Uint64("user_id", u.ID))
	return ok(c, http.StatusCreated, resp)
}

// Login verifies the student id and password and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.GetByStudentID(ctx, req.StudentID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fail(c, http.StatusUnauthorized, "invalid student id or password")
	}
	if err != nil {
		return respond(c, h.Log, err)
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return fail(c, http.StatusUnauthorized, "invalid student id or password")
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, resp)
}

// Refresh rotates a refresh token: the presented one is revoked and a
// new pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return fail(c, http.StatusBadRequest, "refresh_token is required")
	}
	hash := utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken))
	ctx, cancel := withTimeout(c)
	defer cancel()

	userID, err := h.Tokens.Validate(ctx, hash, h.Now())
	if errors.Is(err, repository.ErrRefreshInvalid) {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return respond(c, h.Log, err)
	}
	u, err := h.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrUserNotFound) {
		return fail(c, http.StatusUnauthorized, "invalid refresh token")
	}
	if err != nil {
		return respond(c, h.Log, err)
	}
	if err := h.Tokens.Revoke(ctx, hash); err != nil {
		return respond(c, h.Log, err)
	}
	resp, err := h.issue(ctx, u)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, resp)
}

// Logout revokes the refresh token in the body, or every refresh token
// of the bearer when no body token is given.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)
	ctx, cancel := withTimeout(c)
	defer cancel()

	if raw != "" {
		hash := utils.HashRefreshRaw(raw)
		if _, err := h.Tokens.Validate(ctx, hash, h.Now()); err != nil {
			if errors.Is(err, repository.ErrRefreshInvalid) {
				return fail(c, http.StatusUnauthorized, "invalid refresh token")
			}
			return respond(c, h.Log, err)
		}
		if err := h.Tokens.Revoke(ctx, hash); err != nil {
			return respond(c, h.Log, err)
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get(echo.HeaderAuthorization)
	if !strings.HasPrefix(auth, "Bearer ") {
		return fail(c, http.StatusBadRequest, "provide Authorization header or refresh_token")
	}
	uid, _, err := utils.ParseAccessToken(h.Cfg.JWTSecret, strings.TrimPrefix(auth, "Bearer "))
	if err != nil {
		return fail(c, http.StatusUnauthorized, "invalid or expired token")
	}
	if err := h.Tokens.RevokeAllForUser(ctx, uid); err != nil {
		return respond(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c echo.Context) error {
	id, _ := middleware.UserID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, u)
}

// UpdateMe edits the caller's name and phone. Other fields are ignored.
func (h *AuthHandler) UpdateMe(c echo.Context) error {
	var req updateMeReq
	if msg, valid := bind(c, &req); !valid {
		return fail(c, http.StatusBadRequest, msg)
	}
	id, _ := middleware.UserID(c)
	ctx, cancel := withTimeout(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return respond(c, h.Log, err)
	}
	if req.Name != nil {
		u.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := h.Users.UpdateProfile(ctx, id, u.Name, u.Phone); err != nil {
		return respond(c, h.Log, err)
	}
	return ok(c, http.StatusOK, u)
}
