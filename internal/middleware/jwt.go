package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/study-room-reservation/internal/model"
	"github.com/iliyamo/study-room-reservation/internal/repository"
	"github.com/iliyamo/study-room-reservation/internal/utils"
)

// UserLookup resolves the subject of an access token.
type UserLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.User, error)
}

// JWTAuth validates a Bearer access token and stores the user id and
// role in the context. The user must still exist; its stored role wins
// over the role claim so demotions apply before the token expires.
func JWTAuth(secret string, users UserLookup, log *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(auth, "Bearer ") {
				return deny(c, http.StatusUnauthorized, "missing bearer token")
			}
			id, _, err := utils.ParseAccessToken(secret, strings.TrimPrefix(auth, "Bearer "))
			if err != nil {
				return deny(c, http.StatusUnauthorized, "invalid or expired token")
			}

			u, err := users.GetByID(c.Request().Context(), id)
			if errors.Is(err, repository.ErrUserNotFound) {
				return deny(c, http.StatusUnauthorized, "user no longer exists")
			}
			if err != nil {
				log.Error("auth user lookup", zap.Uint64("user_id", id), zap.Error(err))
				return deny(c, http.StatusInternalServerError, "internal server error")
			}

			c.Set(ctxUserID, u.ID)
			c.Set(ctxRole, u.Role)
			return next(c)
		}
	}
}
