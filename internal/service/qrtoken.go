package service

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// QRClaims are carried by a check-in QR token. ID is a random token id
// used by the replay guard.
type QRClaims struct {
	ReservationID uint64 `json:"rid"`
	jwt.RegisteredClaims
}

// QRIssuer signs and verifies short-lived check-in tokens with HS256.
// A token binds a reservation id to an expiry; anything else about the
// check-in is re-checked against storage.
type QRIssuer struct {
	secret []byte
	ttl    time.Duration
}

func NewQRIssuer(secret string, ttl time.Duration) *QRIssuer {
	if ttl <= 0 {
		ttl = 300 * time.Second
	}
	return &QRIssuer{secret: []byte(secret), ttl: ttl}
}

// TTL is the lifetime of issued tokens.
func (q *QRIssuer) TTL() time.Duration { return q.ttl }

// Issue signs a token for the reservation owned by userID.
func (q *QRIssuer) Issue(reservationID, userID uint64, now time.Time) (string, time.Time, error) {
	exp := now.Add(q.ttl)
	claims := QRClaims{
		ReservationID: reservationID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(q.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tok, exp, nil
}

// Parse verifies signature and expiry as of now. Tampered, expired and
// malformed tokens all yield ErrInvalidQR.
func (q *QRIssuer) Parse(raw string, now time.Time) (*QRClaims, error) {
	if raw == "" {
		return nil, ErrInvalidQR
	}
	var claims QRClaims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return q.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !tok.Valid {
		return nil, ErrInvalidQR
	}
	if claims.ReservationID == 0 || claims.ID == "" {
		return nil, ErrInvalidQR
	}
	return &claims, nil
}

// Remaining returns how long the token stays valid after now.
func (c *QRClaims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}
