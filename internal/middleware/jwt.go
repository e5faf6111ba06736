package middleware

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"stockbridge/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

// Claims is the access token issued by the upstream API
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Caller returns the user id, falling back to a numeric subject
func (c *Claims) Caller() (int64, bool) {
	if c.UserID > 0 {
		return c.UserID, true
	}
	if id, err := strconv.ParseInt(c.Subject, 10, 64); err == nil && id > 0 {
		return id, true
	}
	return 0, false
}

// JWTMiddleware validates bearer tokens and forwards them on the request context
type JWTMiddleware struct {
	config echojwt.Config
	jwks   *keyfunc.JWKS
}

// NewJWTMiddleware verifies tokens against the JWKS at jwksURL when set, else with the HMAC secret
func NewJWTMiddleware(secret, jwksURL string) (*JWTMiddleware, error) {
	m := &JWTMiddleware{}

	m.config = echojwt.Config{
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return
			}
			userID, ok := claims.Caller()
			if !ok {
				return
			}
			ctx := common.WithCaller(c.Request().Context(), userID, token.Raw)
			c.SetRequest(c.Request().WithContext(ctx))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Invalid or expired token", nil))
		},
	}

	switch {
	case jwksURL != "":
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				log.Printf("WARN: failed to refresh JWKS: %v", err)
			},
		})
		if err != nil {
			return nil, err
		}
		m.jwks = jwks
		m.config.KeyFunc = jwks.Keyfunc
	case secret != "":
		m.config.SigningKey = []byte(secret)
	default:
		return nil, errors.New("either a JWT secret or a JWKS URL is required")
	}

	return m, nil
}

// Handler validates the token and rejects tokens that do not identify a user
func (m *JWTMiddleware) Handler() echo.MiddlewareFunc {
	validate := echojwt.WithConfig(m.config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return validate(func(c echo.Context) error {
			if _, ok := common.GetUserIDFromContext(c.Request().Context()); !ok {
				return c.JSON(http.StatusUnauthorized, common.CreateErrorResponse("UNAUTHORIZED", "Missing user_id in token", nil))
			}
			return next(c)
		})
	}
}

// Close stops the JWKS background refresh
func (m *JWTMiddleware) Close() {
	if m.jwks != nil {
		m.jwks.EndBackground()
	}
}
