package handlers

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/bitirgenalperen/ilkevim-sub000/types"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL    = 12 * time.Hour
	tokenIssuer = "ilkevim-api"
)

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeUnauthorized, message))
}

// AuthMiddleware accepts an HS256 bearer token issued by Login and stores the
// admin username in the context under "adminUser".
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		parts := strings.Split(c.GetHeader("Authorization"), " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			unauthorized(c, "Authorization header required")
			return
		}
		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeInvalidToken, "Invalid token"))
			return
		}
		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, types.NewErrorResponse(types.ErrorCodeInvalidToken, "Invalid token claims"))
			return
		}
		c.Set("adminUser", sub)
		c.Next()
	}
}

// AuthHandler logs in the single agency admin account configured through
// ADMIN_USERNAME and ADMIN_PASSWORD_HASH.
type AuthHandler struct {
	username     string
	passwordHash []byte
	secret       []byte
	now          func() time.Time
}

func NewAuthHandler(username, passwordHash, secret string) *AuthHandler {
	return &AuthHandler{username: username, passwordHash: []byte(passwordHash), secret: []byte(secret), now: time.Now}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}
	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(h.passwordHash, []byte(req.Password))
	if !userOK || passErr != nil {
		unauthorized(c, "Invalid username or password")
		return
	}

	now := h.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   h.username,
		Issuer:    tokenIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
	})
	signed, err := token.SignedString(h.secret)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewSuccessResponse(gin.H{
		"token":     signed,
		"expiresAt": now.Add(tokenTTL).UTC().Format(time.RFC3339),
	}))
}
