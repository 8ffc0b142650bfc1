package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"lg/moodhabit-api/internal/credentials"
)

// dummyHash is a pre-computed bcrypt hash used when a login email isn't found.
// Running bcrypt against it (instead of returning early) keeps response time
// constant, preventing timing-based account enumeration.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("dummy"), bcrypt.DefaultCost)

// signup registers a user with a bcrypt-hashed password and issues an auth token.
// POST /auth/signup (public). Body: { "name", "email", "password" }.
func (h *Handler) signup(c *gin.Context) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}
	acct, err := credentials.NewAccount(body.Name, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, credentials.ErrMissingFields) || errors.Is(err, credentials.ErrPasswordTooLong) {
			apiError(c, http.StatusBadRequest, err.Error())
			return
		}
		h.respondError(c, err)
		return
	}

	u, err := h.db.CreateUser(c.Request.Context(), acct.Name, acct.Email, acct.PasswordHash, acct.AuthToken)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "User registered successfully",
		"token":   u.AuthToken,
		"user_id": u.ID,
	})
}

// login verifies email/password and returns the user's auth token.
// POST /auth/login (public).
func (h *Handler) login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		apiError(c, http.StatusBadRequest, "invalid request body")
		return
	}

	u, lookupErr := h.db.UserByEmail(c.Request.Context(), credentials.NormalizeEmail(body.Email))
	if lookupErr != nil && !errors.Is(lookupErr, errNotFound) {
		h.respondError(c, lookupErr)
		return
	}

	// Always run bcrypt so unknown emails take as long as wrong passwords.
	hashToCheck := string(dummyHash)
	if lookupErr == nil {
		hashToCheck = u.Password
	}
	compareErr := bcrypt.CompareHashAndPassword([]byte(hashToCheck), []byte(body.Password))

	if lookupErr != nil || compareErr != nil {
		h.respondError(c, errAuth)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Login successful",
		"token":   u.AuthToken,
		"user_id": u.ID,
	})
}

// authMiddleware validates the Bearer token and sets user_id on the context.
func (h *Handler) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			apiError(c, http.StatusUnauthorized, "missing or invalid authorization header")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		userID, err := h.db.UserIDByToken(c.Request.Context(), token)
		if err != nil {
			if !errors.Is(err, errNotFound) {
				h.log.Errorw("token lookup failed", "error", err)
			}
			apiError(c, http.StatusUnauthorized, "invalid token")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Next()
	}
}
