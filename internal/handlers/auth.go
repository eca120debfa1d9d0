package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"festguide/internal/auth"
)

// SignUpRequest is the payload for new user registration.
type SignUpRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=6"`
	Username         string `json:"username" binding:"required"`
	MarketingConsent bool   `json:"marketing_consent"`
}

// LoginRequest is the payload for password sign-in. Remember controls
// whether the session survives into the next process run.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// SignUp registers a new user.
func (a *App) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := a.Resolver.SignUp(c.Request.Context(), req.Email, req.Password, req.Username, req.MarketingConsent); err != nil {
		respondAuthError(c, err)
		return
	}
	a.CurrentUser(c)
}

// Login signs in with email and password.
func (a *App) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, http.StatusBadRequest, "Invalid input", err)
		return
	}

	if err := a.Resolver.SignIn(c.Request.Context(), req.Email, req.Password, req.Remember); err != nil {
		respondAuthError(c, err)
		return
	}
	a.CurrentUser(c)
}

// Logout signs the current identity out.
func (a *App) Logout(c *gin.Context) {
	if err := a.Resolver.SignOut(c.Request.Context()); err != nil {
		// The local session is gone either way; just record the failure.
		log.Printf("auth: remote sign-out failed: %v", err)
	}
	c.Status(http.StatusNoContent)
}

// CurrentUser reports the signed-in identity, if any.
func (a *App) CurrentUser(c *gin.Context) {
	identity, ok := a.Resolver.Current()
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          identity,
	})
}

// respondAuthError surfaces the auth service's own message when one exists.
func respondAuthError(c *gin.Context, err error) {
	var authErr *auth.AuthError
	if errors.As(err, &authErr) {
		handleError(c, authErr.Status, authErr.Message, err)
		return
	}
	handleError(c, http.StatusBadGateway, "Authentication service unavailable", err)
}
