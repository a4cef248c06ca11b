package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	config "github.com/Galaktikon/trust-cart/configs"
	"github.com/Galaktikon/trust-cart/internal/apperr"
)

const (
	SessionName = "gosess"

	sessionTokenKey = "id_token"
	sessionStateKey = "oauth_state"
	identityKey     = "identity"
)

// Identity is what a verified ID token says about the caller.
type Identity struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
}

type Verifier interface {
	Verify(ctx context.Context, rawToken string) (Identity, error)
}

// CodeFlow is the OAuth2 authorization-code half of the login.
type CodeFlow interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (rawIDToken string, err error)
}

// OIDC verifies ID tokens against the issuer and drives the code flow.
type OIDC struct {
	verifier     *oidc.IDTokenVerifier
	oauth2Config *oauth2.Config
}

func NewOIDC(ctx context.Context, cfg config.OIDCConfig) (*OIDC, error) {
	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return nil, err
	}

	return &OIDC{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
	}, nil
}

func (o *OIDC) Verify(ctx context.Context, rawToken string) (Identity, error) {
	idToken, err := o.verifier.Verify(ctx, rawToken)
	if err != nil {
		return Identity{}, err
	}

	var claims struct {
		Sub   string `json:"sub"`
		Name  string `json:"name"`
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return Identity{}, err
	}
	return Identity{UserID: claims.Sub, Email: claims.Email, Name: claims.Name, Role: claims.Role}, nil
}

func (o *OIDC) AuthCodeURL(state string) string {
	return o.oauth2Config.AuthCodeURL(state)
}

func (o *OIDC) Exchange(ctx context.Context, code string) (string, error) {
	oauth2Token, err := o.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return "", err
	}
	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		return "", errors.New("no id_token in token response")
	}
	return rawIDToken, nil
}

type Authenticator struct {
	verifier Verifier
	flow     CodeFlow
	log      *slog.Logger
}

// NewAuthenticator wires the login routes and the middleware. flow may be
// nil, in which case only bearer tokens are accepted.
func NewAuthenticator(v Verifier, flow CodeFlow, log *slog.Logger) *Authenticator {
	return &Authenticator{verifier: v, flow: flow, log: log}
}

// GET /auth/login
func (a *Authenticator) Login(c *gin.Context) {
	if a.flow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "login flow not configured"})
		return
	}

	state, err := newState()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	sess := sessions.Default(c)
	sess.Set(sessionStateKey, state)
	if err := sess.Save(); err != nil {
		a.log.Error("session save failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Redirect(http.StatusFound, a.flow.AuthCodeURL(state))
}

// GET /auth/callback
func (a *Authenticator) Callback(c *gin.Context) {
	if a.flow == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "login flow not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "code missing"})
		return
	}

	sess := sessions.Default(c)
	want, _ := sess.Get(sessionStateKey).(string)
	if want == "" || c.Query("state") != want {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state mismatch"})
		return
	}

	ctx := c.Request.Context()
	rawIDToken, err := a.flow.Exchange(ctx, code)
	if err != nil {
		a.log.Warn("token exchange failed", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "token exchange failed"})
		return
	}

	id, err := a.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token verification failed"})
		return
	}

	sess.Delete(sessionStateKey)
	sess.Set(sessionTokenKey, rawIDToken)
	if err := sess.Save(); err != nil {
		a.log.Error("session save failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "logged in", "identity": id})
}

// RequireAuth verifies the bearer token, falling back to the token stored
// by the login callback, and puts the Identity on the context.
func (a *Authenticator) RequireAuth() gin.HandlerFunc {
	return a.authenticate(true)
}

// OptionalAuth lets anonymous requests through. A token that is sent must
// still verify.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return a.authenticate(false)
}

func (a *Authenticator) authenticate(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw, _ = sessions.Default(c).Get(sessionTokenKey).(string)
		}
		if raw == "" {
			if required {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
				return
			}
			c.Next()
			return
		}

		id, err := a.verifier.Verify(c.Request.Context(), raw)
		if err != nil || id.UserID == "" {
			a.log.Debug("token rejected", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// Subject resolves the user a request acts for. An empty claimed id means
// the caller; any other value must match the caller.
func Subject(c *gin.Context, claimed string) (string, error) {
	id, ok := IdentityFrom(c)
	if !ok {
		return "", apperr.Unauthorized("unauthorized")
	}
	if claimed != "" && claimed != id.UserID {
		return "", apperr.Forbidden("user_id does not match token")
	}
	return id.UserID, nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func newState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
