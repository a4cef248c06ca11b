package handlers

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/Galaktikon/trust-cart/internal/auth"
)

type RouterConfig struct {
	SessionSecret  string
	RequestTimeout time.Duration
	// AddToCartGuard runs after authentication on /add_to_cart. Optional.
	AddToCartGuard gin.HandlerFunc
}

func NewRouter(h *Handler, a *auth.Authenticator, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowAllOrigins:  true,
		AllowMethods:     []string{"GET", "POST", "OPTIONS", "PUT", "DELETE"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Accept", "Origin", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// ── session store ──
	r.Use(sessions.Sessions(auth.SessionName, cookie.NewStore([]byte(cfg.SessionSecret))))
	if cfg.RequestTimeout > 0 {
		r.Use(timeout(cfg.RequestTimeout))
	}

	// ── public endpoints ──
	r.GET("/", h.Health)
	r.GET("/auth/login", a.Login)
	r.GET("/auth/callback", a.Callback)
	r.POST("/register", a.OptionalAuth(), h.Register)

	// ── protected API ──
	api := r.Group("/")
	api.Use(a.RequireAuth())
	{
		api.POST("/login", h.Login)
		api.POST("/create_item", h.CreateItem)

		addToCart := []gin.HandlerFunc{h.AddToCart}
		if cfg.AddToCartGuard != nil {
			addToCart = append([]gin.HandlerFunc{cfg.AddToCartGuard}, addToCart...)
		}
		api.POST("/add_to_cart", addToCart...)
		api.GET("/cart", h.GetCart)

		api.POST("/getUserData", h.GetUserData)
		api.POST("/create_link_token", h.CreateLinkToken)
		api.POST("/exchange_public_token", h.ExchangePublicToken)
	}

	return r
}

func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
