// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"gatekeeper/internal/delivery/http/middleware"
	"gatekeeper/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	SessionMiddleware   *middleware.SessionMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	authHandler         *handler.AuthHandler
	sessionMiddleware   *middleware.SessionMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler:         params.AuthHandler,
		sessionMiddleware:   params.SessionMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
// The session middleware is registered globally; which paths actually demand
// a session is decided by the configured route guard, not per-group wiring.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)
	e.Use(r.sessionMiddleware.Authenticate)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Account and session routes
	e.POST("/users", r.authHandler.Register)
	e.POST("/sessions", r.authHandler.Login)
	e.DELETE("/sessions", r.authHandler.Logout)
	e.GET("/profile", r.authHandler.Profile)

	// Password reset routes
	e.POST("/reset_password", r.authHandler.RequestPasswordReset)
	e.PUT("/reset_password", r.authHandler.ConfirmPasswordReset)

	apiGroup := e.Group("/api/v1")
	{
		apiGroup.GET("/status", handler.Status)
	}
}
