// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/agritrack/farm-records/internal/handler"
	"github.com/agritrack/farm-records/internal/middleware"
	"github.com/agritrack/farm-records/internal/token"
)

// Handlers groups everything the router wires up. The instance is built in
// main so no package-level state is involved.
type Handlers struct {
	Auth      *handler.AuthHandler
	FarmTypes *handler.FarmTypeHandler
	Crops     *handler.CropHandler
	Farmers   *handler.FarmerHandler
	Users     *handler.UserHandler
	UserStore middleware.UserLoader
	Tokens    *token.Service
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// Register mounts all application routes on the provided Echo instance.
// Token issuance and refresh are public; everything else under /api
// requires a valid access token, and /api/users additionally requires the
// staff flag.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Session endpoints that do not require an existing session. Rate
	// limited per client IP; no identity exists yet.
	api.POST("/token/", h.Auth.Login, h.RateLimit)
	api.POST("/token/refresh/", h.Auth.Refresh, h.RateLimit)

	// Everything below requires a valid access token. The rate limiter and
	// response cache run after JWTAuth: buckets and cache entries key on
	// the verified identity, and a cache hit can only ever serve a response
	// the same identity was allowed to see.
	auth := api.Group("", middleware.JWTAuth(h.Tokens), h.RateLimit, h.Cache)
	auth.POST("/logout/", h.Auth.Logout)
	auth.POST("/current-user/", h.Auth.CurrentUser)
	auth.POST("/change-password/", h.Auth.ChangePassword)

	registerCRUD(auth.Group("/farm-types"), crudHandlers{
		list: h.FarmTypes.List, get: h.FarmTypes.Get, create: h.FarmTypes.Create,
		update: h.FarmTypes.Update, delete: h.FarmTypes.Delete,
	})
	registerCRUD(auth.Group("/crops"), crudHandlers{
		list: h.Crops.List, get: h.Crops.Get, create: h.Crops.Create,
		update: h.Crops.Update, delete: h.Crops.Delete,
	})
	registerCRUD(auth.Group("/farmers"), crudHandlers{
		list: h.Farmers.List, get: h.Farmers.Get, create: h.Farmers.Create,
		update: h.Farmers.Update, delete: h.Farmers.Delete,
	})

	// User management is restricted to staff accounts; the gate consults
	// the credential store on every request.
	users := auth.Group("/users", middleware.RequireStaff(h.UserStore))
	registerCRUD(users, crudHandlers{
		list: h.Users.List, get: h.Users.Get, create: h.Users.Create,
		update: h.Users.Update, delete: h.Users.Delete,
	})
}

type crudHandlers struct {
	list, get, create, update, delete echo.HandlerFunc
}

// registerCRUD mounts the standard list/retrieve/create/update/delete routes
// on a resource group, with the trailing-slash forms the clients use.
func registerCRUD(g *echo.Group, h crudHandlers) {
	g.GET("/", h.list)
	g.POST("/", h.create)
	g.GET("/:id/", h.get)
	g.PUT("/:id/", h.update)
	g.PATCH("/:id/", h.update)
	g.DELETE("/:id/", h.delete)
}
