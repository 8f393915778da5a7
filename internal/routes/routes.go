package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/BradenHooton/warden/internal/auth"
	"github.com/BradenHooton/warden/internal/handlers"
	"github.com/BradenHooton/warden/internal/middleware"
	"github.com/BradenHooton/warden/internal/models"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health      *handlers.HealthHandler
	Users       *handlers.UserHandler
	Roles       *handlers.RoleHandler
	Audit       *handlers.AuditHandler
	Permissions *handlers.PermissionHandler
	Admin       *handlers.AdminHandler
}

// Limits configures request rate limiting.
type Limits struct {
	Read  middleware.RateLimitConfig
	Write middleware.RateLimitConfig
}

// RegisterRoutes registers all application routes. Reads need Settings/Read
// and mutations need Settings/Write on the caller's token.
func RegisterRoutes(router chi.Router, h Handlers, tokenManager *auth.TokenManager, limits Limits) {
	// Public routes - no authentication required
	router.Get("/health", h.Health.Health)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(limits.Read))
		r.Use(auth.AuthMiddleware(tokenManager))
		r.Use(middleware.RecordSubject)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(models.ModuleSettings, models.FlagRead))

			r.Get("/users", h.Users.ListUsers)
			r.Get("/users/{id}", h.Users.GetUser)
			r.Get("/users/{id}/audit", h.Audit.GetUserAuditTrail)
			r.Get("/users/{id}/permissions/export", h.Roles.ExportPermissions)
			r.Get("/audit", h.Audit.ListAuditLog)
			r.Get("/admin/stats", h.Admin.GetDashboardStats)
			r.Get("/admin/activity", h.Admin.GetRecentActivity)

			// Side-effect free, but they take bodies.
			r.Post("/users/validate", h.Users.ValidateUser)
			r.Post("/permissions/validate", h.Permissions.ValidateMatrix)
			r.Post("/permissions/derive", h.Permissions.DeriveMatrix)
		})

		r.Group(func(r chi.Router) {
			r.Use(auth.RequirePermission(models.ModuleSettings, models.FlagWrite))
			r.Use(middleware.RateLimitBySubject(limits.Write))

			r.Post("/users", h.Users.CreateUser)
			r.Put("/users/{id}/role", h.Roles.AssignRole)
			r.Post("/role-changes/{id}/undo", h.Roles.UndoRoleChange)
		})
	})
}
