package routes

import (
	"context"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/crud"
	"github.com/01moynul/cinestream-golang/internal/handlers"
	"github.com/01moynul/cinestream-golang/internal/metrics"
	"github.com/01moynul/cinestream-golang/internal/middleware"
)

type Options struct {
	CORSOrigin     string
	AuthRatePerMin int
}

func SetupRouter(h *handlers.Handlers, opts Options) *gin.Engine {
	router := gin.New()

	// --- Global middleware ---
	// CORS runs before anything that could reject the preflight.
	router.Use(
		middleware.CORS(opts.CORSOrigin),
		middleware.RequestLogger(h.Log),
		middleware.Metrics(),
		gin.Recovery(),
	)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.Static("/"+handlers.PostersDir, filepath.Join(h.MediaRoot, handlers.PostersDir))

	protect := middleware.Auth(h.DB, h.Tokens)
	mod := middleware.RequireRole(auth.RoleMod)
	admin := middleware.RequireRole(auth.RoleAdmin)

	v1 := router.Group("/api/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", h.Ping)

		// --- Auth Routes (Public, rate limited) ---
		limiter := middleware.NewIPRateLimiter(opts.AuthRatePerMin)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", limiter.Middleware(), h.Register)
			authGroup.POST("/login", limiter.Middleware(), h.Login)
			authGroup.GET("/me", protect, h.GetMe)
		}

		// --- Public Catalog Routes ---
		v1.GET("/plans", h.GetPlans)
		v1.GET("/genres", h.GetGenres)
		v1.GET("/movies", h.GetMovies)
		v1.GET("/movies/featured", h.GetFeaturedMovies)
		v1.GET("/movies/:id", h.GetMovieByID)
		v1.GET("/movies/:id/media", h.GetMovieMedia)
		v1.GET("/movies/:id/reviews", h.GetMovieReviews)
		v1.GET("/media/:id", h.GetMedia)

		// --- Protected Routes (Login Required) ---
		user := v1.Group("/")
		user.Use(protect)
		{
			user.GET("/users/me", h.GetMe)
			user.PUT("/users/me", h.UpdateMe)
			user.PUT("/users/me/password", h.ChangePassword)
			user.DELETE("/users/me", h.DeleteMe)
			user.GET("/users/me/devices", h.GetMyDevices)
			user.DELETE("/users/me/devices/:id", h.DeleteMyDevice)

			user.GET("/subscribe", h.GetMySubscription)
			user.PUT("/subscribe", h.Subscribe)
			user.GET("/subscribe/history", h.GetSubscriptionHistory)

			user.GET("/payment", h.GetMyBills)
			user.POST("/payment", h.PayBill)

			user.POST("/movies/:id/reviews", h.CreateMovieReview)
			user.DELETE("/reviews/:id", h.DeleteReview)
			user.PUT("/media/:id/progress", h.UpdateProgress)
			user.GET("/history", h.GetWatchHistory)

			user.GET("/watch/:id", h.Watch)
		}

		// --- Staff Routes (MOD and above; some writes need ADMIN) ---
		staff := v1.Group("/admin")
		staff.Use(protect, mod)
		{
			staff.GET("/stats", h.GetAdminStats)

			staff.POST("/movies", h.CreateMovie)
			staff.PUT("/movies/:id/genres", h.SetMovieGenres)
			staff.POST("/movies/:id/poster", h.UploadPoster)

			staff.PUT("/users/:id/role", admin, h.ChangeUserRole)

			bills := staff.Group("/billings", admin)
			{
				bills.GET("", h.AdminListBills)
				bills.GET("/:id", h.AdminGetBill)
				bills.PUT("/:id", h.AdminUpdateBill)
				bills.DELETE("/:id", h.AdminDeleteBill)
			}

			for _, res := range crud.Registry {
				mountResource(staff, h, res)
			}
		}
	}

	return router
}

// mountResource wires the generic CRUD handlers for one registry entry.
// Reads are open to the whole staff group; writes need the resource's WriteRole.
func mountResource(g *gin.RouterGroup, h *handlers.Handlers, res crud.Resource) {
	ch := crud.New(h.DB, res, h.Fail)
	if res.Catalog && h.Catalog != nil {
		ch.AfterWrite = func(ctx context.Context) { h.Catalog.Invalidate(ctx) }
	}
	write := middleware.RequireRole(res.WriteRole)

	r := g.Group("/" + res.Name)
	r.GET("", ch.GetAll)
	r.GET("/:id", ch.GetByID)
	r.PUT("/:id", write, ch.Update)
	r.DELETE("/:id", write, ch.Delete)

	// Movies are created through the catalog so genres are linked in the same transaction.
	if res.Name != "movies" {
		r.POST("", write, ch.Create)
	}
}
