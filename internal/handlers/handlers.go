package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/billing"
	"github.com/01moynul/cinestream-golang/internal/catalog"
	"github.com/01moynul/cinestream-golang/internal/middleware"
	"github.com/01moynul/cinestream-golang/internal/telemetry"
)

// Handlers struct holds all dependencies for our handlers.
type Handlers struct {
	DB      *sql.DB
	Tokens  *auth.TokenManager
	Billing *billing.Service
	Catalog *catalog.Service
	Log     *logrus.Logger

	MediaRoot string // video files and uploaded posters live under here
	BaseURL   string // public origin used to build poster URLs

	Now func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// fail maps any error onto the { "error": ... } response shape.
// Internal errors are logged and reported, and the client only sees "Server error".
func (h *Handlers) fail(c *gin.Context, err error) {
	e := apperr.From(err)
	if e.Kind == apperr.KindInternal {
		h.Log.WithError(err).WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"request_id": c.GetString("requestID"),
		}).Error("request failed")
		telemetry.CaptureError(err, map[string]string{
			"path":       c.FullPath(),
			"request_id": c.GetString("requestID"),
		})
	}
	c.AbortWithStatusJSON(e.Status(), gin.H{"error": e.PublicMessage()})
}

// Fail is the exported responder handed to the generic CRUD handlers.
func (h *Handlers) Fail(c *gin.Context, err error) {
	h.fail(c, err)
}

// idParam parses a positive integer path parameter, responding 400 when it is not one.
func (h *Handlers) idParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 1 {
		h.fail(c, apperr.Validation("Invalid "+name))
		return 0, false
	}
	return id, true
}

// bindJSON binds and validates the body, responding 400 on failure.
func (h *Handlers) bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		h.fail(c, apperr.Validation(err.Error()))
		return false
	}
	return true
}

func listResponse[T any](c *gin.Context, rows []T) {
	c.JSON(http.StatusOK, gin.H{"count": len(rows), "rows": rows})
}

func currentUser(c *gin.Context) int64 {
	return middleware.UserID(c)
}

// Ping is the public liveness check.
func (h *Handlers) Ping(c *gin.Context) {
	if err := h.DB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "pong!"})
}
