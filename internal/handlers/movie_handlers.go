package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/catalog"
	"github.com/01moynul/cinestream-golang/internal/middleware"
	"github.com/01moynul/cinestream-golang/internal/models"
)

// GetMovies handles GET /api/v1/movies?page=&limit=&genre=&q=
func (h *Handlers) GetMovies(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.Catalog.List(c.Request.Context(), catalog.ListParams{
		Page:   page,
		Limit:  limit,
		Genre:  c.Query("genre"),
		Search: c.Query("q"),
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMovieByID handles GET /api/v1/movies/:id
func (h *Handlers) GetMovieByID(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	movie, err := h.Catalog.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}

// GetFeaturedMovies handles GET /api/v1/movies/featured
func (h *Handlers) GetFeaturedMovies(c *gin.Context) {
	movies, err := h.Catalog.Featured(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, movies)
}

// GetMovieMedia handles GET /api/v1/movies/:id/media
func (h *Handlers) GetMovieMedia(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	media, err := h.Catalog.MediaForMovie(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, media)
}

// GetMedia handles GET /api/v1/media/:id
func (h *Handlers) GetMedia(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	media, err := h.Catalog.GetMedia(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, media)
}

// --- Reviews ---

// GetMovieReviews handles GET /api/v1/movies/:id/reviews
func (h *Handlers) GetMovieReviews(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	reviews, err := h.Catalog.Reviews(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, reviews)
}

// CreateMovieReview handles POST /api/v1/movies/:id/reviews
func (h *Handlers) CreateMovieReview(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input models.CreateReviewInput
	if !h.bindJSON(c, &input) {
		return
	}
	review, err := h.Catalog.CreateReview(c.Request.Context(), currentUser(c), id, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

// DeleteReview handles DELETE /api/v1/reviews/:id
// Authors may delete their own reviews; moderators may delete any.
func (h *Handlers) DeleteReview(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteReview(c.Request.Context(), id, currentUser(c), middleware.Role(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Review deleted", "id": id})
}

// --- Watch progress ---

// UpdateProgress handles PUT /api/v1/media/:id/progress
func (h *Handlers) UpdateProgress(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input models.ProgressInput
	if !h.bindJSON(c, &input) {
		return
	}
	if err := h.Catalog.UpdateProgress(c.Request.Context(), currentUser(c), id, *input.Position); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"media_id": id, "last_position": *input.Position})
}

// GetWatchHistory handles GET /api/v1/history
func (h *Handlers) GetWatchHistory(c *gin.Context) {
	history, err := h.Catalog.History(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, history)
}

// --- Admin ---

// CreateMovie handles POST /api/v1/admin/movies
func (h *Handlers) CreateMovie(c *gin.Context) {
	var input models.CreateMovieInput
	if !h.bindJSON(c, &input) {
		return
	}
	movie, err := h.Catalog.CreateMovie(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, movie)
}
