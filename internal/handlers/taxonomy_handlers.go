package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/models"
)

// --- Genre Handlers ---

// GetGenres handles GET /api/v1/genres
func (h *Handlers) GetGenres(c *gin.Context) {
	genres, err := h.Catalog.Genres(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, genres)
}

// SetMovieGenres handles PUT /api/v1/admin/movies/:id/genres
func (h *Handlers) SetMovieGenres(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input models.SetGenresInput
	if !h.bindJSON(c, &input) {
		return
	}
	movie, err := h.Catalog.SetGenres(c.Request.Context(), id, input.Genres)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, movie)
}
