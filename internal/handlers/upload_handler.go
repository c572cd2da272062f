package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01moynul/cinestream-golang/internal/apperr"
)

// PostersDir is the sub-folder of MEDIA_ROOT that holds uploaded posters. It is served under /posters.
const PostersDir = "posters"

const maxPosterSize = 5 << 20

var posterExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// UploadPoster handles POST /api/v1/admin/movies/:id/poster
// It stores the image under MEDIA_ROOT/posters and saves the public URL on the movie.
func (h *Handlers) UploadPoster(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}

	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		h.fail(c, apperr.Validation("No file uploaded"))
		return
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !posterExts[ext] {
		h.fail(c, apperr.Validation("Poster must be a jpg, png or webp image"))
		return
	}
	if file.Size > maxPosterSize {
		h.fail(c, apperr.Validation("Poster must be at most 5MB"))
		return
	}

	// 2. Create the posters directory if it doesn't exist
	dir := filepath.Join(h.MediaRoot, PostersDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		h.fail(c, fmt.Errorf("create poster dir: %w", err))
		return
	}

	// 3. Generate a safe unique filename (uuid + extension) and save
	name := uuid.New().String() + ext
	if err := c.SaveUploadedFile(file, filepath.Join(dir, name)); err != nil {
		h.fail(c, fmt.Errorf("save poster: %w", err))
		return
	}

	// 4. Link it to the movie
	publicURL := fmt.Sprintf("%s/%s/%s", strings.TrimRight(h.BaseURL, "/"), PostersDir, name)
	if err := h.Catalog.SetPoster(c.Request.Context(), id, publicURL); err != nil {
		_ = os.Remove(filepath.Join(dir, name))
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": id, "poster": publicURL})
}
