package handlers

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/apperr"
)

// resolveMediaPath joins a stored file_path onto root and refuses anything that lands outside it.
func resolveMediaPath(root, filePath string) (string, error) {
	if filePath == "" || filepath.IsAbs(filePath) {
		return "", apperr.Validation("Invalid media path")
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(absRoot, filepath.FromSlash(filePath))
	rel, err := filepath.Rel(absRoot, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", apperr.Validation("Invalid media path")
	}
	return full, nil
}

// Watch handles GET /api/v1/watch/:id
// Streams the media file with Range support. Only users with an active, paid plan may watch.
func (h *Handlers) Watch(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// 1. --- Entitlement ---
	entitled, err := h.Billing.HasActivePlan(ctx, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if !entitled {
		h.fail(c, apperr.Forbidden("An active subscription is required to watch"))
		return
	}

	// 2. --- Locate the file ---
	media, err := h.Catalog.GetMedia(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	path, err := resolveMediaPath(h.MediaRoot, media.FilePath)
	if err != nil {
		h.fail(c, err)
		return
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		h.fail(c, apperr.NotFound("Media file not found"))
		return
	}
	if err != nil {
		h.fail(c, fmt.Errorf("open media %d: %w", id, err))
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		h.fail(c, fmt.Errorf("stat media %d: %w", id, err))
		return
	}
	if info.IsDir() {
		h.fail(c, apperr.NotFound("Media file not found"))
		return
	}

	// 3. --- Stream ---
	http.ServeContent(c.Writer, c.Request, info.Name(), info.ModTime(), f)
}
