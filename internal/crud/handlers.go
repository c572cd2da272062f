package crud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/apperr"
)

const (
	defaultPageSize = 100
	maxPageSize     = 500
)

// ErrorFunc writes an error response. Handlers inject their shared responder.
type ErrorFunc func(c *gin.Context, err error)

type Handlers struct {
	db   *sql.DB
	res  Resource
	fail ErrorFunc

	// AfterWrite runs after a successful create, update or delete.
	AfterWrite func(ctx context.Context)
}

func New(db *sql.DB, res Resource, fail ErrorFunc) *Handlers {
	return &Handlers{db: db, res: res, fail: fail}
}

func (h *Handlers) selectList() string {
	cols := make([]string, len(h.res.Columns))
	for i, c := range h.res.Columns {
		cols[i] = quote(c)
	}
	return strings.Join(cols, ", ")
}

// GetAll responds with {count, rows}. Supports ?limit= and ?offset=.
func (h *Handlers) GetAll(c *gin.Context) {
	limit := clampInt(c.Query("limit"), defaultPageSize, 1, maxPageSize)
	offset := clampInt(c.Query("offset"), 0, 0, 1<<31-1)
	ctx := c.Request.Context()

	var count int64
	if err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quote(h.res.Table)).Scan(&count); err != nil {
		h.fail(c, fmt.Errorf("count %s: %w", h.res.Table, err))
		return
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY `id` DESC LIMIT ? OFFSET ?", h.selectList(), quote(h.res.Table))
	rows, err := h.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		h.fail(c, fmt.Errorf("list %s: %w", h.res.Table, err))
		return
	}
	defer rows.Close()

	data, err := scanMaps(rows)
	if err != nil {
		h.fail(c, fmt.Errorf("scan %s: %w", h.res.Table, err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count, "rows": data})
}

func (h *Handlers) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	row, err := h.fetch(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handlers) Create(c *gin.Context) {
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	cols := sortedKeys(fields)
	quoted := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, col := range cols {
		quoted[i] = quote(col)
		args[i] = fields[col]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quote(h.res.Table), strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))

	res, err := h.db.ExecContext(ctx, query, args...)
	if err != nil {
		h.fail(c, fmt.Errorf("insert %s: %w", h.res.Table, err))
		return
	}
	id, err := res.LastInsertId()
	if err != nil {
		h.fail(c, fmt.Errorf("insert %s id: %w", h.res.Table, err))
		return
	}
	h.afterWrite(ctx)

	row, err := h.fetch(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, row)
}

func (h *Handlers) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	fields, ok := h.bindFields(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.exists(ctx, id); err != nil {
		h.fail(c, err)
		return
	}

	cols := sortedKeys(fields)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, col := range cols {
		sets[i] = quote(col) + " = ?"
		args = append(args, fields[col])
	}
	args = append(args, id)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE `id` = ?", quote(h.res.Table), strings.Join(sets, ", "))
	if _, err := h.db.ExecContext(ctx, query, args...); err != nil {
		h.fail(c, fmt.Errorf("update %s: %w", h.res.Table, err))
		return
	}
	h.afterWrite(ctx)

	row, err := h.fetch(ctx, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, row)
}

func (h *Handlers) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.exists(ctx, id); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.db.ExecContext(ctx, "DELETE FROM "+quote(h.res.Table)+" WHERE `id` = ?", id); err != nil {
		h.fail(c, fmt.Errorf("delete %s: %w", h.res.Table, err))
		return
	}
	h.afterWrite(ctx)

	c.JSON(http.StatusOK, gin.H{"message": "Deleted successfully", "id": id})
}

func (h *Handlers) parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		h.fail(c, apperr.Validation("Invalid id"))
		return 0, false
	}
	return id, true
}

// bindFields decodes the JSON body and applies the allow-list. An empty result is a 400 and nothing is written.
func (h *Handlers) bindFields(c *gin.Context) (map[string]any, bool) {
	var body map[string]any
	if err := c.ShouldBindJSON(&body); err != nil {
		h.fail(c, apperr.Validation("Invalid request body"))
		return nil, false
	}

	fields := h.res.Filter(body)
	if len(fields) == 0 {
		h.fail(c, apperr.Validation("No valid fields provided"))
		return nil, false
	}
	// Columns are flat; objects and arrays never reach the driver.
	for _, col := range sortedKeys(fields) {
		switch fields[col].(type) {
		case nil, string, float64, bool:
		default:
			h.fail(c, apperr.Validation("Invalid value for "+col))
			return nil, false
		}
	}
	if h.res.Prepare != nil {
		if err := h.res.Prepare(fields); err != nil {
			h.fail(c, err)
			return nil, false
		}
	}
	return fields, true
}

func (h *Handlers) fetch(ctx context.Context, id int64) (map[string]any, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE `id` = ?", h.selectList(), quote(h.res.Table))
	rows, err := h.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", h.res.Table, err)
	}
	defer rows.Close()

	data, err := scanMaps(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", h.res.Table, err)
	}
	if len(data) == 0 {
		return nil, apperr.NotFound(notFoundMessage(h.res.Name))
	}
	return data[0], nil
}

func (h *Handlers) exists(ctx context.Context, id int64) error {
	var found int64
	err := h.db.QueryRowContext(ctx, "SELECT `id` FROM "+quote(h.res.Table)+" WHERE `id` = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(notFoundMessage(h.res.Name))
	}
	if err != nil {
		return fmt.Errorf("get %s: %w", h.res.Table, err)
	}
	return nil
}

func (h *Handlers) afterWrite(ctx context.Context) {
	if h.AfterWrite != nil {
		h.AfterWrite(ctx)
	}
}

func notFoundMessage(name string) string {
	return strings.ToUpper(name[:1]) + name[1:] + " record not found"
}

func clampInt(raw string, fallback, min, max int) int {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}
