package handlers

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/devices"
	"github.com/01moynul/cinestream-golang/internal/metrics"
	"github.com/01moynul/cinestream-golang/internal/models"
)

const userColumns = "id, username, email, password, role, gender, birthdate, region, created_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.Gender, &u.Birthdate, &u.Region, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (h *Handlers) userByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := scanUser(h.DB.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFound("User not found")
	}
	return u, err
}

func parseBirthdate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.DateOnly, *s)
	if err != nil {
		return nil, apperr.Validation("birthdate must be YYYY-MM-DD")
	}
	return &t, nil
}

// isDuplicate reports a MySQL unique-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// --- Auth ---

// Register handles POST /api/v1/auth/register
func (h *Handlers) Register(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.RegisterInput
	if !h.bindJSON(c, &input) {
		return
	}
	birthdate, err := parseBirthdate(input.Birthdate)
	if err != nil {
		h.fail(c, err)
		return
	}

	// 2. --- Hash the Password ---
	var password models.Password
	if err := password.Set(input.Password); err != nil {
		h.fail(c, err)
		return
	}

	// 3. --- Save to Database ---
	user := &models.User{
		Username:     strings.TrimSpace(input.Username),
		Email:        strings.ToLower(strings.TrimSpace(input.Email)),
		PasswordHash: password.Hash,
		Role:         auth.RoleUser.String(),
		Gender:       input.Gender,
		Birthdate:    birthdate,
		Region:       input.Region,
		CreatedAt:    h.now(),
	}
	res, err := h.DB.ExecContext(c.Request.Context(), `
		INSERT INTO users (username, email, password, role, gender, birthdate, region, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.Username, user.Email, user.PasswordHash, user.Role, user.Gender, user.Birthdate, user.Region, user.CreatedAt)
	if isDuplicate(err) {
		metrics.AuthEvents.WithLabelValues("register", "duplicate").Inc()
		h.fail(c, apperr.Validation("Username or email already in use"))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		h.fail(c, err)
		return
	}

	// 4. --- Issue a token so the client is signed in straight away ---
	token, err := h.Tokens.Generate(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	metrics.AuthEvents.WithLabelValues("register", "success").Inc()
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": token})
}

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login(c *gin.Context) {
	var input models.LoginInput
	if !h.bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	// 1. --- Find the user ---
	user, err := scanUser(h.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", strings.ToLower(strings.TrimSpace(input.Email))))
	if errors.Is(err, sql.ErrNoRows) {
		metrics.AuthEvents.WithLabelValues("login", "failure").Inc()
		h.fail(c, apperr.Unauthorized("Invalid email or password"))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	// 2. --- Check password ---
	password := models.Password{Hash: user.PasswordHash}
	ok, err := password.Matches(input.Password)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		metrics.AuthEvents.WithLabelValues("login", "failure").Inc()
		h.fail(c, apperr.Unauthorized("Invalid email or password"))
		return
	}

	// 3. --- Token ---
	token, err := h.Tokens.Generate(user.ID)
	if err != nil {
		h.fail(c, err)
		return
	}

	// 4. --- Remember the device; a failure here must not block login ---
	if _, err := devices.Register(ctx, h.DB, user.ID, c.Request.UserAgent(), h.now()); err != nil {
		h.Log.WithError(err).WithField("user_id", user.ID).Warn("device registration failed")
	}

	metrics.AuthEvents.WithLabelValues("login", "success").Inc()
	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

// --- Self-service ---

// GetMe handles GET /api/v1/users/me
func (h *Handlers) GetMe(c *gin.Context) {
	user, err := h.userByID(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateMe handles PUT /api/v1/users/me
func (h *Handlers) UpdateMe(c *gin.Context) {
	var input models.UpdateProfileInput
	if !h.bindJSON(c, &input) {
		return
	}

	var (
		sets []string
		args []any
	)
	if input.Username != nil {
		sets, args = append(sets, "username = ?"), append(args, strings.TrimSpace(*input.Username))
	}
	if input.Email != nil {
		sets, args = append(sets, "email = ?"), append(args, strings.ToLower(strings.TrimSpace(*input.Email)))
	}
	if input.Gender != nil {
		sets, args = append(sets, "gender = ?"), append(args, *input.Gender)
	}
	if input.Birthdate != nil {
		birthdate, err := parseBirthdate(input.Birthdate)
		if err != nil {
			h.fail(c, err)
			return
		}
		sets, args = append(sets, "birthdate = ?"), append(args, birthdate)
	}
	if input.Region != nil {
		sets, args = append(sets, "region = ?"), append(args, *input.Region)
	}
	if len(sets) == 0 {
		h.fail(c, apperr.Validation("No valid fields provided"))
		return
	}

	userID := currentUser(c)
	query := "UPDATE users SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	_, err := h.DB.ExecContext(c.Request.Context(), query, append(args, userID)...)
	if isDuplicate(err) {
		h.fail(c, apperr.Validation("Username or email already in use"))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}

	h.GetMe(c)
}

// ChangePassword handles PUT /api/v1/users/me/password
func (h *Handlers) ChangePassword(c *gin.Context) {
	var input models.ChangePasswordInput
	if !h.bindJSON(c, &input) {
		return
	}
	ctx := c.Request.Context()

	user, err := h.userByID(ctx, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	current := models.Password{Hash: user.PasswordHash}
	ok, err := current.Matches(input.CurrentPassword)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !ok {
		h.fail(c, apperr.Unauthorized("Current password is incorrect"))
		return
	}

	var next models.Password
	if err := next.Set(input.NewPassword); err != nil {
		h.fail(c, err)
		return
	}
	if _, err := h.DB.ExecContext(ctx, "UPDATE users SET password = ? WHERE id = ?", next.Hash, user.ID); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// DeleteMe handles DELETE /api/v1/users/me. Related rows go with the user via foreign keys.
func (h *Handlers) DeleteMe(c *gin.Context) {
	userID := currentUser(c)
	res, err := h.DB.ExecContext(c.Request.Context(), "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		h.fail(c, apperr.NotFound("User not found"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// GetMyDevices handles GET /api/v1/users/me/devices
func (h *Handlers) GetMyDevices(c *gin.Context) {
	list, err := devices.List(c.Request.Context(), h.DB, currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, list)
}

// DeleteMyDevice handles DELETE /api/v1/users/me/devices/:id
func (h *Handlers) DeleteMyDevice(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := devices.Remove(c.Request.Context(), h.DB, currentUser(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Device removed"})
}
