package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/apperr"
	"github.com/01moynul/cinestream-golang/internal/auth"
	"github.com/01moynul/cinestream-golang/internal/billing"
	"github.com/01moynul/cinestream-golang/internal/database"
	"github.com/01moynul/cinestream-golang/internal/models"
)

//
// --- Admin: User Roles ---
//

// ChangeUserRole handles PUT /api/v1/admin/users/:id/role
func (h *Handlers) ChangeUserRole(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input models.ChangeRoleInput
	if !h.bindJSON(c, &input) {
		return
	}
	role, err := auth.ParseRole(input.Role)
	if err != nil {
		h.fail(c, apperr.Validation("role must be USER, MOD or ADMIN"))
		return
	}
	if id == currentUser(c) && role != auth.RoleAdmin {
		h.fail(c, apperr.Validation("You cannot demote yourself"))
		return
	}

	ctx := c.Request.Context()
	err = database.WithTx(ctx, h.DB, func(tx *sql.Tx) error {
		var found int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id = ? FOR UPDATE", id).Scan(&found)
		if errors.Is(err, sql.ErrNoRows) {
			return apperr.NotFound("User not found")
		}
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, "UPDATE users SET role = ? WHERE id = ?", role.String(), id)
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "role": role})
}

//
// --- Admin: Billing ---
//

// AdminListBills handles GET /api/v1/admin/billings
func (h *Handlers) AdminListBills(c *gin.Context) {
	bills, err := h.Billing.ListBills(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, bills)
}

// AdminGetBill handles GET /api/v1/admin/billings/:id
func (h *Handlers) AdminGetBill(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	bill, err := h.Billing.GetBill(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// AdminUpdateBill handles PUT /api/v1/admin/billings/:id
func (h *Handlers) AdminUpdateBill(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	var input billing.BillUpdate
	if !h.bindJSON(c, &input) {
		return
	}
	bill, err := h.Billing.UpdateBill(c.Request.Context(), id, input)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bill)
}

// AdminDeleteBill handles DELETE /api/v1/admin/billings/:id
func (h *Handlers) AdminDeleteBill(c *gin.Context) {
	id, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if err := h.Billing.DeleteBill(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bill deleted", "id": id})
}
