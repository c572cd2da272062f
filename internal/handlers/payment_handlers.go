package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/01moynul/cinestream-golang/internal/models"
)

// GetMyBills handles GET /api/v1/payment
func (h *Handlers) GetMyBills(c *gin.Context) {
	bills, err := h.Billing.UserBills(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, bills)
}

// PayBill handles POST /api/v1/payment
// There is no payment processor behind this: the caller states the method and the bill is settled.
func (h *Handlers) PayBill(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input models.PayInput
	if !h.bindJSON(c, &input) {
		return
	}

	// 2. --- Settle the bill (ownership, locking and rollover happen in the service) ---
	userID := currentUser(c)
	result, err := h.Billing.Pay(c.Request.Context(), input.BillingID, userID, input.PaymentMethod)
	if err != nil {
		h.fail(c, err)
		return
	}

	// 3. --- Log & respond ---
	h.Log.WithFields(logrus.Fields{
		"user_id":      userID,
		"billing_id":   result.Billing.ID,
		"reanchored":   result.Reanchored,
		"already_paid": result.AlreadyPaid,
	}).Info("bill paid")

	c.JSON(http.StatusOK, result)
}
