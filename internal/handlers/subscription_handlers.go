package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/cinestream-golang/internal/apperr"
)

// GetPlans handles GET /api/v1/plans
func (h *Handlers) GetPlans(c *gin.Context) {
	plans, err := h.Billing.Plans(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, plans)
}

// GetMySubscription handles GET /api/v1/subscribe
// Returns the plans the user is entitled to today; an empty list is a normal answer.
func (h *Handlers) GetMySubscription(c *gin.Context) {
	plans, err := h.Billing.CurrentActivePlans(c.Request.Context(), currentUser(c), h.now())
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, plans)
}

// Subscribe handles PUT /api/v1/subscribe?plan_id=
func (h *Handlers) Subscribe(c *gin.Context) {
	planID, err := strconv.ParseInt(c.Query("plan_id"), 10, 64)
	if err != nil || planID < 1 {
		h.fail(c, apperr.Validation("plan_id query parameter is required"))
		return
	}

	view, err := h.Billing.Enroll(c.Request.Context(), currentUser(c), planID)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.Log.WithField("user_id", view.UserID).
		WithField("subscription_id", view.ID).
		WithField("billing_id", view.BillingID).
		Info("subscription created")

	c.JSON(http.StatusCreated, view)
}

// GetSubscriptionHistory handles GET /api/v1/subscribe/history
func (h *Handlers) GetSubscriptionHistory(c *gin.Context) {
	subs, err := h.Billing.Subscriptions(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	listResponse(c, subs)
}
