package api

import (
	"net/http"

	"app-builder-api/internal/response"
	"app-builder-api/internal/services"

	"github.com/gin-gonic/gin"
)

// VerifyPaymentRequest is the checkout confirmation posted by the client
type VerifyPaymentRequest struct {
	PackageName       string `json:"packageName"`
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

// CreateOrder creates a payment order for the build price
// POST /api/payment/order
func (h *handler) CreateOrder(c *gin.Context) {
	order, err := h.payments.CreateOrder(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"order":   order,
	})
}

// VerifyPayment checks the payment signature and releases the AAB
// POST /api/payment/verify
func (h *handler) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "Invalid request format: "+err.Error())
		return
	}

	result, err := h.payments.VerifyAndFulfill(c.Request.Context(), services.VerifyInput{
		PackageName: req.PackageName,
		OrderID:     req.RazorpayOrderID,
		PaymentID:   req.RazorpayPaymentID,
		Signature:   req.RazorpaySignature,
	})
	if err != nil {
		response.FromError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"message":     "Payment verified successfully",
		"downloadAAB": result.DownloadAABURL,
	})
}
