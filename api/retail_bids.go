package api

import (
	"net/http"
	"strconv"

	"github.com/avialine/groupfare/internal/service/retail"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type RetailBidHandler struct {
	service retail.RetailUseCase
}

type submitRequest struct {
	UserID          int64           `json:"userId"`
	SubmittedAmount decimal.Decimal `json:"submittedAmount"`
	SeatBooked      int             `json:"seatBooked"`
}

type paymentRequest struct {
	UserID        int64           `json:"userId"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"paymentMethod"`
}

func NewRetailBidHandler(service retail.RetailUseCase) *RetailBidHandler {
	return &RetailBidHandler{service: service}
}

func (h *RetailBidHandler) Register(router *gin.RouterGroup) {
	router.POST("/bids/:bidId/submit", h.submit)
	router.POST("/bids/:bidId/payment", h.payment)
	router.GET("/my-bids/:userId", h.myBids)
}

func (h *RetailBidHandler) submit(c *gin.Context) {
	bidID, err := strconv.ParseInt(c.Param("bidId"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid bid id")
		return
	}

	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 || req.SeatBooked <= 0 || req.SubmittedAmount.LessThanOrEqual(decimal.Zero) {
		fail(c, http.StatusBadRequest, "userId, submittedAmount and seatBooked are required")
		return
	}

	rb, err := h.service.Submit(c.Request.Context(), retail.SubmitInput{
		BidID:           bidID,
		UserID:          req.UserID,
		SubmittedAmount: req.SubmittedAmount,
		SeatBooked:      req.SeatBooked,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "retailBid": newRetailBidResponse(*rb)})
}

func (h *RetailBidHandler) payment(c *gin.Context) {
	bidID, err := strconv.ParseInt(c.Param("bidId"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid bid id")
		return
	}

	var req paymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == 0 || req.Amount.LessThanOrEqual(decimal.Zero) || req.PaymentMethod == "" {
		fail(c, http.StatusBadRequest, "userId, amount and paymentMethod are required")
		return
	}

	payment, err := h.service.CreatePayment(c.Request.Context(), retail.PaymentInput{
		BidID:         bidID,
		UserID:        req.UserID,
		Amount:        req.Amount,
		Currency:      req.Currency,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success":          true,
		"payment":          newPaymentResponse(*payment),
		"paymentReference": payment.PaymentReference,
	})
}

func (h *RetailBidHandler) myBids(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid user id")
		return
	}

	views, err := h.service.MyBids(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	userBids := make([]retailBidResponse, 0, len(views))
	for _, v := range views {
		resp := newRetailBidResponse(v.RetailBid)
		if v.StatusInfo != nil {
			s := newStatusResponse(*v.StatusInfo)
			resp.StatusInfo = &s
		}
		if v.BidDetails != nil {
			b := newBidResponse(*v.BidDetails)
			resp.BidDetails = &b
		}
		userBids = append(userBids, resp)
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "userBids": userBids})
}
