package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/avialine/groupfare/internal/domain"
	"github.com/avialine/groupfare/internal/service/bids"
	"github.com/avialine/groupfare/internal/service/retail"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type AdminBidHandler struct {
	bids   bids.BidUseCase
	retail retail.RetailUseCase
}

func NewAdminBidHandler(bidService bids.BidUseCase, retailService retail.RetailUseCase) *AdminBidHandler {
	return &AdminBidHandler{bids: bidService, retail: retailService}
}

func (h *AdminBidHandler) Register(router *gin.RouterGroup) {
	router.POST("/bids", h.createBid)
	router.GET("/bids", h.listBids)
	router.GET("/bids/:bidId", h.getBid)
	router.POST("/bids/expire", h.expireBids)
	router.PUT("/retail-bids/:retailBidId/status", h.setDecision)
}

// createBid accepts bidAmount, validUntil, the seat limits and flightId as
// first-class fields; everything else in the body is folded into the opaque
// notes document.
func (h *AdminBidHandler) createBid(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, okAmount := toDecimal(raw["bidAmount"])
	validUntil, okValid := toTime(raw["validUntil"])
	if !okAmount || !okValid {
		fail(c, http.StatusBadRequest, "bidAmount and validUntil are required")
		return
	}

	input := bids.CreateBidInput{
		BidAmount:  amount,
		ValidUntil: validUntil,
	}
	if n, ok := toInt(raw["totalSeatsAvailable"]); ok {
		input.TotalSeatsAvailable = n
	}
	if n, ok := toInt(raw["minSeatsPerBid"]); ok {
		input.MinSeatsPerBid = n
	}
	if n, ok := toInt(raw["maxSeatsPerBid"]); ok {
		input.MaxSeatsPerBid = n
	}
	if n, ok := toInt(raw["flightId"]); ok {
		id := int64(n)
		input.FlightID = &id
	}

	for _, key := range []string{"bidAmount", "validUntil", "totalSeatsAvailable", "minSeatsPerBid", "maxSeatsPerBid", "flightId"} {
		delete(raw, key)
	}
	if len(raw) > 0 {
		if notes, err := json.Marshal(raw); err == nil {
			input.Notes = string(notes)
		}
	}

	bid, err := h.bids.CreateBid(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "bid": newBidResponse(*bid)})
}

func (h *AdminBidHandler) listBids(c *gin.Context) {
	all, err := h.bids.ListBids(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	items := make([]bidListItem, 0, len(all))
	for _, b := range all {
		items = append(items, bidListItem{
			bidResponse: newBidResponse(b),
			Details:     domain.ParseBidConfig(b.Notes),
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bids": items})
}

func (h *AdminBidHandler) getBid(c *gin.Context) {
	bidID, err := strconv.ParseInt(c.Param("bidId"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid bid id")
		return
	}

	details, err := h.bids.GetBidWithDetails(c.Request.Context(), bidID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":             true,
		"bid":                 newBidResponse(details.Bid),
		"configData":          details.Config,
		"totalSeatsAvailable": details.TotalSeatsAvailable,
		"bookedSeats":         details.BookedSeats,
		"availableSeats":      details.AvailableSeats,
		"retailBids":          newRetailBidViews(details.RetailBids),
		"payments":            newPaymentResponses(details.Payments),
	})
}

func (h *AdminBidHandler) expireBids(c *gin.Context) {
	result, err := h.bids.ExpireOldBids(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": result.Success, "message": result.Message, "updatedCount": result.UpdatedCount})
}

type decisionRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"adminNote"`
}

func (h *AdminBidHandler) setDecision(c *gin.Context) {
	retailBidID, err := strconv.ParseInt(c.Param("retailBidId"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid retail bid id")
		return
	}

	var req decisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	rb, info, err := h.retail.Decide(c.Request.Context(), retailBidID, req.Status, req.AdminNote)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := newRetailBidResponse(*rb)
	s := newStatusResponse(*info)
	resp.StatusInfo = &s
	c.JSON(http.StatusOK, gin.H{"success": true, "status": req.Status, "adminNote": req.AdminNote, "retailBid": resp})
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

func toTime(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case string:
		i, err := strconv.Atoi(n)
		return i, err == nil
	default:
		return 0, false
	}
}
