package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/infinitewater/bucket/pkg/refill"
)

// Decider decides item-use events.
type Decider interface {
	Explain(event refill.ConsumptionEvent) (int, refill.Reason)
}

// ItemUseRequest is the body the host posts for every "substance used" event.
type ItemUseRequest struct {
	Kind   refill.ConsumableKind `json:"kind" binding:"required"`
	Item   *refill.Item          `json:"item"`
	Amount *int                  `json:"amount" binding:"required,gte=0"`
}

// ItemUseResponse tells the host how much to actually consume.
type ItemUseResponse struct {
	Amount int           `json:"amount"`
	Reason refill.Reason `json:"reason"`
}

func (r ItemUseRequest) event() refill.ConsumptionEvent {
	return refill.ConsumptionEvent{
		Kind:   r.Kind,
		Item:   r.Item,
		Amount: *r.Amount,
	}
}

// ItemUseHandler returns an HTTP handler for the item-use hook.
func ItemUseHandler(decider Decider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req ItemUseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid event: "+err.Error(), http.StatusBadRequest)
			return
		}
		if req.Kind == "" || req.Amount == nil || *req.Amount < 0 {
			http.Error(w, "Invalid event: kind and a non-negative amount are required", http.StatusBadRequest)
			return
		}

		amount, reason := decider.Explain(req.event())

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ItemUseResponse{Amount: amount, Reason: reason})
	}
}

// GinItemUseHandler returns a Gin handler for the item-use hook.
func GinItemUseHandler(decider Decider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ItemUseRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event", "message": err.Error()})
			return
		}

		amount, reason := decider.Explain(req.event())

		c.JSON(http.StatusOK, ItemUseResponse{Amount: amount, Reason: reason})
	}
}
