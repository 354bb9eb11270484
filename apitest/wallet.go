package apitest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sunyield/sunyield-go/models"
)

func (s *Server) wallet(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	wallet, err := s.walletFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}
	c.JSON(http.StatusOK, models.Wallet{
		ID:            wallet.ID,
		Balance:       wallet.Balance,
		TotalEarnings: wallet.TotalEarnings,
		TotalInvested: wallet.TotalInvested,
	})
}

func (s *Server) walletTransactions(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var txns []WalletTxn
	if err := s.DB.Where("user_id = ?", user.ID).Order("id desc").Find(&txns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}
	out := make([]models.WalletTransaction, 0, len(txns))
	for _, t := range txns {
		out = append(out, models.WalletTransaction{
			ID:     t.ID,
			Type:   t.Type,
			Amount: t.Amount,
			Date:   t.CreatedAt.Format(time.RFC3339),
			Notes:  t.Notes,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createAddFundsOrder(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req struct {
		Amount float64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount < 100 || req.Amount > 100000 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Amount must be between ₹100 and ₹100000"})
		return
	}

	order := PaymentOrder{
		OrderID: uuid.NewString(),
		UserID:  user.ID,
		Amount:  req.Amount,
		Status:  "PENDING",
	}
	if err := s.DB.Create(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orderId": order.OrderID,
		"amount":  order.Amount,
	})
}

// processPayment is phase two of add-funds: the simulated gateway settles the
// order and the wallet is credited exactly once.
func (s *Server) processPayment(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	orderID := c.Query("orderId")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "orderId is required"})
		return
	}

	var order PaymentOrder
	if err := s.DB.Where("order_id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}
	if order.Status != "PENDING" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order already processed"})
		return
	}

	wallet, err := s.walletFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}

	order.Status = "PAID"
	wallet.Balance += order.Amount
	if err := s.DB.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}
	if err := s.DB.Save(wallet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit wallet"})
		return
	}
	s.DB.Create(&WalletTxn{
		UserID: user.ID,
		Type:   "CREDIT",
		Amount: order.Amount,
		Notes:  "Funds added via payment gateway",
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment processed successfully",
		"amount":  order.Amount,
		"orderId": order.OrderID,
	})
}
