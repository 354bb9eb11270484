package apitest

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sunyield/sunyield-go/models"
)

func (s *Server) engagementStats(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var txns []EngagementTxn
	if err := s.DB.Where("user_id = ?", user.ID).Find(&txns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load engagement history"})
		return
	}

	var stats models.EngagementStats
	for _, t := range txns {
		stats.TotalTransactions++
		switch models.EngagementType(t.Type) {
		case models.EngagementReinvest:
			stats.TotalReinvested += t.Amount
		case models.EngagementDonate:
			stats.TotalDonated += t.Amount
		case models.EngagementGift:
			if models.Direction(t.Direction) == models.DirectionIncoming {
				stats.TotalReceived += t.Amount
			} else {
				stats.TotalGifted += t.Amount
			}
		}
	}
	if wallet, err := s.walletFor(user.ID); err == nil {
		stats.AvailableCredits = wallet.Balance
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) engagementHistory(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var txns []EngagementTxn
	if err := s.DB.Where("user_id = ?", user.ID).Order("id desc").Find(&txns).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load engagement history"})
		return
	}

	out := make([]models.EngagementTransaction, 0, len(txns))
	for _, t := range txns {
		tx := models.EngagementTransaction{
			ID:        t.ID,
			Type:      models.EngagementType(t.Type),
			Amount:    t.Amount,
			Date:      t.CreatedAt.Format(time.RFC3339),
			Notes:     t.Notes,
			Direction: models.Direction(t.Direction),
		}
		if t.ProjectID != 0 {
			var project Project
			if err := s.DB.First(&project, t.ProjectID).Error; err == nil {
				wireProject := project.wire()
				tx.Project = &wireProject
			}
		}
		if t.PeerUserID != 0 {
			var peer User
			if err := s.DB.First(&peer, t.PeerUserID).Error; err == nil {
				wirePeer := peer.wire()
				if tx.Direction == models.DirectionIncoming {
					tx.FromUser = &wirePeer
				} else {
					tx.ToUser = &wirePeer
				}
			}
		}
		out = append(out, tx)
	}
	c.JSON(http.StatusOK, out)
}

type engagementRequest struct {
	ProjectID  uint    `json:"projectId" binding:"required"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
	CouponCode string  `json:"couponCode"`
}

func (s *Server) reinvest(c *gin.Context) {
	s.projectEngagement(c, models.EngagementReinvest, "Reinvestment in ")
}

func (s *Server) donate(c *gin.Context) {
	s.projectEngagement(c, models.EngagementDonate, "Donation to ")
}

// projectEngagement is the shared debit path for reinvest and donate; the two
// differ only in transaction type and wording.
func (s *Server) projectEngagement(c *gin.Context, kind models.EngagementType, notePrefix string) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	var req engagementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project Project
	if err := s.DB.First(&project, req.ProjectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}

	amount := req.Amount
	if req.CouponCode != "" {
		var coupon Coupon
		if err := s.DB.Where("code = ?", req.CouponCode).First(&coupon).Error; err == nil {
			wire := coupon.wire()
			if wire.Usable(amount, time.Now()) {
				amount = models.PayableAmount(amount, wire.Discount(amount))
			}
		}
	}

	wallet, err := s.walletFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}
	if wallet.Balance < amount {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient wallet balance"})
		return
	}

	wallet.Balance -= amount
	if err := s.DB.Save(wallet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit wallet"})
		return
	}
	s.DB.Create(&EngagementTxn{
		UserID:    user.ID,
		Type:      string(kind),
		Direction: string(models.DirectionOutgoing),
		Amount:    amount,
		ProjectID: project.ID,
		Notes:     notePrefix + project.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"amount":     amount,
		"newBalance": wallet.Balance,
	})
}

type giftRequest struct {
	RecipientEmail string  `json:"recipientEmail" binding:"required,email"`
	Amount         float64 `json:"amount" binding:"required,gt=0"`
}

func (s *Server) gift(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	if user.KYCStatus != string(models.KYCApproved) {
		c.JSON(http.StatusForbidden, gin.H{"message": "KYC approval is required to send gifts"})
		return
	}

	var req giftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var recipient User
	if err := s.DB.Where("email = ?", req.RecipientEmail).First(&recipient).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Recipient not found"})
		return
	}
	if recipient.ID == user.ID {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Cannot gift credits to yourself"})
		return
	}

	senderWallet, err := s.walletFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}
	if senderWallet.Balance < req.Amount {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient wallet balance"})
		return
	}
	recipientWallet, err := s.walletFor(recipient.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recipient wallet"})
		return
	}

	senderWallet.Balance -= req.Amount
	recipientWallet.Balance += req.Amount
	if err := s.DB.Save(senderWallet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit wallet"})
		return
	}
	if err := s.DB.Save(recipientWallet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to credit recipient"})
		return
	}
	s.DB.Create(&EngagementTxn{
		UserID:     user.ID,
		Type:       string(models.EngagementGift),
		Direction:  string(models.DirectionOutgoing),
		Amount:     req.Amount,
		PeerUserID: recipient.ID,
		Notes:      "Gift to " + recipient.Email,
	})
	s.DB.Create(&EngagementTxn{
		UserID:     recipient.ID,
		Type:       string(models.EngagementGift),
		Direction:  string(models.DirectionIncoming),
		Amount:     req.Amount,
		PeerUserID: user.ID,
		Notes:      "Gift from " + user.Email,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"amount":     req.Amount,
		"newBalance": senderWallet.Balance,
	})
}
