package apitest

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/sunyield/sunyield-go/models"
)

const capacityPerRupee = 1.0 / 50 // watts reserved per rupee contributed

func (s *Server) activeProjects(c *gin.Context) {
	var projects []Project
	if err := s.DB.Where("status = ?", string(models.ProjectActive)).Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.wire())
	}
	c.JSON(http.StatusOK, out)
}

type subscribeRequest struct {
	ContributionAmount float64 `json:"contributionAmount"`
	CouponCode         string  `json:"couponCode"`
}

func (s *Server) subscribe(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	projectID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid project id"})
		return
	}

	var req subscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var project Project
	if err := s.DB.First(&project, projectID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}

	var existing Subscription
	err = s.DB.Where("user_id = ? AND project_id = ? AND payment_status = ?",
		user.ID, project.ID, string(models.PaymentSuccess)).First(&existing).Error
	if err == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": "You have already subscribed to this project",
			"code":    "DUPLICATE_SUBSCRIPTION",
		})
		return
	}

	amount := req.ContributionAmount
	minAmount := project.MinContribution
	if minAmount <= 0 {
		minAmount = project.SubscriptionPrice
	}
	if amount < minAmount {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Minimum contribution for this project is ₹%.0f", minAmount),
		})
		return
	}

	var discount float64
	var usedCoupon *Coupon
	if req.CouponCode != "" {
		var coupon Coupon
		if err := s.DB.Where("code = ?", req.CouponCode).First(&coupon).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid coupon code"})
			return
		}
		wire := coupon.wire()
		if !wire.Usable(amount, time.Now()) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Coupon is not applicable to this contribution"})
			return
		}
		discount = wire.Discount(amount)
		usedCoupon = &coupon
	}
	finalPrice := models.PayableAmount(amount, discount)

	wallet, err := s.walletFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}
	if wallet.Balance < finalPrice {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient wallet balance"})
		return
	}

	sub := Subscription{
		UserID:             user.ID,
		ProjectID:          project.ID,
		ContributionAmount: finalPrice,
		ReservedCapacity:   finalPrice * capacityPerRupee,
		PaymentOrderID:     uuid.NewString(),
		PaymentStatus:      string(models.PaymentSuccess),
		SubscribedAt:       time.Now(),
	}

	wallet.Balance -= finalPrice
	wallet.TotalInvested += finalPrice
	if err := s.DB.Save(wallet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit wallet"})
		return
	}
	if err := s.DB.Create(&sub).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subscription"})
		return
	}
	if usedCoupon != nil {
		s.DB.Model(usedCoupon).Update("current_usage", usedCoupon.CurrentUsage+1)
	}
	s.DB.Create(&WalletTxn{
		UserID: user.ID,
		Type:   "DEBIT",
		Amount: finalPrice,
		Notes:  "Contribution to " + project.Name,
	})

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"message":          "Subscription successful",
		"projectName":      project.Name,
		"amount":           finalPrice,
		"originalAmount":   amount,
		"discountAmount":   discount,
		"reservedCapacity": sub.ReservedCapacity,
		"newBalance":       wallet.Balance,
	})
}

func (s *Server) subscriptionHistory(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var subs []Subscription
	if err := s.DB.Where("user_id = ?", user.ID).Order("id desc").Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}
	out := make([]models.Subscription, 0, len(subs))
	for _, sub := range subs {
		var project Project
		s.DB.First(&project, sub.ProjectID)
		wireProject := project.wire()
		subscribedAt := sub.SubscribedAt
		out = append(out, models.Subscription{
			ID:                 sub.ID,
			Project:            &wireProject,
			ContributionAmount: sub.ContributionAmount,
			ReservedCapacity:   sub.ReservedCapacity,
			PaymentOrderID:     sub.PaymentOrderID,
			PaymentStatus:      models.PaymentStatus(sub.PaymentStatus),
			SubscribedAt:       &subscribedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// subscriptionWebhook records a gateway outcome for a pending subscription
// order.
func (s *Server) subscriptionWebhook(c *gin.Context) {
	orderID := c.Query("orderId")
	status := c.Query("status")
	if orderID == "" || status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "orderId and status are required"})
		return
	}
	result := s.DB.Model(&Subscription{}).
		Where("payment_order_id = ? AND payment_status = ?", orderID, string(models.PaymentPending)).
		Update("payment_status", status)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subscription"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type withdrawalRequest struct {
	Amount       float64 `json:"amount" binding:"required"`
	PayoutMethod string  `json:"payoutMethod" binding:"required"`
	UPIID        string  `json:"upiId" binding:"required"`
}

func (s *Server) requestWithdrawal(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	if user.KYCStatus != string(models.KYCApproved) {
		c.JSON(http.StatusForbidden, gin.H{"message": "KYC verification is required before withdrawing funds"})
		return
	}

	var req withdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Amount < 100 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Minimum withdrawal amount is ₹100"})
		return
	}

	wallet, err := s.walletFor(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load wallet"})
		return
	}
	if req.Amount > wallet.Balance {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Insufficient wallet balance"})
		return
	}

	cap, withdrawn := s.monthlyCapState(user.ID)
	if withdrawn+req.Amount > cap {
		c.JSON(http.StatusBadRequest, gin.H{
			"message": fmt.Sprintf("Monthly withdrawal limit exceeded. You can withdraw up to ₹%.0f this month", cap-withdrawn),
		})
		return
	}

	withdrawal := Withdrawal{
		UserID:       user.ID,
		OrderID:      uuid.NewString(),
		Amount:       req.Amount,
		PayoutMethod: req.PayoutMethod,
		UPIID:        req.UPIID,
		Status:       string(models.WithdrawalPending),
		RequestedAt:  time.Now(),
	}

	wallet.Balance -= req.Amount
	if err := s.DB.Save(wallet).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to debit wallet"})
		return
	}
	if err := s.DB.Create(&withdrawal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create withdrawal"})
		return
	}
	s.DB.Create(&WalletTxn{
		UserID: user.ID,
		Type:   "DEBIT",
		Amount: req.Amount,
		Notes:  "Withdrawal request",
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"orderId": withdrawal.OrderID,
		"amount":  withdrawal.Amount,
		"status":  withdrawal.Status,
		"message": "Withdrawal request submitted",
	})
}

func (s *Server) withdrawalHistory(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var withdrawals []Withdrawal
	if err := s.DB.Where("user_id = ?", user.ID).Order("id desc").Find(&withdrawals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load withdrawals"})
		return
	}
	out := make([]models.WithdrawalRequest, 0, len(withdrawals))
	for _, w := range withdrawals {
		requestedAt := w.RequestedAt
		out = append(out, models.WithdrawalRequest{
			ID:           w.ID,
			Amount:       w.Amount,
			PayoutMethod: w.PayoutMethod,
			UPIID:        w.UPIID,
			Status:       models.WithdrawalStatus(w.Status),
			RequestedAt:  &requestedAt,
			ProcessedAt:  w.ProcessedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// monthlyCapState returns the configured cap and the amount already counted
// against it this month. Rejected withdrawals are refunded and do not count.
func (s *Server) monthlyCapState(userID uint) (cap, withdrawn float64) {
	var setting Setting
	if err := s.DB.Where("key = ?", settingMonthlyWithdrawalCap).First(&setting).Error; err == nil {
		cap = setting.Value
	}

	monthStart := time.Now().UTC().Truncate(24 * time.Hour)
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	var withdrawals []Withdrawal
	s.DB.Where("user_id = ? AND status <> ? AND requested_at >= ?",
		userID, string(models.WithdrawalRejected), monthStart).Find(&withdrawals)
	for _, w := range withdrawals {
		withdrawn += w.Amount
	}
	return cap, withdrawn
}

func (s *Server) withdrawalCapInfo(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	cap, withdrawn := s.monthlyCapState(user.ID)
	remaining := cap - withdrawn
	if remaining < 0 {
		remaining = 0
	}
	c.JSON(http.StatusOK, models.WithdrawalCapInfo{
		MonthlyCap:              cap,
		TotalWithdrawnThisMonth: withdrawn,
		RemainingAmount:         remaining,
		CurrentMonth:            time.Now().UTC().Format("2006-01"),
	})
}

type couponValidateRequest struct {
	Code   string  `json:"code" binding:"required"`
	Amount float64 `json:"amount" binding:"required"`
}

func (s *Server) validateCoupon(c *gin.Context) {
	var req couponValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var coupon Coupon
	if err := s.DB.Where("code = ?", req.Code).First(&coupon).Error; err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "discount": 0, "message": "Invalid coupon code"})
		return
	}
	wire := coupon.wire()
	if !wire.Usable(req.Amount, time.Now()) {
		c.JSON(http.StatusOK, gin.H{"valid": false, "discount": 0, "message": "Coupon is not applicable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":    true,
		"discount": wire.Discount(req.Amount),
		"message":  "Coupon applied",
	})
}

func (s *Server) activeCoupons(c *gin.Context) {
	var coupons []Coupon
	if err := s.DB.Where("is_active = ?", true).Find(&coupons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coupons"})
		return
	}
	out := make([]models.Coupon, 0, len(coupons))
	for _, coupon := range coupons {
		out = append(out, coupon.wire())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) submitKYC(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}

	pan := c.PostForm("pan")
	if pan == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "PAN is required"})
		return
	}
	file, err := c.FormFile("document")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Supporting document is required"})
		return
	}

	record := KYCRecord{
		UserID:       user.ID,
		PAN:          pan,
		DocumentPath: "uploads/kyc/" + file.Filename,
		Status:       string(models.KYCPending),
		SubmittedAt:  time.Now(),
	}
	if err := s.DB.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit KYC"})
		return
	}
	s.DB.Model(user).Update("kyc_status", string(models.KYCPending))

	c.JSON(http.StatusOK, models.KYC{
		ID:           record.ID,
		PAN:          record.PAN,
		DocumentPath: record.DocumentPath,
		Status:       models.KYCStatus(record.Status),
		SubmittedAt:  record.SubmittedAt.Format(time.RFC3339),
	})
}

func (s *Server) kycStatus(c *gin.Context) {
	user, ok := s.currentUser(c)
	if !ok {
		return
	}
	var record KYCRecord
	if err := s.DB.Where("user_id = ?", user.ID).Order("id desc").First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "No KYC submission found"})
		return
	}
	c.JSON(http.StatusOK, models.KYC{
		ID:           record.ID,
		PAN:          record.PAN,
		DocumentPath: record.DocumentPath,
		Status:       models.KYCStatus(record.Status),
		SubmittedAt:  record.SubmittedAt.Format(time.RFC3339),
	})
}
