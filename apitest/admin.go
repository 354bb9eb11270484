package apitest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sunyield/sunyield-go/models"
)

func (s *Server) dashboardStats(c *gin.Context) {
	var users, projects, pendingKYC, subscriptions int64
	s.DB.Model(&User{}).Count(&users)
	s.DB.Model(&Project{}).Count(&projects)
	s.DB.Model(&KYCRecord{}).Where("status = ?", string(models.KYCPending)).Count(&pendingKYC)
	s.DB.Model(&Subscription{}).Count(&subscriptions)

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":         users,
		"totalProjects":      projects,
		"pendingKyc":         pendingKYC,
		"totalSubscriptions": subscriptions,
	})
}

func (s *Server) listUsers(c *gin.Context) {
	var users []User
	if err := s.DB.Order("id").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.wire())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) setUserRole(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid user id"})
		return
	}
	var req struct {
		Role string `json:"role" binding:"required,oneof=USER ADMIN"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	result := s.DB.Model(&User{}).Where("id = ?", id).Update("role", req.Role)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type projectInput struct {
	Name                    string  `json:"name" binding:"required"`
	Location                string  `json:"location" binding:"required"`
	EnergyCapacity          float64 `json:"energyCapacity" binding:"required,gt=0"`
	SubscriptionPrice       float64 `json:"subscriptionPrice"`
	MinContribution         float64 `json:"minContribution"`
	Efficiency              string  `json:"efficiency"`
	OperationalValidityYear int     `json:"operationalValidityYear"`
	Status                  string  `json:"status"`
	Description             string  `json:"description"`
}

func (in projectInput) row() Project {
	status := in.Status
	if status == "" {
		status = string(models.ProjectActive)
	}
	return Project{
		Name:                    in.Name,
		Location:                in.Location,
		EnergyCapacity:          in.EnergyCapacity,
		SubscriptionPrice:       in.SubscriptionPrice,
		MinContribution:         in.MinContribution,
		Efficiency:              in.Efficiency,
		OperationalValidityYear: in.OperationalValidityYear,
		Status:                  status,
		Description:             in.Description,
	}
}

func (s *Server) listProjects(c *gin.Context) {
	var projects []Project
	if err := s.DB.Order("id").Find(&projects).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load projects"})
		return
	}
	out := make([]models.Project, 0, len(projects))
	for _, p := range projects {
		out = append(out, p.wire())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createProject(c *gin.Context) {
	var in projectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	project := in.row()
	if err := s.DB.Create(&project).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		return
	}
	c.JSON(http.StatusCreated, project.wire())
}

func (s *Server) updateProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid project id"})
		return
	}
	var in projectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var project Project
	if err := s.DB.First(&project, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}
	updated := in.row()
	updated.ID = project.ID
	updated.ImageURL = project.ImageURL
	if err := s.DB.Save(&updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		return
	}
	c.JSON(http.StatusOK, updated.wire())
}

func (s *Server) pauseProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid project id"})
		return
	}
	result := s.DB.Model(&Project{}).Where("id = ?", id).
		Update("status", string(models.ProjectPaused))
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) deleteProject(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid project id"})
		return
	}
	result := s.DB.Delete(&Project{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) uploadProjectImage(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid project id"})
		return
	}
	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image is required"})
		return
	}
	result := s.DB.Model(&Project{}).Where("id = ?", id).
		Update("image_url", "uploads/projects/"+file.Filename)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) pendingKYC(c *gin.Context) {
	var records []KYCRecord
	if err := s.DB.Where("status = ?", string(models.KYCPending)).Order("id").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load KYC records"})
		return
	}
	out := make([]models.KYC, 0, len(records))
	for _, r := range records {
		kyc := models.KYC{
			ID:           r.ID,
			PAN:          r.PAN,
			DocumentPath: r.DocumentPath,
			Status:       models.KYCStatus(r.Status),
			SubmittedAt:  r.SubmittedAt.Format(time.RFC3339),
		}
		var user User
		if err := s.DB.First(&user, r.UserID).Error; err == nil {
			wireUser := user.wire()
			kyc.User = &wireUser
		}
		out = append(out, kyc)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) approveKYC(c *gin.Context) {
	s.resolveKYC(c, models.KYCApproved)
}

func (s *Server) rejectKYC(c *gin.Context) {
	s.resolveKYC(c, models.KYCRejected)
}

func (s *Server) resolveKYC(c *gin.Context, status models.KYCStatus) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid KYC id"})
		return
	}
	var record KYCRecord
	if err := s.DB.First(&record, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "KYC record not found"})
		return
	}
	record.Status = string(status)
	if err := s.DB.Save(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update KYC record"})
		return
	}
	s.DB.Model(&User{}).Where("id = ?", record.UserID).Update("kyc_status", string(status))
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) pendingSubscriptions(c *gin.Context) {
	var subs []Subscription
	if err := s.DB.Where("payment_status = ?", string(models.PaymentPending)).Order("id").Find(&subs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscriptions"})
		return
	}
	out := make([]models.Subscription, 0, len(subs))
	for _, sub := range subs {
		subscribedAt := sub.SubscribedAt
		wireSub := models.Subscription{
			ID:                 sub.ID,
			ContributionAmount: sub.ContributionAmount,
			ReservedCapacity:   sub.ReservedCapacity,
			PaymentOrderID:     sub.PaymentOrderID,
			PaymentStatus:      models.PaymentStatus(sub.PaymentStatus),
			SubscribedAt:       &subscribedAt,
		}
		var user User
		if err := s.DB.First(&user, sub.UserID).Error; err == nil {
			wireUser := user.wire()
			wireSub.User = &wireUser
		}
		var project Project
		if err := s.DB.First(&project, sub.ProjectID).Error; err == nil {
			wireProject := project.wire()
			wireSub.Project = &wireProject
		}
		out = append(out, wireSub)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) approvePayment(c *gin.Context) {
	s.resolvePayment(c, models.PaymentSuccess)
}

func (s *Server) rejectPayment(c *gin.Context) {
	s.resolvePayment(c, models.PaymentFailed)
}

func (s *Server) resolvePayment(c *gin.Context, status models.PaymentStatus) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid subscription id"})
		return
	}
	result := s.DB.Model(&Subscription{}).
		Where("id = ? AND payment_status = ?", id, string(models.PaymentPending)).
		Update("payment_status", string(status))
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Pending subscription not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) approveWithdrawal(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid withdrawal id"})
		return
	}
	var withdrawal Withdrawal
	if err := s.DB.First(&withdrawal, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Withdrawal not found"})
		return
	}
	if withdrawal.Status != string(models.WithdrawalPending) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Withdrawal already processed"})
		return
	}
	now := time.Now()
	withdrawal.Status = string(models.WithdrawalApproved)
	withdrawal.ProcessedAt = &now
	if err := s.DB.Save(&withdrawal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update withdrawal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// rejectWithdrawal refunds the held amount; rejected requests stop counting
// against the monthly cap.
func (s *Server) rejectWithdrawal(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid withdrawal id"})
		return
	}
	var withdrawal Withdrawal
	if err := s.DB.First(&withdrawal, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Withdrawal not found"})
		return
	}
	if withdrawal.Status != string(models.WithdrawalPending) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Withdrawal already processed"})
		return
	}

	now := time.Now()
	withdrawal.Status = string(models.WithdrawalRejected)
	withdrawal.ProcessedAt = &now
	if err := s.DB.Save(&withdrawal).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update withdrawal"})
		return
	}

	wallet, err := s.walletFor(withdrawal.UserID)
	if err == nil {
		wallet.Balance += withdrawal.Amount
		s.DB.Save(wallet)
		s.DB.Create(&WalletTxn{
			UserID: withdrawal.UserID,
			Type:   "CREDIT",
			Amount: withdrawal.Amount,
			Notes:  "Withdrawal request rejected, amount refunded",
		})
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type couponInput struct {
	Code          string  `json:"code" binding:"required"`
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	DiscountType  string  `json:"discountType" binding:"required,oneof=PERCENTAGE FIXED"`
	DiscountValue float64 `json:"discountValue" binding:"required,gt=0"`
	MinAmount     float64 `json:"minAmount"`
	MaxDiscount   float64 `json:"maxDiscount"`
	MaxUsage      int     `json:"maxUsage"`
	IsActive      bool    `json:"isActive"`
	ValidFrom     string  `json:"validFrom"`
	ValidUntil    string  `json:"validUntil"`
}

func (in couponInput) row() Coupon {
	coupon := Coupon{
		Code:          in.Code,
		Name:          in.Name,
		Description:   in.Description,
		DiscountType:  in.DiscountType,
		DiscountValue: in.DiscountValue,
		MinAmount:     in.MinAmount,
		MaxDiscount:   in.MaxDiscount,
		MaxUsage:      in.MaxUsage,
		IsActive:      in.IsActive,
	}
	if t, err := time.Parse(time.RFC3339, in.ValidFrom); err == nil {
		coupon.ValidFrom = &t
	}
	if t, err := time.Parse(time.RFC3339, in.ValidUntil); err == nil {
		coupon.ValidUntil = &t
	}
	return coupon
}

func (s *Server) listCoupons(c *gin.Context) {
	var coupons []Coupon
	if err := s.DB.Order("id").Find(&coupons).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load coupons"})
		return
	}
	out := make([]models.Coupon, 0, len(coupons))
	for _, coupon := range coupons {
		out = append(out, coupon.wire())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createCoupon(c *gin.Context) {
	var in couponInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	coupon := in.row()
	if err := s.DB.Create(&coupon).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Coupon code already exists"})
		return
	}
	c.JSON(http.StatusCreated, coupon.wire())
}

func (s *Server) updateCoupon(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid coupon id"})
		return
	}
	var in couponInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var existing Coupon
	if err := s.DB.First(&existing, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Coupon not found"})
		return
	}
	updated := in.row()
	updated.ID = existing.ID
	updated.CurrentUsage = existing.CurrentUsage
	if err := s.DB.Save(&updated).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update coupon"})
		return
	}
	c.JSON(http.StatusOK, updated.wire())
}

func (s *Server) deleteCoupon(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid coupon id"})
		return
	}
	result := s.DB.Delete(&Coupon{}, id)
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "Coupon not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) getMonthlyCap(c *gin.Context) {
	var setting Setting
	if err := s.DB.Where("key = ?", settingMonthlyWithdrawalCap).First(&setting).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"amount": setting.Value})
}

func (s *Server) setMonthlyCap(c *gin.Context) {
	var req struct {
		Amount float64 `json:"amount" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.DB.Model(&Setting{}).Where("key = ?", settingMonthlyWithdrawalCap).
		Update("value", req.Amount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update config"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "amount": req.Amount})
}
