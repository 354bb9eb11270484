package apitest

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sunyield/sunyield-go/models"
)

// Database rows for the stub backend. These are intentionally close to the
// wire models but carry server-only fields (password hashes, foreign keys)
// the client never sees.

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	PasswordHash string
	FullName     string
	Contact      string
	KYCStatus    string
	IsVerified   bool
	Role         string
	OTP          string
	CreatedAt    time.Time
}

type Wallet struct {
	ID            uint `gorm:"primaryKey"`
	UserID        uint `gorm:"uniqueIndex"`
	Balance       float64
	TotalEarnings float64
	TotalInvested float64
}

type WalletTxn struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"index"`
	Type      string
	Amount    float64
	Notes     string
	CreatedAt time.Time
}

type Project struct {
	ID                      uint `gorm:"primaryKey"`
	Name                    string
	Location                string
	EnergyCapacity          float64
	SubscriptionPrice       float64
	MinContribution         float64
	Efficiency              string
	OperationalValidityYear int
	Status                  string
	Description             string
	ImageURL                string
}

type Subscription struct {
	ID                 uint `gorm:"primaryKey"`
	UserID             uint `gorm:"index"`
	ProjectID          uint `gorm:"index"`
	ContributionAmount float64
	ReservedCapacity   float64
	PaymentOrderID     string
	PaymentStatus      string
	SubscribedAt       time.Time
}

type Withdrawal struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"index"`
	OrderID      string
	Amount       float64
	PayoutMethod string
	UPIID        string
	Status       string
	RequestedAt  time.Time
	ProcessedAt  *time.Time
}

type Coupon struct {
	ID            uint   `gorm:"primaryKey"`
	Code          string `gorm:"uniqueIndex"`
	Name          string
	Description   string
	DiscountType  string
	DiscountValue float64
	MinAmount     float64
	MaxDiscount   float64
	MaxUsage      int
	CurrentUsage  int
	IsActive      bool
	ValidFrom     *time.Time
	ValidUntil    *time.Time
}

type KYCRecord struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"index"`
	PAN          string
	DocumentPath string
	Status       string
	SubmittedAt  time.Time
}

type EngagementTxn struct {
	ID         uint `gorm:"primaryKey"`
	UserID     uint `gorm:"index"`
	Type       string
	Direction  string
	Amount     float64
	ProjectID  uint
	PeerUserID uint
	Notes      string
	CreatedAt  time.Time
}

type PaymentOrder struct {
	ID        uint   `gorm:"primaryKey"`
	OrderID   string `gorm:"uniqueIndex"`
	UserID    uint   `gorm:"index"`
	Amount    float64
	Status    string
	CreatedAt time.Time
}

type Setting struct {
	ID    uint   `gorm:"primaryKey"`
	Key   string `gorm:"uniqueIndex"`
	Value float64
}

const settingMonthlyWithdrawalCap = "monthly_withdrawal_cap"

// openDB opens a private in-memory SQLite database. The shared-cache DSN with
// a unique name keeps the database alive across the pool's connections while
// isolating it from other servers in the same process.
func openDB() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.AutoMigrate(
		&User{}, &Wallet{}, &WalletTxn{},
		&Project{}, &Subscription{}, &Withdrawal{},
		&Coupon{}, &KYCRecord{}, &EngagementTxn{},
		&PaymentOrder{}, &Setting{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	db.Create(&Setting{Key: settingMonthlyWithdrawalCap, Value: 3000})
	return db, nil
}

// CreateUser inserts a verified user with a funded wallet and returns it.
func (s *Server) CreateUser(email, password string, balance float64) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test User",
		Contact:      "9999999999",
		KYCStatus:    string(models.KYCPending),
		IsVerified:   true,
		Role:         string(models.RoleUser),
	}
	if err := s.DB.Create(&user).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Create(&Wallet{UserID: user.ID, Balance: balance}).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateAdmin inserts an admin user (no wallet; admins do not invest).
func (s *Server) CreateAdmin(email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	admin := User{
		Email:        email,
		PasswordHash: string(hash),
		FullName:     "Test Admin",
		Contact:      "8888888888",
		KYCStatus:    string(models.KYCApproved),
		IsVerified:   true,
		Role:         string(models.RoleAdmin),
	}
	if err := s.DB.Create(&admin).Error; err != nil {
		return nil, err
	}
	return &admin, nil
}

// CreateProject inserts an active project.
func (s *Server) CreateProject(name string, minContribution, capacity float64) (*Project, error) {
	project := Project{
		Name:              name,
		Location:          "Jaipur, Rajasthan",
		EnergyCapacity:    capacity,
		SubscriptionPrice: minContribution,
		MinContribution:   minContribution,
		Efficiency:        string(models.EfficiencyHigh),
		Status:            string(models.ProjectActive),
	}
	if err := s.DB.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// CreateCoupon inserts an active coupon.
func (s *Server) CreateCoupon(code string, discountType models.DiscountType, value, minAmount, maxDiscount float64) (*Coupon, error) {
	coupon := Coupon{
		Code:          code,
		Name:          code,
		DiscountType:  string(discountType),
		DiscountValue: value,
		MinAmount:     minAmount,
		MaxDiscount:   maxDiscount,
		IsActive:      true,
	}
	if err := s.DB.Create(&coupon).Error; err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ApproveKYCFor marks a user's KYC as approved directly in the store.
func (s *Server) ApproveKYCFor(userID uint) error {
	return s.DB.Model(&User{}).Where("id = ?", userID).
		Update("kyc_status", string(models.KYCApproved)).Error
}

// Balance reads a user's wallet balance directly from the store.
func (s *Server) Balance(userID uint) (float64, error) {
	var wallet Wallet
	if err := s.DB.Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		return 0, err
	}
	return wallet.Balance, nil
}

// wire-model conversions

func (u User) wire() models.User {
	return models.User{
		ID:         u.ID,
		Email:      u.Email,
		FullName:   u.FullName,
		Contact:    u.Contact,
		KYCStatus:  models.KYCStatus(u.KYCStatus),
		IsVerified: u.IsVerified,
		Role:       models.Role(u.Role),
	}
}

func (p Project) wire() models.Project {
	return models.Project{
		ID:                      p.ID,
		Name:                    p.Name,
		Location:                p.Location,
		EnergyCapacity:          p.EnergyCapacity,
		SubscriptionPrice:       p.SubscriptionPrice,
		MinContribution:         p.MinContribution,
		Efficiency:              models.Efficiency(p.Efficiency),
		OperationalValidityYear: p.OperationalValidityYear,
		Status:                  models.ProjectStatus(p.Status),
		Description:             p.Description,
		ImageURL:                p.ImageURL,
	}
}

func (c Coupon) wire() models.Coupon {
	return models.Coupon{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Description:   c.Description,
		DiscountType:  models.DiscountType(c.DiscountType),
		DiscountValue: c.DiscountValue,
		MinAmount:     c.MinAmount,
		MaxDiscount:   c.MaxDiscount,
		MaxUsage:      c.MaxUsage,
		CurrentUsage:  c.CurrentUsage,
		IsActive:      c.IsActive,
		ValidFrom:     c.ValidFrom,
		ValidUntil:    c.ValidUntil,
	}
}
