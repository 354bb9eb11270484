// Package apitest runs an in-process SunYield backend against an in-memory
// SQLite store. It exists for the package tests and for the sunyield-stub
// binary; it mirrors the production API's routes, payloads and error bodies
// closely enough that the client cannot tell them apart.
package apitest

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

const jwtSecret = "sunyield-stub-secret"

// Claims carried by every token the stub issues.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type Server struct {
	DB     *gorm.DB
	engine *gin.Engine
	http   *httptest.Server
}

func New() (*Server, error) {
	db, err := openDB()
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.TestMode)
	s := &Server{DB: db, engine: gin.New()}
	s.routes()
	return s, nil
}

// Start binds the server to an ephemeral port and returns its base URL.
func (s *Server) Start() string {
	if s.http == nil {
		s.http = httptest.NewServer(s.engine)
	}
	return s.http.URL
}

func (s *Server) Close() {
	if s.http != nil {
		s.http.Close()
	}
}

// Engine exposes the router for standalone serving (cmd/sunyield-stub).
func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) routes() {
	r := s.engine

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "sunyield-stub"})
	})

	auth := r.Group("/auth")
	{
		auth.POST("/register", s.register)
		auth.POST("/login", s.login)
		auth.POST("/verify-otp", s.verifyOTP)
		auth.POST("/resend-otp", s.resendOTP)
		auth.POST("/forgot-password", s.forgotPassword)
		auth.GET("/me", s.authRequired(), s.me)
	}

	api := r.Group("/api")
	{
		api.GET("/projects/active", s.activeProjects)
		api.POST("/projects/admin/:id/image", s.authRequired(), s.requireRole("ADMIN"), s.uploadProjectImage)

		user := api.Group("", s.authRequired())
		{
			user.GET("/wallet", s.wallet)
			user.GET("/wallet/transactions", s.walletTransactions)
			user.POST("/wallet/add-funds", s.createAddFundsOrder)
			user.POST("/wallet/add-funds/process-payment", s.processPayment)

			user.POST("/subscriptions/:id", s.subscribe)
			user.GET("/subscriptions/history", s.subscriptionHistory)
			user.POST("/subscriptions/webhook", s.subscriptionWebhook)

			user.POST("/withdrawal/request", s.requestWithdrawal)
			user.GET("/withdrawal/history", s.withdrawalHistory)
			user.GET("/withdrawal/cap-info", s.withdrawalCapInfo)

			user.POST("/coupons/validate", s.validateCoupon)
			user.GET("/coupons/active", s.activeCoupons)

			user.POST("/kyc/submit", s.submitKYC)
			user.GET("/kyc/status", s.kycStatus)

			user.GET("/engagement/stats", s.engagementStats)
			user.GET("/engagement/history", s.engagementHistory)
			user.POST("/engagement/reinvest", s.reinvest)
			user.POST("/engagement/donate", s.donate)
			user.POST("/engagement/gift", s.gift)
		}
	}

	admin := r.Group("/admin", s.authRequired(), s.requireRole("ADMIN"))
	{
		admin.GET("/dashboard/stats", s.dashboardStats)
		admin.GET("/users", s.listUsers)
		admin.POST("/users/:id/role", s.setUserRole)

		admin.GET("/projects", s.listProjects)
		admin.POST("/projects", s.createProject)
		admin.PUT("/projects/:id", s.updateProject)
		admin.PATCH("/projects/:id/pause", s.pauseProject)
		admin.DELETE("/projects/:id", s.deleteProject)

		admin.GET("/kyc/pending", s.pendingKYC)
		admin.POST("/kyc/:id/approve", s.approveKYC)
		admin.POST("/kyc/:id/reject", s.rejectKYC)

		admin.GET("/subscriptions/pending", s.pendingSubscriptions)
		admin.POST("/subscriptions/:id/approve", s.approvePayment)
		admin.POST("/subscriptions/:id/reject", s.rejectPayment)

		admin.POST("/withdrawals/:id/approve", s.approveWithdrawal)
		admin.POST("/withdrawals/:id/reject", s.rejectWithdrawal)

		admin.GET("/coupons", s.listCoupons)
		admin.POST("/coupons", s.createCoupon)
		admin.PUT("/coupons/:id", s.updateCoupon)
		admin.DELETE("/coupons/:id", s.deleteCoupon)

		admin.GET("/config/monthly-withdrawal-cap", s.getMonthlyCap)
		admin.POST("/config/monthly-withdrawal-cap", s.setMonthlyCap)
	}
}

// IssueToken mints a token the way the login handler does. Tests use it to
// authenticate a client without going through the login round trip.
func (s *Server) IssueToken(userID uint, role string) (string, error) {
	return s.issueToken(userID, role, 24*time.Hour)
}

func (s *Server) issueToken(userID uint, role string, expiry time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(jwtSecret))
}

func (s *Server) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header is required"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid authorization header format"})
			c.Abort()
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(jwtSecret), nil
		})
		if err != nil || !token.Valid {
			if errors.Is(err, jwt.ErrTokenExpired) {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Token has expired", "code": "ExpiredToken"})
			} else {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token", "code": "InvalidToken"})
			}
			c.Abort()
			return
		}

		c.Set("userID", claims.UserID)
		c.Set("role", claims.Role)
		c.Next()
	}
}

func (s *Server) requireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole := c.GetString("role")
		for _, role := range roles {
			if userRole == role {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden: insufficient permissions"})
		c.Abort()
	}
}

// currentUser loads the authenticated user's row.
func (s *Server) currentUser(c *gin.Context) (*User, bool) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return nil, false
	}
	var user User
	if err := s.DB.First(&user, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return nil, false
	}
	return &user, true
}

// walletFor loads a user's wallet, creating it lazily for legacy rows.
func (s *Server) walletFor(userID uint) (*Wallet, error) {
	var wallet Wallet
	err := s.DB.Where("user_id = ?", userID).First(&wallet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		wallet = Wallet{UserID: userID}
		err = s.DB.Create(&wallet).Error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	return &wallet, nil
}
