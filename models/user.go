package models

type KYCStatus string

const (
	KYCPending  KYCStatus = "PENDING"
	KYCApproved KYCStatus = "APPROVED"
	KYCRejected KYCStatus = "REJECTED"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

type User struct {
	ID         uint      `json:"id"`
	Email      string    `json:"email"`
	FullName   string    `json:"fullName"`
	Contact    string    `json:"contact"`
	KYCStatus  KYCStatus `json:"kycStatus"`
	IsVerified bool      `json:"isVerified"`
	Role       Role      `json:"role"`
}

// KYC is the client's view of a verification request. DocumentPath points at
// server-side storage; the client never reads it.
type KYC struct {
	ID           uint      `json:"id"`
	User         *User     `json:"user,omitempty"`
	PAN          string    `json:"pan"`
	DocumentPath string    `json:"documentPath"`
	Status       KYCStatus `json:"status"`
	SubmittedAt  string    `json:"submittedAt,omitempty"`
}
