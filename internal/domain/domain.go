package domain

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleDoctor   Role = "doctor"
	RoleStaff    Role = "staff"
	RolePharmacy Role = "pharmacy"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleStaff, RolePharmacy:
		return true
	}
	return false
}

// CanPrescribe reports whether the role may submit prescriptions.
func (r Role) CanPrescribe() bool {
	return r == RoleDoctor || r == RoleAdmin
}

type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	TokenType    string    `json:"token_type"` // Always "Bearer"
}

type Claims struct {
	UserID     uuid.UUID  `json:"sub"`
	Email      string     `json:"email"`
	Role       Role       `json:"role"`
	HospitalID string     `json:"hospital_id,omitempty"`
	DoctorID   *uuid.UUID `json:"doctor_id,omitempty"`
}
