package models

import (
	"time"

	"connection-travels/internal/domain"
)

type User struct {
	ID           string      `json:"id"`
	Email        string      `json:"email"`
	PasswordHash string      `json:"-"`
	FirstName    string      `json:"firstName"`
	LastName     string      `json:"lastName"`
	Phone        *string     `json:"phone"`
	Role         domain.Role `json:"role"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`

	OwnerProfile *OwnerProfile `json:"ownerProfile,omitempty"`
}

type OwnerProfile struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	CompanyName     string    `json:"companyName"`
	GSTNumber       *string   `json:"gstNumber"`
	Address         *string   `json:"address"`
	VerifiedByAdmin bool      `json:"verifiedByAdmin"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type OwnerSummary struct {
	ID          string `json:"id"`
	CompanyName string `json:"companyName"`
}

type CustomerSummary struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

type RegisterInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required,notblank"`
	LastName  string `json:"lastName"`
	Phone     string `json:"phone"`
}

type OwnerRegisterInput struct {
	RegisterInput
	CompanyName string `json:"companyName" binding:"required,notblank"`
	GSTNumber   string `json:"gstNumber"`
	Address     string `json:"address"`
}
