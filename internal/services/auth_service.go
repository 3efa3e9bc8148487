package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"connection-travels/internal/auth"
	"connection-travels/internal/db"
	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
	"connection-travels/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

var errBadCredentials = domain.UnauthorizedError{Msg: "invalid email or password"}

type AuthService struct {
	Users      UserStore
	Tokens     auth.Issuer
	Now        Clock
	NewID      IDSource
	BcryptCost int
	RequestID  string
}

func (s AuthService) WithRequestID(id string) AuthService {
	s.RequestID = id
	return s
}

type LoginResult struct {
	auth.TokenPair
	User models.User `json:"user"`
}

func (s AuthService) cost() int {
	if s.BcryptCost > 0 {
		return s.BcryptCost
	}
	return bcrypt.DefaultCost
}

// Login checks the password and issues a token pair. Owners get their profile id in the token.
func (s AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = utils.NormalizeEmail(email)
	if email == "" || password == "" {
		return LoginResult{}, domain.ValidationError{Msg: "email and password are required"}
	}
	u, err := s.Users.GetByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return LoginResult{}, errBadCredentials
	}
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "load user", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		utils.LogEvent(s.RequestID, "auth", "login_failed", fmt.Sprintf("user_id=%s", u.ID))
		return LoginResult{}, errBadCredentials
	}

	caller := domain.RequestContext{UserID: u.ID, Role: u.Role}
	if u.Role == domain.RoleOwner {
		profile, err := s.Users.GetOwnerProfileByUser(ctx, u.ID)
		if err != nil {
			return LoginResult{}, lookupErr("owner profile", err)
		}
		caller.OwnerID = profile.ID
		u.OwnerProfile = &profile
	}
	pair, err := s.Tokens.IssuePair(caller)
	if err != nil {
		return LoginResult{}, domain.InternalError{Msg: "issue token", Err: err}
	}

	utils.LogEvent(s.RequestID, "auth", "login", fmt.Sprintf("user_id=%s role=%s", u.ID, u.Role))
	return LoginResult{TokenPair: pair, User: u}, nil
}

func (s AuthService) newUser(in models.RegisterInput, role domain.Role) (models.User, error) {
	email := utils.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return models.User{}, domain.ValidationError{Field: "email", Msg: "must be a valid address"}
	}
	if len(in.Password) < 8 {
		return models.User{}, domain.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}
	if strings.TrimSpace(in.FirstName) == "" {
		return models.User{}, domain.ValidationError{Field: "firstName", Msg: "is required"}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost())
	if err != nil {
		return models.User{}, domain.InternalError{Msg: "hash password", Err: err}
	}
	now := s.Now.now()
	return models.User{
		ID:           s.NewID.next(),
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    utils.NormalizeSpace(in.FirstName),
		LastName:     utils.NormalizeSpace(in.LastName),
		Phone:        utils.NilIfBlank(in.Phone),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func registerErr(err error) error {
	if db.IsDuplicateKey(err) {
		return domain.ConflictError{Resource: "user", Msg: "email already registered", Err: err}
	}
	return domain.InternalError{Msg: "create user", Err: err}
}

func (s AuthService) RegisterCustomer(ctx context.Context, in models.RegisterInput) (models.User, error) {
	u, err := s.newUser(in, domain.RoleCustomer)
	if err != nil {
		return models.User{}, err
	}
	if err := s.Users.Create(ctx, u); err != nil {
		return models.User{}, registerErr(err)
	}
	utils.LogEvent(s.RequestID, "auth", "register", fmt.Sprintf("user_id=%s", u.ID))
	return u, nil
}

// RegisterOwner creates the user and an unverified owner profile together.
func (s AuthService) RegisterOwner(ctx context.Context, in models.OwnerRegisterInput) (models.User, error) {
	company := utils.NormalizeSpace(in.CompanyName)
	if company == "" {
		return models.User{}, domain.ValidationError{Field: "companyName", Msg: "is required"}
	}
	u, err := s.newUser(in.RegisterInput, domain.RoleOwner)
	if err != nil {
		return models.User{}, err
	}
	profile := models.OwnerProfile{
		ID:          s.NewID.next(),
		UserID:      u.ID,
		CompanyName: company,
		GSTNumber:   utils.NilIfBlank(strings.ToUpper(in.GSTNumber)),
		Address:     utils.NilIfBlank(in.Address),
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.CreatedAt,
	}
	if err := s.Users.CreateOwner(ctx, u, profile); err != nil {
		return models.User{}, registerErr(err)
	}
	u.OwnerProfile = &profile
	utils.LogEvent(s.RequestID, "auth", "register_owner", fmt.Sprintf("user_id=%s owner_id=%s", u.ID, profile.ID))
	return u, nil
}

// Me returns the caller's account.
func (s AuthService) Me(ctx context.Context, caller domain.RequestContext) (models.User, error) {
	u, err := s.Users.GetByID(ctx, caller.UserID)
	if err != nil {
		return models.User{}, lookupErr("user", err)
	}
	if u.Role == domain.RoleOwner {
		if profile, err := s.Users.GetOwnerProfileByUser(ctx, u.ID); err == nil {
			u.OwnerProfile = &profile
		}
	}
	return u, nil
}
