package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pharmacy-storefront/internal/domain"
	custrepo "pharmacy-storefront/internal/replica/repository/customer"
	tokenrepo "pharmacy-storefront/internal/replica/repository/token"
)

var (
	// ErrInvalidCredentials is returned when email/password do not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is returned when the account has been deactivated.
	ErrAccountDisabled = errors.New("account disabled")
)

// Service handles registration, login, and token validation.
type Service struct {
	repo        custrepo.Repository
	tokens      *tokenManager
	accessTTL   time.Duration
	passwordMin int
}

func New(repo custrepo.Repository, tokens tokenrepo.Repository) *Service {
	return &Service{
		repo:        repo,
		tokens:      newTokenManager(tokens),
		accessTTL:   48 * time.Hour,
		passwordMin: 8,
	}
}

// RegisterInput captures fields expected by the register endpoint.
type RegisterInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Customer, string, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, "", errors.New("valid email required")
	}
	password := strings.TrimSpace(in.Password)
	if len(password) < s.passwordMin {
		return nil, "", fmt.Errorf("password must be at least %d characters", s.passwordMin)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	created, err := s.repo.Create(ctx, domain.Customer{
		Email:        email,
		PasswordHash: string(hashed),
		FullName:     strings.TrimSpace(in.FullName),
		Phone:        strings.TrimSpace(in.Phone),
		Address:      strings.TrimSpace(in.Address),
	})
	if err != nil {
		return nil, "", err
	}

	accessToken, err := s.tokens.Issue(ctx, created.ID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return created, accessToken, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*domain.Customer, string, error) {
	c, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(c.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}
	if !c.IsActive {
		return nil, "", ErrAccountDisabled
	}

	accessToken, err := s.tokens.Issue(ctx, c.ID, s.accessTTL)
	if err != nil {
		return nil, "", err
	}
	return c, accessToken, nil
}

func (s *Service) Logout(ctx context.Context, token string) {
	s.tokens.Revoke(ctx, token)
}

// Authenticate resolves a bearer token to the customer it belongs to.
// Disabled accounts authenticate as nobody.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.Customer, error) {
	meta, ok := s.tokens.Validate(ctx, token)
	if !ok {
		return nil, domain.ErrUnauthorized
	}
	c, err := s.repo.GetByID(ctx, meta.CustomerID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !c.IsActive {
		return nil, domain.ErrUnauthorized
	}
	return c, nil
}

func (s *Service) Profile(ctx context.Context, customerID string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, customerID)
}

func (s *Service) UpdateProfile(ctx context.Context, customerID, fullName, phone, address string) (*domain.Customer, error) {
	return s.repo.UpdateProfile(ctx, customerID, strings.TrimSpace(fullName), strings.TrimSpace(phone), strings.TrimSpace(address))
}

func (s *Service) List(ctx context.Context, page, pageSize int) ([]domain.Customer, int, error) {
	return s.repo.List(ctx, page, pageSize)
}

func (s *Service) SetActive(ctx context.Context, customerID string, active bool) (*domain.Customer, error) {
	return s.repo.SetActive(ctx, customerID, active)
}
