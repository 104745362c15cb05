package services

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"chats/internal/authz"
	"chats/internal/models"
	"chats/internal/repositories"
)

type AuthService interface {
	HashPassword(plain string) (string, error)
	Authenticate(username, password string) (*models.User, error)
	IssueToken(user *models.User) (*models.Token, error)
	// UserFromToken resolves the token subject to a stored user.
	UserFromToken(token string) (*models.User, error)
}

type authService struct {
	users  repositories.UserRepository
	tokens *authz.TokenManager
	cost   int
}

func NewAuthService(users repositories.UserRepository, tokens *authz.TokenManager) AuthService {
	return &authService{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
}

func (s *authService) HashPassword(plain string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), s.cost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (s *authService) Authenticate(username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(strings.TrimSpace(username))
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *authService) IssueToken(user *models.User) (*models.Token, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &models.Token{AccessToken: token, TokenType: "bearer"}, nil
}

func (s *authService) UserFromToken(token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByUsername(claims.Subject)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, authz.ErrInvalidToken
	}
	return user, err
}
