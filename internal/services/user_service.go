package services

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"chats/internal/authz"
	"chats/internal/models"
	"chats/internal/repositories"
	"chats/internal/storage"
)

type UserService interface {
	Register(req models.RegisterRequest) (*models.User, error)
	GetUserByID(id int) (*models.User, error)
	ListUsers() ([]*models.User, error)
	DeleteUser(id int) error

	GetProfile(profileID int) (*models.Profile, error)
	UpdateProfile(userID int, upd models.ProfileUpdate) (*models.Profile, error)
	SaveProfilePicture(actor *models.User, userID int, filename string, r io.Reader) error
	// ProfilePicturePath falls back to the configured default picture.
	ProfilePicturePath(userID int) (string, error)
}

type userService struct {
	repo           repositories.UserRepository
	authService    AuthService
	emailService   EmailService
	files          *storage.FileStorage
	defaultPicture string
}

func NewUserService(repo repositories.UserRepository, authService AuthService, emailService EmailService, files *storage.FileStorage, defaultPicture string) UserService {
	return &userService{
		repo:           repo,
		authService:    authService,
		emailService:   emailService,
		files:          files,
		defaultPicture: defaultPicture,
	}
}

func (s *userService) Register(req models.RegisterRequest) (*models.User, error) {
	hashed, err := s.authService.HashPassword(req.UserData.PlainTextPassword)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:       strings.TrimSpace(req.UserData.Username),
		Email:          strings.TrimSpace(req.UserData.Email),
		HashedPassword: hashed,
		CreateDate:     models.Today(),
		Role:           models.RoleUser,
	}
	profile := &models.Profile{
		FirstName:   strings.TrimSpace(req.ProfileData.FirstName),
		LastName:    strings.TrimSpace(req.ProfileData.LastName),
		DateOfBirth: req.ProfileData.DateOfBirth,
	}
	if err := s.repo.Create(user, profile); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, ErrUserTaken
		}
		return nil, err
	}

	if s.emailService != nil {
		if err := s.emailService.SendWelcomeEmail(user.Email, user.Username); err != nil {
			// registration stands even if the mail server is down
			log.Warn().Err(err).Int("user_id", user.UserID).Msg("welcome email not sent")
		}
	}
	return user, nil
}

func (s *userService) GetUserByID(id int) (*models.User, error) {
	u, err := s.repo.GetByID(id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *userService) ListUsers() ([]*models.User, error) {
	return s.repo.List()
}

func (s *userService) DeleteUser(id int) error {
	if err := s.repo.Delete(id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

func (s *userService) GetProfile(profileID int) (*models.Profile, error) {
	p, err := s.repo.GetProfile(profileID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *userService) UpdateProfile(userID int, upd models.ProfileUpdate) (*models.Profile, error) {
	if upd.FirstName != nil && strings.TrimSpace(*upd.FirstName) == "" {
		upd.FirstName = nil
	}
	if upd.LastName != nil && strings.TrimSpace(*upd.LastName) == "" {
		upd.LastName = nil
	}
	if upd.Empty() {
		return nil, ErrNothingToUpdate
	}
	p, err := s.repo.UpdateProfile(userID, upd)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	return p, err
}

func (s *userService) SaveProfilePicture(actor *models.User, userID int, filename string, r io.Reader) error {
	if !authz.CanManageUser(actor, userID) {
		return ErrForbidden
	}
	if _, err := s.GetUserByID(userID); err != nil {
		return err
	}
	path, err := s.files.SaveProfilePicture(userID, filename, r)
	if err != nil {
		return fmt.Errorf("save profile picture: %w", err)
	}
	return s.repo.SetProfilePicture(userID, path)
}

func (s *userService) ProfilePicturePath(userID int) (string, error) {
	user, err := s.GetUserByID(userID)
	if err != nil {
		return "", err
	}
	if user.Profile != nil && user.Profile.ProfilePicPath != nil && *user.Profile.ProfilePicPath != "" {
		path, err := s.files.Resolve(*user.Profile.ProfilePicPath)
		if err == nil {
			return path, nil
		}
		log.Warn().Err(err).Int("user_id", userID).Msg("stored profile picture unavailable")
	}
	if s.defaultPicture == "" {
		return "", ErrNoImage
	}
	return s.defaultPicture, nil
}
