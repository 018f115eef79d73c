package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dmitrijs2005/gopherblog/internal/common"
	"github.com/dmitrijs2005/gopherblog/internal/logging"
	"github.com/dmitrijs2005/gopherblog/internal/server/auth"
	"github.com/dmitrijs2005/gopherblog/internal/server/config"
	"github.com/dmitrijs2005/gopherblog/internal/server/models"
	"github.com/dmitrijs2005/gopherblog/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gopherblog/internal/server/validation"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 12

// AuthData is returned by a successful login.
type AuthData struct {
	Token  string
	UserID string
}

// UserService handles registration, login and the caller's own profile.
type UserService struct {
	repomanager                 repomanager.RepositoryManager
	logger                      logging.Logger
	jwtSecret                   []byte
	accessTokenValidityDuration time.Duration
	bcryptCost                  int
}

func NewUserService(m repomanager.RepositoryManager, logger logging.Logger, cfg *config.Config) *UserService {
	return &UserService{
		repomanager:                 m,
		logger:                      logger,
		jwtSecret:                   []byte(cfg.SecretKey),
		accessTokenValidityDuration: cfg.AccessTokenValidityDuration,
		bcryptCost:                  BcryptCost,
	}
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Login checks the credentials and mints an access token carrying the
// user id and email.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthData, error) {
	email = NormalizeEmail(email)
	if errs := append(validation.Email(email), validation.Password(password)...); len(errs) > 0 {
		return nil, common.Validation(common.MsgInvalidUserInput, errs)
	}

	user, err := s.repomanager.Users().GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Unauthenticated(common.MsgUserNotFound)
		}
		return nil, storageFailure(ctx, s.logger, "login", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, common.Unauthenticated(common.MsgIncorrectPassword)
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.AsAppError(err)
	}

	return &AuthData{Token: token, UserID: user.ID}, nil
}

// CreateUser registers a new user with the default status.
func (s *UserService) CreateUser(ctx context.Context, email, name, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)

	var errs []string
	errs = append(errs, validation.Email(email)...)
	errs = append(errs, validation.Password(password)...)
	errs = append(errs, validation.Name(name)...)
	if len(errs) > 0 {
		return nil, common.Validation(common.MsgInvalidUserInput, errs)
	}

	users := s.repomanager.Users()

	exists, err := users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "create user", err)
	}
	if exists {
		return nil, common.Conflict(common.MsgUserExists)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, common.AsAppError(err)
	}

	user, err := users.Create(ctx, &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Status:       models.DefaultStatus,
	})
	if err != nil {
		// a concurrent registration won the race for this email
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict(common.MsgUserExists)
		}
		return nil, storageFailure(ctx, s.logger, "create user", err)
	}

	return user, nil
}

// User returns the caller's own record.
func (s *UserService) User(ctx context.Context, id auth.Identity) (*models.User, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users().GetByID(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(common.MsgUserNotFound)
		}
		return nil, storageFailure(ctx, s.logger, "get user", err)
	}
	return user, nil
}

// UpdateStatus overwrites the caller's status. An empty status resets it to
// the default.
func (s *UserService) UpdateStatus(ctx context.Context, id auth.Identity, status string) (*models.User, error) {
	if err := requireAuth(id); err != nil {
		return nil, err
	}

	status = strings.TrimSpace(status)
	if errs := validation.Status(status); len(errs) > 0 {
		return nil, common.Validation(common.MsgInvalidUserInput, errs)
	}
	if status == "" {
		status = models.DefaultStatus
	}

	user, err := s.repomanager.Users().UpdateStatus(ctx, id.UserID, status)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(common.MsgUserNotFound)
		}
		return nil, storageFailure(ctx, s.logger, "update status", err)
	}
	return user, nil
}

// Posts lists the posts owned by userID in the order they were created.
func (s *UserService) Posts(ctx context.Context, userID string) ([]*models.Post, error) {
	posts, err := s.repomanager.Posts().ListByUser(ctx, userID)
	if err != nil {
		return nil, storageFailure(ctx, s.logger, "list user posts", err)
	}
	return posts, nil
}
