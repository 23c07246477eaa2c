package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tubeaccounts/backend/internal/media"
	"github.com/tubeaccounts/backend/internal/models"
	"github.com/tubeaccounts/backend/internal/store"
	"github.com/tubeaccounts/backend/internal/utils"
	"github.com/tubeaccounts/backend/pkg/logger"
	"github.com/tubeaccounts/backend/pkg/response"
)

// UserStore is the persistence the account use cases need.
// *store.UserStore implements it.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	UpdateByID(ctx context.Context, id uint, fields map[string]interface{}) (*models.User, error)
	SetRefreshToken(ctx context.Context, id uint, token string) error
	ClearRefreshToken(ctx context.Context, id uint) error
	SetPassword(ctx context.Context, id uint, plain string) error
	VerifyPassword(u *models.User, plain string) bool
}

func passwordTooLong() error {
	return response.NewValidation(fmt.Sprintf("Password must be at most %d bytes", utils.MaxPasswordBytes))
}

// AccountService implements registration, sessions and profile updates.
// Every step may fail independently; nothing is retried or rolled back.
type AccountService struct {
	users  UserStore
	media  media.Uploader
	tokens *TokenIssuer
}

func NewAccountService(users UserStore, uploader media.Uploader, tokens *TokenIssuer) *AccountService {
	return &AccountService{users: users, media: uploader, tokens: tokens}
}

type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

type LoginInput struct {
	Username string
	Email    string
	Password string
}

// LoginResult is the login payload. User is sanitized by its JSON tags.
type LoginResult struct {
	User *models.User `json:"user"`
	TokenPair
}

type AccountDetails struct {
	FullName string
	Email    string
	Username string
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if isBlank(in.FullName, in.Email, in.Username, in.Password) {
		return nil, response.NewValidation("All fields are required")
	}
	if utils.PasswordTooLong(in.Password) {
		return nil, passwordTooLong()
	}

	existing, err := s.users.FindByUsernameOrEmail(ctx, strings.ToLower(in.Username), in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, response.NewConflict("User with email or username already exists")
	case err != nil && !store.IsNotFound(err):
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	if in.AvatarPath == "" {
		return nil, response.NewValidation("Avatar file is required")
	}

	avatar, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil || avatar == nil || avatar.URL == "" {
		return nil, response.NewUpload("Failed to upload avatar").Wrap(err)
	}

	coverImage := ""
	if in.CoverImagePath != "" {
		cover, err := s.media.Upload(ctx, in.CoverImagePath)
		if err != nil || cover == nil {
			logger.Warn().Err(err).Str("username", in.Username).Msg("cover image upload failed, continuing without it")
		} else {
			coverImage = cover.URL
		}
	}

	user := &models.User{
		FullName:   in.FullName,
		Email:      in.Email,
		Username:   strings.ToLower(in.Username),
		Password:   in.Password,
		Avatar:     avatar.URL,
		CoverImage: coverImage,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicate(err) {
			return nil, response.NewConflict("User with email or username already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	created, err := s.users.FindByID(ctx, user.ID)
	if err != nil || created == nil {
		return nil, response.NewInternal("Something went wrong while registering the user").Wrap(err)
	}

	logger.Info().Uint("user_id", created.ID).Str("username", created.Username).Msg("user registered")
	return created, nil
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(in.Username) == "" && strings.TrimSpace(in.Email) == "" {
		return nil, response.NewValidation("Username or email is required")
	}

	user, err := s.users.FindByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, response.NewNotFound("User does not exist")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.users.VerifyPassword(user, in.Password) {
		return nil, response.NewAuth("Invalid user credentials")
	}

	pair, err := s.rotate(ctx, user)
	if err != nil {
		return nil, err
	}

	loggedIn, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("reload user: %w", err)
	}

	return &LoginResult{User: loggedIn, TokenPair: *pair}, nil
}

// Logout forgets the user's refresh token, which invalidates it for refresh.
func (s *AccountService) Logout(ctx context.Context, userID uint) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil && !store.IsNotFound(err) {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}

// Refresh exchanges the user's current refresh token for a new pair. A
// token that verifies but is not the stored one has been rotated away or
// logged out, and is rejected.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, response.NewAuth("Unauthorized request")
	}

	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, utils.ErrExpiredToken) {
			return nil, response.NewAuth("Refresh token is expired")
		}
		return nil, response.NewAuth("Invalid refresh token")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, response.NewAuth("Invalid refresh token")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !user.HasRefreshToken(refreshToken) {
		return nil, response.NewAuth("Refresh token is expired or used")
	}

	return s.rotate(ctx, user)
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return response.NewValidation("New password is required")
	}
	if utils.PasswordTooLong(newPassword) {
		return passwordTooLong()
	}

	user, err := s.currentUser(ctx, userID)
	if err != nil {
		return err
	}

	if !s.users.VerifyPassword(user, oldPassword) {
		return response.NewAuthWithStatus(http.StatusBadRequest, "Invalid old password")
	}

	if err := s.users.SetPassword(ctx, userID, newPassword); err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return nil
}

func (s *AccountService) CurrentUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.currentUser(ctx, userID)
}

// UpdateAccount replaces name, email and username. It does not check the
// new values against other users; a unique index violation still surfaces
// as a conflict.
func (s *AccountService) UpdateAccount(ctx context.Context, userID uint, in AccountDetails) (*models.User, error) {
	if isBlank(in.FullName, in.Email, in.Username) {
		return nil, response.NewValidation("All fields are required")
	}

	return s.update(ctx, userID, map[string]interface{}{
		"full_name": in.FullName,
		"email":     in.Email,
		"username":  in.Username,
	})
}

func (s *AccountService) UpdateAvatar(ctx context.Context, userID uint, localPath string) (*models.User, error) {
	return s.updateImage(ctx, userID, localPath, "avatar", "Avatar")
}

func (s *AccountService) UpdateCoverImage(ctx context.Context, userID uint, localPath string) (*models.User, error) {
	return s.updateImage(ctx, userID, localPath, "cover_image", "Cover image")
}

// updateImage uploads a new image and points column at it. The previous
// image stays in storage.
func (s *AccountService) updateImage(ctx context.Context, userID uint, localPath, column, label string) (*models.User, error) {
	if localPath == "" {
		return nil, response.NewValidation(label + " file is missing")
	}

	res, err := s.media.Upload(ctx, localPath)
	if err != nil || res == nil || res.URL == "" {
		return nil, response.NewUpload("Error while uploading " + strings.ToLower(label)).Wrap(err)
	}

	return s.update(ctx, userID, map[string]interface{}{column: res.URL})
}

func (s *AccountService) update(ctx context.Context, userID uint, fields map[string]interface{}) (*models.User, error) {
	user, err := s.users.UpdateByID(ctx, userID, fields)
	if err != nil {
		switch {
		case store.IsNotFound(err):
			return nil, response.NewAuth("Invalid access token")
		case store.IsDuplicate(err):
			return nil, response.NewConflict("User with email or username already exists")
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *AccountService) currentUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, response.NewAuth("Invalid access token")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// rotate issues a new pair and makes its refresh token the only valid one.
func (s *AccountService) rotate(ctx context.Context, user *models.User) (*TokenPair, error) {
	pair, err := s.tokens.Issue(user)
	if err != nil {
		return nil, response.NewInternal("Something went wrong while generating tokens").Wrap(err)
	}
	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, response.NewInternal("Something went wrong while generating tokens").Wrap(err)
	}
	logger.Debug().Uint("user_id", user.ID).Time("refresh_expires_at", pair.RefreshExpiresAt).Msg("refresh token rotated")
	return pair, nil
}

func isBlank(fields ...string) bool {
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			return true
		}
	}
	return false
}
