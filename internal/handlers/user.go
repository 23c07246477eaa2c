package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tubeaccounts/backend/internal/config"
	"github.com/tubeaccounts/backend/internal/middleware"
	"github.com/tubeaccounts/backend/internal/models"
	"github.com/tubeaccounts/backend/internal/services"
	"github.com/tubeaccounts/backend/pkg/logger"
	"github.com/tubeaccounts/backend/pkg/response"
)

type UserHandler struct {
	accounts   *services.AccountService
	cookies    config.CookieConfig
	upload     config.UploadConfig
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewUserHandler(accounts *services.AccountService, tokens *services.TokenIssuer, cfg *config.Config) *UserHandler {
	return &UserHandler{
		accounts:   accounts,
		cookies:    cfg.Cookie,
		upload:     cfg.Upload,
		accessTTL:  tokens.AccessTTL(),
		refreshTTL: tokens.RefreshTTL(),
	}
}

type RegisterRequest struct {
	FullName string `form:"fullName" json:"fullName"`
	Email    string `form:"email" json:"email"`
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `form:"refreshToken" json:"refreshToken"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

type UpdateAccountRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
}

// Register creates an account from a multipart form.
// POST /api/v1/users/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	avatar, err := h.saveUpload(c, "avatar")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer removeTemp(avatar)

	cover, err := h.saveUpload(c, "coverImage")
	if err != nil {
		response.Error(c, err)
		return
	}
	defer removeTemp(cover)

	user, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		FullName:       req.FullName,
		Email:          req.Email,
		Username:       req.Username,
		Password:       req.Password,
		AvatarPath:     avatar,
		CoverImagePath: cover,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, user, "User registered successfully")
}

// Login authenticates by username or email and sets the session cookies.
// POST /api/v1/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil && !isEmptyBody(err) {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.accounts.Login(c.Request.Context(), services.LoginInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookies(c, result.AccessToken, result.RefreshToken)
	response.Success(c, result, "User logged in successfully")
}

// Logout drops the stored refresh token and clears the session cookies.
// POST /api/v1/users/logout
func (h *UserHandler) Logout(c *gin.Context) {
	if err := h.accounts.Logout(c.Request.Context(), middleware.GetUserID(c)); err != nil {
		response.Error(c, err)
		return
	}

	h.clearSessionCookies(c)
	response.Success(c, gin.H{}, "User logged out")
}

// RefreshToken rotates the refresh token taken from the cookie or the body.
// POST /api/v1/users/refresh-token
func (h *UserHandler) RefreshToken(c *gin.Context) {
	token, _ := c.Cookie(middleware.RefreshTokenCookie)
	if token == "" {
		var req RefreshRequest
		if err := c.ShouldBind(&req); err == nil {
			token = req.RefreshToken
		}
	}

	pair, err := h.accounts.Refresh(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	h.setSessionCookies(c, pair.AccessToken, pair.RefreshToken)
	response.Success(c, pair, "Access token refreshed")
}

// ChangePassword
// POST /api/v1/users/change-password
func (h *UserHandler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	if err := h.accounts.ChangePassword(c.Request.Context(), middleware.GetUserID(c), req.OldPassword, req.NewPassword); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{}, "Password changed successfully")
}

// GetCurrentUser
// GET /api/v1/users/current-user
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.accounts.CurrentUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user, "User fetched successfully")
}

// UpdateAccount replaces full name, email and username.
// PATCH /api/v1/users/update-account
func (h *UserHandler) UpdateAccount(c *gin.Context) {
	var req UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if isEmptyBody(err) || isMissingField(err) {
			response.Error(c, response.NewValidation("All fields are required"))
			return
		}
		response.Error(c, bindError(err))
		return
	}

	user, err := h.accounts.UpdateAccount(c.Request.Context(), middleware.GetUserID(c), services.AccountDetails{
		FullName: req.FullName,
		Email:    req.Email,
		Username: req.Username,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user, "Account details updated successfully")
}

// UpdateAvatar
// PATCH /api/v1/users/avatar
func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	h.updateImage(c, "avatar", h.accounts.UpdateAvatar, "Avatar image updated successfully")
}

// UpdateCoverImage
// PATCH /api/v1/users/cover-image
func (h *UserHandler) UpdateCoverImage(c *gin.Context) {
	h.updateImage(c, "coverImage", h.accounts.UpdateCoverImage, "Cover image updated successfully")
}

type imageUpdate func(ctx context.Context, userID uint, localPath string) (*models.User, error)

func (h *UserHandler) updateImage(c *gin.Context, field string, update imageUpdate, msg string) {
	path, err := h.saveUpload(c, field)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer removeTemp(path)

	user, err := update(c.Request.Context(), middleware.GetUserID(c), path)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, user, msg)
}

// saveUpload stores the multipart file in field under the temp dir and
// returns its path, or "" when the request carries no such file.
func (h *UserHandler) saveUpload(c *gin.Context, field string) (string, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return "", nil
		}
		return "", response.NewValidation("Invalid multipart form").Wrap(err)
	}

	if h.upload.MaxFileSize > 0 && fh.Size > h.upload.MaxFileSize {
		return "", response.NewValidation(fmt.Sprintf("%s exceeds the %d byte limit", field, h.upload.MaxFileSize))
	}

	if err := os.MkdirAll(h.upload.TempDir, 0o755); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}

	dst := filepath.Join(h.upload.TempDir, uuid.NewString()+strings.ToLower(filepath.Ext(fh.Filename)))
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		return "", fmt.Errorf("save %s: %w", field, err)
	}
	return dst, nil
}

func removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn().Err(err).Str("path", path).Msg("failed to remove temp upload")
	}
}

func (h *UserHandler) setSessionCookies(c *gin.Context, accessToken, refreshToken string) {
	h.setCookie(c, middleware.AccessTokenCookie, accessToken, int(h.accessTTL.Seconds()))
	h.setCookie(c, middleware.RefreshTokenCookie, refreshToken, int(h.refreshTTL.Seconds()))
}

func (h *UserHandler) clearSessionCookies(c *gin.Context) {
	h.setCookie(c, middleware.AccessTokenCookie, "", -1)
	h.setCookie(c, middleware.RefreshTokenCookie, "", -1)
}

func (h *UserHandler) setCookie(c *gin.Context, name, value string, maxAge int) {
	path := h.cookies.Path
	if path == "" {
		path = "/"
	}
	c.SetSameSite(sameSite(h.cookies.SameSite))
	c.SetCookie(name, value, maxAge, path, h.cookies.Domain, h.cookies.Secure, true)
}

func sameSite(mode string) http.SameSite {
	switch strings.ToLower(mode) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	case "lax":
		return http.SameSiteLaxMode
	default:
		return http.SameSiteDefaultMode
	}
}
