package services

import (
	"errors"
	"strings"
	"time"

	"github.com/tubeaccounts/backend/internal/config"
	"github.com/tubeaccounts/backend/internal/models"
	"github.com/tubeaccounts/backend/internal/utils"
)

// TokenPair is what a login or refresh hands back to the client.
type TokenPair struct {
	AccessToken      string    `json:"accessToken"`
	RefreshToken     string    `json:"refreshToken"`
	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// TokenIssuer signs and verifies access/refresh tokens. Issuing is pure:
// persisting the refresh token is the caller's job.
type TokenIssuer struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
}

func NewTokenIssuer(cfg config.JWTConfig) (*TokenIssuer, error) {
	if strings.TrimSpace(cfg.AccessSecret) == "" || strings.TrimSpace(cfg.RefreshSecret) == "" {
		return nil, errors.New("token issuer: access and refresh secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("token issuer: access and refresh secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token issuer: token lifetimes must be positive")
	}
	return &TokenIssuer{
		accessSecret:  []byte(cfg.AccessSecret),
		accessTTL:     cfg.AccessTTL,
		refreshSecret: []byte(cfg.RefreshSecret),
		refreshTTL:    cfg.RefreshTTL,
	}, nil
}

// Issue signs a fresh access/refresh pair for u.
func (i *TokenIssuer) Issue(u *models.User) (*TokenPair, error) {
	access, accessExp, err := utils.GenerateToken(utils.Claims{
		UserID:   u.ID,
		Email:    u.Email,
		Username: u.Username,
		FullName: u.FullName,
	}, i.accessSecret, i.accessTTL)
	if err != nil {
		return nil, err
	}

	refresh, refreshExp, err := utils.GenerateToken(utils.Claims{UserID: u.ID}, i.refreshSecret, i.refreshTTL)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (i *TokenIssuer) VerifyAccess(token string) (*utils.Claims, error) {
	return utils.ParseToken(token, i.accessSecret)
}

func (i *TokenIssuer) VerifyRefresh(token string) (*utils.Claims, error) {
	return utils.ParseToken(token, i.refreshSecret)
}

func (i *TokenIssuer) AccessTTL() time.Duration  { return i.accessTTL }
func (i *TokenIssuer) RefreshTTL() time.Duration { return i.refreshTTL }
