package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/api/oauth2/v2"
)

const (
	defaultGoogleUserInfoURL = "https://www.googleapis.com/oauth2/v1/userinfo"
	defaultGoogleRevokeURL   = "https://oauth2.googleapis.com/revoke"
)

// GoogleVerifier resolves a Google OAuth access token to the account's
// id/name/email via the userinfo endpoint.
type GoogleVerifier struct {
	userInfoURL string
	revokeURL   string
	httpClient  *http.Client
	logger      *zerolog.Logger
}

// NewGoogleVerifier creates a GoogleVerifier. Empty URLs fall back to the
// production Google endpoints.
func NewGoogleVerifier(logger *zerolog.Logger, userInfoURL, revokeURL string) *GoogleVerifier {
	if userInfoURL == "" {
		userInfoURL = defaultGoogleUserInfoURL
	}
	if revokeURL == "" {
		revokeURL = defaultGoogleRevokeURL
	}

	return &GoogleVerifier{
		userInfoURL: userInfoURL,
		revokeURL:   revokeURL,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

func (v *GoogleVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn().Err(err).Msg("google userinfo request failed")
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn().Int("status", resp.StatusCode).Msg("google userinfo request rejected")
		return nil, fmt.Errorf("%w: status %d", ErrVerificationFailed, resp.StatusCode)
	}

	var userInfo oauth2.Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&userInfo); err != nil {
		v.logger.Warn().Err(err).Msg("google userinfo response malformed")
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	if userInfo.Id == "" {
		v.logger.Warn().Msg("google userinfo response missing account id")
		return nil, ErrVerificationFailed
	}

	// The token has served its single purpose; revoke it so verification
	// cannot be replayed.
	v.revoke(ctx, accessToken)

	return &Identity{
		ID:    userInfo.Id,
		Name:  userInfo.Name,
		Email: userInfo.Email,
	}, nil
}

func (v *GoogleVerifier) revoke(ctx context.Context, accessToken string) {
	body := url.Values{}
	body.Set("token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.revokeURL, strings.NewReader(body.Encode()))
	if err != nil {
		v.logger.Warn().Err(err).Msg("google token revocation request failed")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn().Err(err).Msg("google token revocation failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn().Int("status", resp.StatusCode).Msg("google token revocation rejected")
	}
}
