package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const defaultFacebookGraphURL = "https://graph.facebook.com/v19.0"

// FacebookVerifier resolves a Facebook Graph API access token to the
// account's id/name/email.
type FacebookVerifier struct {
	graphURL   string
	httpClient *http.Client
	logger     *zerolog.Logger
}

// NewFacebookVerifier creates a FacebookVerifier. An empty graphURL falls
// back to the production Graph API.
func NewFacebookVerifier(logger *zerolog.Logger, graphURL string) *FacebookVerifier {
	if graphURL == "" {
		graphURL = defaultFacebookGraphURL
	}

	return &FacebookVerifier{
		graphURL:   graphURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

type facebookAccountInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (v *FacebookVerifier) Verify(ctx context.Context, accessToken string) (*Identity, error) {
	query := url.Values{}
	query.Set("fields", "id,name,email")
	query.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.graphURL+"/me?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn().Err(err).Msg("facebook account info request failed")
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn().Int("status", resp.StatusCode).Msg("facebook account info request rejected")
		return nil, fmt.Errorf("%w: status %d", ErrVerificationFailed, resp.StatusCode)
	}

	var info facebookAccountInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		v.logger.Warn().Err(err).Msg("facebook account info response malformed")
		return nil, fmt.Errorf("%w: %v", ErrVerificationFailed, err)
	}

	if info.ID == "" {
		v.logger.Warn().Msg("facebook account info response missing account id")
		return nil, ErrVerificationFailed
	}

	v.revoke(ctx, accessToken)

	return &Identity{
		ID:    info.ID,
		Name:  info.Name,
		Email: info.Email,
	}, nil
}

func (v *FacebookVerifier) revoke(ctx context.Context, accessToken string) {
	query := url.Values{}
	query.Set("access_token", accessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, v.graphURL+"/me/permissions?"+query.Encode(), nil)
	if err != nil {
		v.logger.Warn().Err(err).Msg("facebook token revocation request failed")
		return
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		v.logger.Warn().Err(err).Msg("facebook token revocation failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn().Int("status", resp.StatusCode).Msg("facebook token revocation rejected")
	}
}
