package banklink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	config "github.com/Galaktikon/trust-cart/configs"
)

type PlaidClient struct {
	baseURL    string
	cfg        config.PlaidConfig
	httpClient *http.Client
}

func NewPlaidClient(cfg config.PlaidConfig) *PlaidClient {
	return &PlaidClient{
		baseURL:    fmt.Sprintf("https://%s.plaid.com", cfg.Env),
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type plaidUser struct {
	ClientUserID string `json:"client_user_id"`
}

type linkTokenRequest struct {
	ClientID     string    `json:"client_id"`
	Secret       string    `json:"secret"`
	ClientName   string    `json:"client_name"`
	Language     string    `json:"language"`
	CountryCodes []string  `json:"country_codes"`
	User         plaidUser `json:"user"`
	Products     []string  `json:"products"`
}

type linkTokenResponse struct {
	LinkToken string `json:"link_token"`
}

type exchangeRequest struct {
	ClientID    string `json:"client_id"`
	Secret      string `json:"secret"`
	PublicToken string `json:"public_token"`
}

type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ItemID      string `json:"item_id"`
}

type plaidError struct {
	ErrorType    string `json:"error_type"`
	ErrorCode    string `json:"error_code"`
	ErrorMessage string `json:"error_message"`
}

func (p *PlaidClient) CreateLinkToken(ctx context.Context, userID string) (string, error) {
	req := linkTokenRequest{
		ClientID:     p.cfg.ClientID,
		Secret:       p.cfg.Secret,
		ClientName:   p.cfg.ClientName,
		Language:     "en",
		CountryCodes: []string{p.cfg.CountryCode},
		User:         plaidUser{ClientUserID: userID},
		Products:     []string{"auth"},
	}
	var resp linkTokenResponse
	if err := p.post(ctx, "/link/token/create", req, &resp); err != nil {
		return "", err
	}
	return resp.LinkToken, nil
}

func (p *PlaidClient) ExchangePublicToken(ctx context.Context, publicToken string) (Exchange, error) {
	req := exchangeRequest{ClientID: p.cfg.ClientID, Secret: p.cfg.Secret, PublicToken: publicToken}
	var resp exchangeResponse
	if err := p.post(ctx, "/item/public_token/exchange", req, &resp); err != nil {
		return Exchange{}, err
	}
	return Exchange{ItemID: resp.ItemID, AccessToken: resp.AccessToken}, nil
}

func (p *PlaidClient) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode plaid request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create plaid request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("plaid %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var pe plaidError
		if decodeErr := json.NewDecoder(resp.Body).Decode(&pe); decodeErr == nil && pe.ErrorCode != "" {
			return fmt.Errorf("plaid %s returned %d: %s: %s", path, resp.StatusCode, pe.ErrorCode, pe.ErrorMessage)
		}
		return fmt.Errorf("plaid %s returned non-success status: %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode plaid response: %w", err)
	}
	return nil
}
