// Package oauth implements the token providers for the two upstream
// APIs: a refresh-token grant for the ERP and a client-credentials
// grant (optionally over mTLS) for the bank. Tokens are cached in memory
// with a safety margin and renewed on demand.
package oauth

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// expiryMargin renews tokens this long before they actually expire.
const expiryMargin = 60 * time.Second

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type cachedToken struct {
	mu      sync.Mutex
	token   string
	expires time.Time
}

func (c *cachedToken) get() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || time.Now().After(c.expires) {
		return "", false
	}
	return c.token, true
}

func (c *cachedToken) set(token string, expiresIn int) {
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.mu.Lock()
	c.token = token
	c.expires = time.Now().Add(time.Duration(expiresIn)*time.Second - expiryMargin)
	c.mu.Unlock()
}

func (c *cachedToken) clear() {
	c.mu.Lock()
	c.token = ""
	c.mu.Unlock()
}

// RefreshTokenSource renews access tokens with an OAuth2 refresh-token
// grant, authenticating with HTTP basic auth. The upstream may rotate
// the refresh token on each renewal; the source keeps the latest one.
type RefreshTokenSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	http         *http.Client
	log          *zap.Logger

	cache cachedToken

	mu           sync.Mutex
	refreshToken string
}

// NewRefreshTokenSource creates a RefreshTokenSource seeded with the
// long-lived refresh token.
func NewRefreshTokenSource(tokenURL, clientID, clientSecret, refreshToken string, log *zap.Logger) *RefreshTokenSource {
	return &RefreshTokenSource{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		http:         &http.Client{Timeout: 30 * time.Second},
		log:          log,
	}
}

// Token returns a valid access token, renewing through the refresh-token
// grant when the cached one has expired.
func (s *RefreshTokenSource) Token(ctx context.Context) (string, error) {
	if token, ok := s.cache.get(); ok {
		return token, nil
	}

	s.mu.Lock()
	refresh := s.refreshToken
	s.mu.Unlock()
	if refresh == "" {
		return "", fmt.Errorf("no refresh token configured")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refresh},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.SetBasicAuth(s.clientID, s.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	tr, err := post(s.http, req)
	if err != nil {
		return "", err
	}

	s.cache.set(tr.AccessToken, tr.ExpiresIn)
	if tr.RefreshToken != "" {
		s.mu.Lock()
		s.refreshToken = tr.RefreshToken
		s.mu.Unlock()
	}
	s.log.Debug("erp access token renewed")
	return tr.AccessToken, nil
}

// Invalidate drops the cached access token.
func (s *RefreshTokenSource) Invalidate() {
	s.cache.clear()
}

// ClientCredentialsSource acquires access tokens with an OAuth2
// client-credentials grant, sending the credentials in the form body as
// the bank API expects.
type ClientCredentialsSource struct {
	tokenURL     string
	clientID     string
	clientSecret string
	scope        string
	http         *http.Client
	log          *zap.Logger

	cache cachedToken
}

// NewClientCredentialsSource creates a ClientCredentialsSource. Pass the
// mTLS-enabled client from MTLSClient when the upstream requires a
// certificate on the token endpoint as well.
func NewClientCredentialsSource(tokenURL, clientID, clientSecret, scope string, httpClient *http.Client, log *zap.Logger) *ClientCredentialsSource {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &ClientCredentialsSource{
		tokenURL:     tokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		scope:        scope,
		http:         httpClient,
		log:          log,
	}
}

// Token returns a valid access token, requesting a new one when needed.
func (s *ClientCredentialsSource) Token(ctx context.Context) (string, error) {
	if token, ok := s.cache.get(); ok {
		return token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {s.clientID},
		"client_secret": {s.clientSecret},
		"scope":         {s.scope},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	tr, err := post(s.http, req)
	if err != nil {
		return "", err
	}

	s.cache.set(tr.AccessToken, tr.ExpiresIn)
	s.log.Debug("bank access token acquired")
	return tr.AccessToken, nil
}

// Invalidate drops the cached access token.
func (s *ClientCredentialsSource) Invalidate() {
	s.cache.clear()
}

// MTLSClient builds an HTTP client that presents the given certificate
// pair on every connection.
func MTLSClient(certFile, keyFile string) (*http.Client, error) {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, fmt.Errorf("loading client certificate: %w", err)
	}
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{Certificates: []tls.Certificate{cert}},
		},
	}, nil
}

func post(client *http.Client, req *http.Request) (tokenResponse, error) {
	resp, err := client.Do(req)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("requesting token: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return tokenResponse{}, fmt.Errorf("reading token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := string(body)
		if len(detail) > 500 {
			detail = detail[:500]
		}
		return tokenResponse{}, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, detail)
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return tokenResponse{}, fmt.Errorf("decoding token response: %w", err)
	}
	if tr.AccessToken == "" {
		return tokenResponse{}, fmt.Errorf("token response missing access_token")
	}
	return tr, nil
}
