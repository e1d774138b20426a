package jsonapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrNoCredentials is returned when neither a token nor client credentials
// are configured.
var ErrNoCredentials = errors.New("no api credentials configured")

// Credentials selects how requests are authenticated.
type Credentials struct {
	// Token is a static bearer token. It takes precedence over the client
	// credentials.
	Token string

	ClientID     string
	ClientSecret string
	TokenURL     string
	Scopes       []string

	// TokenFile persists client-credentials tokens between runs. Empty
	// disables persistence.
	TokenFile string
}

// DefaultTokenFile returns ~/.boxreport/auth/token.json.
func DefaultTokenFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".boxreport", "auth", "token.json"), nil
}

// TokenSource returns a token source for creds. A saved token that is
// still valid is reused before asking the token endpoint.
func TokenSource(ctx context.Context, creds Credentials) (oauth2.TokenSource, error) {
	if creds.Token != "" {
		return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: creds.Token, TokenType: "Bearer"}), nil
	}
	if creds.ClientID == "" || creds.TokenURL == "" {
		return nil, ErrNoCredentials
	}

	cfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
		Scopes:       creds.Scopes,
	}
	ts := cfg.TokenSource(ctx)
	if creds.TokenFile == "" {
		return ts, nil
	}

	saved, err := LoadToken(creds.TokenFile)
	if err != nil {
		// Corrupt token file: fetch a fresh one and overwrite it.
		saved = nil
	}
	return oauth2.ReuseTokenSource(saved, &savingTokenSource{ts: ts, path: creds.TokenFile}), nil
}

// savingTokenSource persists every token it hands out.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	path string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = SaveToken(s.path, tok)
	return tok, nil
}

// LoadToken reads a saved token. A missing file returns (nil, nil).
func LoadToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes tok to path atomically.
func SaveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}
