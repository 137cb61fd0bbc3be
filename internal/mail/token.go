package mail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/nhle/lenah/internal/model"
)

// loadClientConfig reads the OAuth client secrets file.
func loadClientConfig(path string, scopes []string) (*oauth2.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &MissingCredentialError{
				Path: path,
				Hint: "download an OAuth desktop client JSON from the Google Cloud console",
				Err:  err,
			}
		}
		return nil, fmt.Errorf("reading OAuth client file %s: %w", path, err)
	}

	conf, err := google.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parsing OAuth client file %s: %w", path, err)
	}
	return conf, nil
}

// tokenFromFile reads a cached token.
func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token %s: %w", path, err)
	}
	return tok, nil
}

// saveToken writes tok to path with owner-only permissions.
func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening token cache %s: %w", path, err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(tok); err != nil {
		return fmt.Errorf("writing token cache %s: %w", path, err)
	}
	return nil
}

// cachingTokenSource writes refreshed tokens back to the token cache.
type cachingTokenSource struct {
	base   oauth2.TokenSource
	path   string
	logger *log.Logger

	mu   sync.Mutex
	last string
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := saveToken(s.path, tok); err != nil {
			s.logger.Warn("could not cache refreshed token", "err", err)
		}
	}
	return tok, nil
}

// authorizedClient builds an HTTP client from the client secrets and the
// cached token. The token source refreshes on its own and is bound to a
// background context so that per-call timeouts never cancel a refresh.
func authorizedClient(cfg model.GmailConfig, logger *log.Logger) (*http.Client, error) {
	conf, err := loadClientConfig(cfg.CredentialsPath, cfg.OAuthScopes())
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(cfg.TokenPath)
	if err != nil {
		return nil, &MissingCredentialError{
			Path: cfg.TokenPath,
			Hint: "run `lenah auth` to authorise the mailbox",
			Err:  err,
		}
	}

	ctx := context.Background()
	src := &cachingTokenSource{
		base:   conf.TokenSource(ctx, tok),
		path:   cfg.TokenPath,
		logger: logger,
		last:   tok.AccessToken,
	}
	return oauth2.NewClient(ctx, oauth2.ReuseTokenSource(tok, src)), nil
}
