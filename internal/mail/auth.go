package mail

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/nhle/lenah/internal/model"
)

// Authorize runs the installed-app OAuth flow: it listens on a loopback
// port, asks the user to open the consent URL, exchanges the returned code
// and caches the token at cfg.TokenPath.
func Authorize(
	ctx context.Context,
	cfg model.GmailConfig,
	out io.Writer,
	logger *log.Logger,
) error {
	conf, err := loadClientConfig(cfg.CredentialsPath, cfg.OAuthScopes())
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("opening OAuth callback listener: %w", err)
	}
	conf.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())

	state := uuid.NewString()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	srv := &http.Server{
		Handler: callbackHandler(state, codeCh, errCh),
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("serving OAuth callback: %w", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Fprintf(out, "Open this URL to authorise LENAH:\n\n  %s\n\n", authURL)
	if err := openBrowser(authURL); err != nil {
		logger.Debug("could not open browser", "err", err)
	}

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for authorisation: %w", ctx.Err())
	}

	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchanging authorisation code: %w", err)
	}
	if err := saveToken(cfg.TokenPath, tok); err != nil {
		return err
	}

	logger.Info("oauth token cached", "path", cfg.TokenPath)
	fmt.Fprintf(out, "Authorised. Token saved to %s\n", cfg.TokenPath)
	return nil
}

// callbackHandler accepts the single redirect from the consent screen.
func callbackHandler(state string, codeCh chan<- string, errCh chan<- error) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if msg := q.Get("error"); msg != "" {
			http.Error(w, "authorisation denied", http.StatusForbidden)
			select {
			case errCh <- fmt.Errorf("authorisation denied: %s", msg):
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		fmt.Fprint(w, "LENAH is authorised. You can close this window.")
		select {
		case codeCh <- code:
		default:
		}
	})
}

// openBrowser tries to open url with the platform's default handler.
func openBrowser(url string) error {
	switch runtime.GOOS {
	case "linux":
		return exec.Command("xdg-open", url).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		return exec.Command("open", url).Start()
	default:
		return fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
}
