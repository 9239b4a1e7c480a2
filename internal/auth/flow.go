package auth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/exec"
	"runtime"
	"time"

	"github.com/hal9000y/mail-copilot/internal/observability"
)

const consentTimeout = 5 * time.Minute

// Authorize runs the local consent flow for a token that has no stored
// credentials: a temporary localhost listener receives the OAuth redirect,
// the browser is opened on the authorization URL, and the handler exchanges
// the returned code.
func Authorize(ctx context.Context, tok *Token) error {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("net.Listen failed: %w", err)
	}

	tok.SetRedirectURL(fmt.Sprintf("http://%s/oauth", ln.Addr().String()))

	authURL, err := tok.AuthURL()
	if err != nil {
		return fmt.Errorf("tok.AuthURL failed: %w", err)
	}

	done := make(chan error, 1)
	mux := http.NewServeMux()
	mux.Handle("/oauth", &consentHandler{tok: tok, done: done})

	srv := &http.Server{Handler: mux}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	openBrowser(authURL)

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(consentTimeout):
		return fmt.Errorf("no authorization received within %s", consentTimeout)
	}
}

// consentHandler exchanges the authorization code delivered on the OAuth
// redirect and signals completion exactly once.
type consentHandler struct {
	tok  *Token
	done chan error
}

func (h *consentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		http.Error(w, "Authorization denied", http.StatusBadRequest)
		h.signal(fmt.Errorf("authorization denied: %s", errParam))
		return
	}

	code := q.Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	if err := h.tok.AuthorizeCode(r.Context(), code, q.Get("state")); err != nil {
		http.Error(w, "Unable to authorize provided code", http.StatusBadRequest)
		h.signal(fmt.Errorf("tok.AuthorizeCode failed: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintln(w, "Authorization complete, you can close this tab.")
	h.signal(nil)
}

func (h *consentHandler) signal(err error) {
	select {
	case h.done <- err:
	default:
	}
}

func openBrowser(url string) {
	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		observability.Logger().Warn("could not open browser automatically, open the link manually",
			"url", url, "error", err)
	}
}
