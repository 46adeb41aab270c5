package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/codingconcepts/env"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	"github.com/smcana/liveplanner/internal/entry"
	"github.com/smcana/liveplanner/internal/ytapi"
)

type Config struct {
	ClientId     string `env:"YT_CLIENT_ID" required:"true"`
	ClientSecret string `env:"YT_CLIENT_SECRET" required:"true"`
	ListenPort   uint16 `env:"LISTEN_PORT" default:"8400"`
}

func main() {
	app, ctx := entry.NewApplication("liveplanner-tokengen")
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		app.Fail("Failed to load config", err)
	}

	// Build the authorization-code flow against a loopback redirect. Offline
	// access with forced consent makes Google mint a fresh refresh token even
	// when the account has authorized this client before
	conf := &oauth2.Config{
		ClientID:     config.ClientId,
		ClientSecret: config.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", config.ListenPort),
		Scopes:       []string{ytapi.ScopeYouTube},
	}
	state := uuid.NewString()
	authURL := conf.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open this URL in a browser and authorize the channel account:\n\n  %s\n\n", authURL)

	// Serve the redirect until a single authorization code arrives
	codes := make(chan string, 1)
	r := mux.NewRouter()
	r.HandleFunc("/callback", func(res http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("state") != state {
			http.Error(res, "state mismatch; restart the flow", http.StatusBadRequest)
			return
		}
		code := req.URL.Query().Get("code")
		if code == "" {
			http.Error(res, "authorization response carried no code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(res, "Authorized. You can close this tab.")
		select {
		case codes <- code:
		default:
		}
	}).Methods(http.MethodGet)
	server := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", config.ListenPort),
		Handler: r,
	}

	var code string
	wg, serveCtx := errgroup.WithContext(ctx)
	wg.Go(func() error {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	wg.Go(func() error {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
		select {
		case <-serveCtx.Done():
			return serveCtx.Err()
		case c := <-codes:
			code = c
			return nil
		}
	})
	if err := wg.Wait(); err != nil {
		app.Fail("Failed to receive authorization code", err)
	}

	token, err := conf.Exchange(ctx, code)
	if err != nil {
		app.Fail("Failed to exchange authorization code", err)
	}
	if token.RefreshToken == "" {
		app.Fail("Authorization succeeded but no refresh token was returned", fmt.Errorf("revoke the client at https://myaccount.google.com/permissions and re-run"))
	}
	fmt.Printf("Refresh token:\n%s\n", token.RefreshToken)
}
