package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

func TestGoogleProvider_GetUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token"}`))
			return
		}
		_, _ = w.Write([]byte(`{"sub":"g-1","email":"ann@example.com","email_verified":true,"name":"Ann"}`))
	}))
	defer srv.Close()

	g := NewGoogleProvider("id", "secret", "http://localhost/callback")
	g.userInfoURL = srv.URL

	info, err := g.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "access"})
	if err != nil {
		t.Fatalf("userinfo: %v", err)
	}
	if info.ID != "g-1" || info.Email != "ann@example.com" || !info.VerifiedEmail || info.Name != "Ann" {
		t.Fatalf("unexpected profile %+v", info)
	}

	_, err = g.GetUserInfo(context.Background(), &oauth2.Token{AccessToken: "stale"})
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 error, got %v", err)
	}
}

func TestGoogleProvider_AuthURLCarriesState(t *testing.T) {
	raw := NewGoogleProvider("id", "secret", "http://localhost/callback").GetAuthURL("xyz")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("state") != "xyz" || q.Get("client_id") != "id" || q.Get("prompt") != "select_account" {
		t.Fatalf("unexpected auth url %s", raw)
	}
}
