package routes

import (
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/mbolis/promo-forms/app"
	"github.com/mbolis/promo-forms/httpx"
	"github.com/mbolis/promo-forms/log"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(.+)`)

func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		grant(r, url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		})
		app.UserCredentials(w, r)
	}
}

func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		grant(r, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		})
		r.Header.Del("authorization")
		app.UserCredentials(w, r)
	}
}

// grant replaces the request body with an OAuth token request form.
func grant(r *http.Request, body url.Values) {
	encoded := body.Encode()
	r.Body = io.NopCloser(strings.NewReader(encoded))
	r.ContentLength = int64(len(encoded))
	r.Header.Set("content-type", "application/x-www-form-urlencoded")
	r.Header.Set("content-length", strconv.Itoa(len(encoded)))
}
