package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/repairshop-api/internal/common"
)

const testSecret = "test-secret-value"

func newTestVerifier(t *testing.T, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(Config{Secret: testSecret, Issuer: "idp", Audience: "repairshop-admin", ClockSkew: time.Second})
	require.NoError(t, err)
	v.WithNow(func() time.Time { return now })
	return v
}

func TestVerifyRoundTrip(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(t, now)

	token, err := v.Issue("staff-1", []string{"admin", "accountant"}, time.Minute)
	require.NoError(t, err)

	claims, err := v.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "staff-1", claims.Subject)
	require.Equal(t, []string{"admin", "accountant"}, claims.Roles)
	require.True(t, claims.HasRole("ACCOUNTANT"))
	require.False(t, claims.HasRole("owner"))
}

func TestVerifyRejects(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(t, now)

	expired, err := v.Issue("staff-1", nil, -time.Minute)
	require.NoError(t, err)

	other, err := NewVerifier(Config{Secret: "another-secret", Issuer: "idp", Audience: "repairshop-admin"})
	require.NoError(t, err)
	forged, err := other.Issue("staff-1", nil, time.Minute)
	require.NoError(t, err)

	wrongAudience, err := NewVerifier(Config{Secret: testSecret, Issuer: "idp", Audience: "storefront"})
	require.NoError(t, err)
	foreign, err := wrongAudience.Issue("staff-1", nil, time.Minute)
	require.NoError(t, err)

	tok, err := jwt.NewBuilder().Subject("staff-1").Issuer("idp").Audience([]string{"repairshop-admin"}).
		Expiration(now.Add(time.Minute)).Build()
	require.NoError(t, err)
	hs512, err := jwt.Sign(tok, jwt.WithKey(jwa.HS512, []byte(testSecret)))
	require.NoError(t, err)

	cases := map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"expired":        expired,
		"bad signature":  forged,
		"wrong audience": foreign,
		"wrong alg":      string(hs512),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(token)
			require.Error(t, err)
			appErr, ok := err.(*common.AppError)
			require.True(t, ok)
			require.Equal(t, http.StatusUnauthorized, appErr.HTTPStatus)
		})
	}
}

func TestNewVerifierRequiresSecret(t *testing.T) {
	_, err := NewVerifier(Config{Secret: "  "})
	require.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	now := time.Now()
	v := newTestVerifier(t, now)
	mw := Middleware{Verifier: v, Logger: zerolog.Nop()}

	var seenUser string
	var seenRoles []string
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = common.UserID(r.Context())
		seenRoles = common.Roles(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.RequireAuth(RequireRole("accountant")(final))

	call := func(authz string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/tax/due", nil)
		if authz != "" {
			req.Header.Set("Authorization", authz)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	rec := call("")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	var body struct {
		Error common.ErrorBody `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, common.CodeUnauthorized, body.Error.Code)

	clerk, err := v.Issue("clerk-1", []string{"clerk"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, http.StatusForbidden, call("Bearer "+clerk).Code)

	accountant, err := v.Issue("acct-1", []string{"accountant"}, time.Minute)
	require.NoError(t, err)
	rec = call("bearer " + accountant)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "acct-1", seenUser)
	require.Equal(t, []string{"accountant"}, seenRoles)
}
