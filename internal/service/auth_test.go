package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"eportal/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Login(t *testing.T) {
	b := fakeBackend(t, map[string]http.HandlerFunc{
		"POST /auth": func(w http.ResponseWriter, r *http.Request) {
			var in LoginInput
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			switch {
			case in.CaptchaValue != "7xk2":
				writeJSON(w, 400, map[string]interface{}{"success": false, "code": "INVALID_CAPTCHA"})
			case in.Password != "secret":
				writeJSON(w, 401, map[string]interface{}{"success": false})
			default:
				writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]interface{}{
					"token": "backend-token",
					"user":  map[string]interface{}{"identityId": in.IdentityID, "nameEn": "Sara", "language": 2},
				}})
			}
		},
	})
	svc := NewAuthService(b)
	ctx := context.Background()

	res, err := svc.Login(ctx, Scope{Locale: "en"}, LoginInput{IdentityID: "1000000001", Password: "secret", CaptchaID: "c1", CaptchaValue: "7xk2"})
	require.NoError(t, err)
	assert.Equal(t, "backend-token", res.Token)
	assert.Equal(t, "en", res.User.PreferredLocale())

	_, err = svc.Login(ctx, Scope{}, LoginInput{Password: "wrong", CaptchaValue: "7xk2"})
	assert.Equal(t, ErrCodeInvalidCredentials, CodeOf(err))

	_, err = svc.Login(ctx, Scope{}, LoginInput{Password: "secret", CaptchaValue: "nope"})
	assert.Equal(t, ErrCodeInvalidCaptcha, CodeOf(err))
}

func TestAuthService_Captcha(t *testing.T) {
	b := fakeBackend(t, map[string]http.HandlerFunc{
		"GET /auth/captcha": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]string{"captchaId": "c-9", "image": "data:image/png;base64,AAA"}})
		},
	})
	c, err := NewAuthService(b).Captcha(context.Background(), Scope{Locale: "ar"})
	require.NoError(t, err)
	assert.Equal(t, "c-9", c.ID)
}

func TestAuthService_Nafath(t *testing.T) {
	statuses := map[string]map[string]interface{}{
		"t-wait":   {"status": "WAITING"},
		"t-done":   {"status": "COMPLETED", "token": "nafath-token", "user": map[string]string{"identityId": "1000000001"}},
		"t-broken": {"status": "COMPLETED"},
		"t-no":     {"status": "REJECTED"},
		"t-old":    {"status": "EXPIRED"},
		"t-weird":  {"status": "PAUSED"},
	}
	routes := map[string]http.HandlerFunc{
		"POST /auth/nafath": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]string{"transactionId": "t-wait", "random": "42"}})
		},
	}
	for id, body := range statuses {
		body := body
		routes["GET /auth/nafath/"+id] = func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": body})
		}
	}
	svc := NewAuthService(fakeBackend(t, routes))
	ctx := context.Background()

	ch, err := svc.NafathStart(ctx, Scope{}, NafathStartInput{IdentityID: "1000000001"})
	require.NoError(t, err)
	assert.Equal(t, "42", ch.Random)

	res, err := svc.NafathStatus(ctx, Scope{}, "t-wait")
	require.NoError(t, err)
	assert.Equal(t, model.NafathWaiting, res.Status)

	res, err = svc.NafathStatus(ctx, Scope{}, "t-done")
	require.NoError(t, err)
	assert.Equal(t, "nafath-token", res.Token)

	_, err = svc.NafathStatus(ctx, Scope{}, "t-broken")
	assert.Equal(t, ErrCodeDecode, CodeOf(err))
	_, err = svc.NafathStatus(ctx, Scope{}, "t-no")
	assert.Equal(t, ErrCodeNafathRejected, CodeOf(err))
	_, err = svc.NafathStatus(ctx, Scope{}, "t-old")
	assert.Equal(t, ErrCodeNafathExpired, CodeOf(err))
	_, err = svc.NafathStatus(ctx, Scope{}, "t-weird")
	assert.Equal(t, ErrCodeDecode, CodeOf(err))
}
