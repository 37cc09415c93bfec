package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"eportal/internal/model"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

type memAuditor struct {
	mu     sync.Mutex
	events []model.AuditEvent
}

func (a *memAuditor) Record(_ context.Context, ev model.AuditEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, ev)
}

func (a *memAuditor) Recent(_ context.Context, identityID string, limit int) ([]model.AuditEvent, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := []model.AuditEvent{}
	for i := len(a.events) - 1; i >= 0 && len(out) < limit; i-- {
		if a.events[i].IdentityID == identityID {
			out = append(out, a.events[i])
		}
	}
	return out, nil
}

func (a *memAuditor) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []string
	for _, ev := range a.events {
		out = append(out, ev.Action)
	}
	return out
}

type harness struct {
	router *gin.Engine
	codec  *session.Codec
	audit  *memAuditor
}

// newHarness wires the real router against a fake backend serving one
// handler per "METHOD path" key.
func newHarness(t *testing.T, routes map[string]http.HandlerFunc) *harness {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		h(w, r)
	}))
	backend := service.NewBackend(srv.URL, 2*time.Second)
	t.Cleanup(func() {
		backend.Close()
		srv.Close()
	})

	codec, err := session.NewCodec("handler-secret", time.Hour)
	require.NoError(t, err)
	requests := service.NewRequestService(backend)
	bills := service.NewBillService(backend)
	audit := &memAuditor{}
	r := NewRouter(RouterConfig{
		Codec:         codec,
		DefaultLocale: "ar",
		Locales:       []string{"ar", "en"},
	}, Services{
		Auth:         service.NewAuthService(backend),
		Requests:     requests,
		Bills:        bills,
		Certificates: service.NewCertificateService(backend),
		EServices:    service.NewEServiceService(backend),
		Dashboard:    service.NewDashboardService(requests, bills),
		Audit:        audit,
	})
	return &harness{router: r, codec: codec, audit: audit}
}

func (h *harness) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) sessionCookies(t *testing.T) []*http.Cookie {
	t.Helper()
	tok, usr, _, err := h.codec.Encode("bearer-xyz", model.User{IdentityID: "1012345678", NameAr: "سارة", NameEn: "Sara"})
	require.NoError(t, err)
	return []*http.Cookie{
		{Name: session.TokenCookie, Value: tok},
		{Name: session.UserCookie, Value: usr},
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func jsonBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func postJSON(path, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func cookieMap(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

const serviceForm = `{"success":true,"data":{
  "formDesigner": {"display":"wizard","components":[
    {"type":"panel","key":"p1","title":"applicant","components":[
      {"type":"textfield","key":"name","label":"name","validate":{"required":true}},
      {"type":"email","key":"email","label":"email"}
    ]},
    {"type":"panel","key":"p2","title":"confirm","components":[
      {"type":"checkbox","key":"agree","label":"agree","validate":{"required":true}}
    ]}
  ]},
  "translations": [
    {"Keyword":"name","Arabic":"الاسم","English":"Name"},
    {"Keyword":"applicant","Arabic":"مقدم الطلب","English":"Applicant"}
  ]
}}`

func formRoute(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(serviceForm))
}

func TestLogin_SetsSessionCookies(t *testing.T) {
	var gotLogin service.LoginInput
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /auth/captcha": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]string{"captchaId": "cap-1", "image": "data:image/png;base64,AAA"}})
		},
		"POST /auth": func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			json.NewDecoder(r.Body).Decode(&gotLogin)
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]interface{}{
				"token": "backend-bearer-secret",
				"user":  map[string]interface{}{"identityId": "1012345678", "nameEn": "Sara"},
			}})
		},
	})

	w := h.do(httptest.NewRequest(http.MethodGet, "/api/auth/captcha", nil))
	require.Equal(t, 200, w.Code)
	captcha := cookieMap(w)[session.CaptchaCookie]
	require.NotNil(t, captcha)
	assert.Equal(t, "cap-1", captcha.Value)
	assert.True(t, captcha.HttpOnly)
	assert.NotContains(t, w.Body.String(), "cap-1")

	req := postJSON("/api/auth/login?lang=en", `{"identityId":"1012345678","password":"pw","captchaValue":"x7k"}`)
	w = h.do(req, captcha)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "cap-1", gotLogin.CaptchaID)
	assert.Equal(t, "x7k", gotLogin.CaptchaValue)
	assert.NotContains(t, w.Body.String(), "backend-bearer-secret")
	assert.Equal(t, "/en/dashboard", jsonBody(t, w)["data"].(map[string]interface{})["redirect"])

	cookies := cookieMap(w)
	require.Contains(t, cookies, session.TokenCookie)
	require.Contains(t, cookies, session.UserCookie)
	assert.NotContains(t, cookies[session.TokenCookie].Value, "backend-bearer-secret")
	assert.Equal(t, -1, cookies[session.CaptchaCookie].MaxAge)

	w = h.do(httptest.NewRequest(http.MethodGet, "/api/auth/session", nil), cookies[session.TokenCookie], cookies[session.UserCookie])
	data := jsonBody(t, w)["data"].(map[string]interface{})
	assert.Equal(t, true, data["authenticated"])
	assert.Equal(t, "1012345678", data["user"].(map[string]interface{})["identityId"])
	assert.Equal(t, []string{model.AuditLogin}, h.audit.actions())
}

func TestLogin_Failures(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /auth": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 401, map[string]interface{}{"success": false, "message": "bad password"})
		},
	})
	body := `{"identityId":"1012345678","password":"pw","captchaValue":"x"}`

	w := h.do(postJSON("/api/auth/login", body))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	got := jsonBody(t, w)
	assert.Equal(t, "INVALID_CAPTCHA", got["error"])
	assert.Equal(t, true, got["captchaReset"])

	w = h.do(postJSON("/api/auth/login", body), &http.Cookie{Name: session.CaptchaCookie, Value: "cap-1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	got = jsonBody(t, w)
	assert.Equal(t, "INVALID_CREDENTIALS", got["error"])
	assert.Equal(t, true, got["captchaReset"])
	assert.NotContains(t, cookieMap(w), session.TokenCookie)
	assert.Equal(t, -1, cookieMap(w)[session.CaptchaCookie].MaxAge)
	assert.Equal(t, []string{model.AuditLoginFailed}, h.audit.actions())

	w = h.do(postJSON("/api/auth/login", `{"identityId":""}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", jsonBody(t, w)["error"])
}

func TestNafath_PollUntilCompleted(t *testing.T) {
	status := model.NafathWaiting
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /auth/nafath": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]interface{}{"transactionId": "tx-9", "random": "42"}})
		},
		"GET /auth/nafath/tx-9": func(w http.ResponseWriter, r *http.Request) {
			data := map[string]interface{}{"status": status}
			if status == model.NafathCompleted {
				data["token"] = "nafath-bearer"
				data["user"] = map[string]string{"identityId": "1012345678"}
			}
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": data})
		},
	})
	captcha := &http.Cookie{Name: session.CaptchaCookie, Value: "cap-1"}

	w := h.do(postJSON("/api/auth/nafath", `{"identityId":"12345","captchaValue":"x"}`), captcha)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(postJSON("/api/auth/nafath", `{"identityId":"1012345678","captchaValue":"x"}`), captcha)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "42", jsonBody(t, w)["data"].(map[string]interface{})["random"])

	w = h.do(httptest.NewRequest(http.MethodGet, "/api/auth/nafath/tx-9", nil))
	assert.Equal(t, "WAITING", jsonBody(t, w)["data"].(map[string]interface{})["status"])
	assert.NotContains(t, cookieMap(w), session.TokenCookie)

	status = model.NafathCompleted
	w = h.do(httptest.NewRequest(http.MethodGet, "/api/auth/nafath/tx-9", nil))
	require.Equal(t, 200, w.Code)
	assert.Contains(t, cookieMap(w), session.TokenCookie)
	assert.NotContains(t, w.Body.String(), "nafath-bearer")

	status = model.NafathRejected
	w = h.do(httptest.NewRequest(http.MethodGet, "/api/auth/nafath/tx-9", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "NAFATH_REJECTED", jsonBody(t, w)["error"])
}

func TestBackendUnauthorized_ClearsSession(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /bills": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer bearer-xyz", r.Header.Get("Authorization"))
			assert.Equal(t, "en", r.Header.Get("Accept-Language"))
			w.WriteHeader(http.StatusUnauthorized)
		},
	})
	w := h.do(httptest.NewRequest(http.MethodGet, "/api/bills?lang=en", nil), h.sessionCookies(t)...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	got := jsonBody(t, w)
	assert.Equal(t, "UNAUTHORIZED", got["error"])
	assert.Equal(t, "/en/login?session_expired=true", got["redirect"])
	cookies := cookieMap(w)
	assert.Equal(t, -1, cookies[session.TokenCookie].MaxAge)
	assert.Equal(t, -1, cookies[session.UserCookie].MaxAge)
}

func TestProtectedRoutesNeedSession(t *testing.T) {
	h := newHarness(t, nil)

	w := h.do(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(httptest.NewRequest(http.MethodGet, "/en/dashboard", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/en/login?session_expired=true", w.Header().Get("Location"))

	w = h.do(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequests_ListWithPagination(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /request": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "3", r.URL.Query().Get("page"))
			writeJSON(w, 200, map[string]interface{}{
				"success": true,
				"data":    []map[string]string{{"id": "1", "status": "draft"}},
				"meta":    map[string]int{"page": 3, "pageSize": 10, "total": 95, "totalPages": 10},
			})
		},
	})
	w := h.do(httptest.NewRequest(http.MethodGet, "/api/requests?page=3", nil), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code, w.Body.String())
	got := jsonBody(t, w)
	items := got["data"].([]interface{})
	assert.Equal(t, "gray", items[0].(map[string]interface{})["color"])
	p := got["pagination"].(map[string]interface{})
	assert.Equal(t, float64(10), p["totalPages"])
	assert.Equal(t, float64(20), p["offset"])
	assert.Equal(t, []interface{}{1.0, 2.0, 3.0, 4.0, 5.0}, p["window"])
}

func TestSubmit_ValidatesAndFiltersValues(t *testing.T) {
	var forwarded model.Submission
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /eservices/svc-1/form": formRoute,
		"POST /request/submit": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&forwarded)
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]string{"id": "7", "referenceNumber": "REQ-7", "status": "active"}})
		},
	})
	cookies := h.sessionCookies(t)

	w := h.do(postJSON("/api/requests/submit?lang=en", `{"serviceId":"svc-1","values":{"email":"nope"}}`), cookies...)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
	got := jsonBody(t, w)
	assert.Equal(t, "VALIDATION_ERROR", got["error"])
	fields := map[string]string{}
	for _, f := range got["fields"].([]interface{}) {
		m := f.(map[string]interface{})
		fields[m["field"].(string)] = m["message"].(string)
	}
	assert.Equal(t, "Name is required", fields["name"])
	assert.Contains(t, fields, "email")
	assert.Contains(t, fields, "agree")
	assert.Empty(t, forwarded.ServiceID)

	w = h.do(postJSON("/api/requests/submit", `{"serviceId":"svc-1","values":{"name":"Sara","agree":true,"injected":"x"}}`), cookies...)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, map[string]interface{}{"name": "Sara", "agree": true}, forwarded.Values)
	assert.Equal(t, []string{model.AuditRequestSubmitted}, h.audit.actions())
}

func TestSaveDraft_SkipsRequiredFields(t *testing.T) {
	var forwarded model.Submission
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /eservices/svc-1/form": formRoute,
		"POST /request/save": func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&forwarded)
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": map[string]string{"id": "8", "status": "draft"}})
		},
	})
	w := h.do(postJSON("/api/requests/draft", `{"serviceId":"svc-1","step":1,"values":{"email":"a@b.sa"}}`), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, 1, forwarded.Step)
	assert.Equal(t, map[string]interface{}{"email": "a@b.sa"}, forwarded.Values)

	w = h.do(postJSON("/api/requests/draft", `{"serviceId":"svc-1","values":{"email":"bad"}}`), h.sessionCookies(t)...)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestRequestDetail_NonDraftIsReadOnly(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /request/5": func(w http.ResponseWriter, r *http.Request) {
			var form map[string]interface{}
			json.Unmarshal([]byte(serviceForm), &form)
			data := form["data"].(map[string]interface{})
			data["id"] = "5"
			data["status"] = "active"
			data["values"] = map[string]interface{}{"name": "Sara"}
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": data})
		},
	})
	w := h.do(httptest.NewRequest(http.MethodGet, "/api/requests/5?mode=edit&lang=en", nil), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code, w.Body.String())
	data := jsonBody(t, w)["data"].(map[string]interface{})
	form := data["form"].(map[string]interface{})
	assert.Equal(t, "view", form["mode"])
	page := form["pages"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Applicant", page["title"])
	field := page["fields"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, field["readOnly"])
	assert.Equal(t, "Sara", field["displayValue"])
	assert.NotContains(t, data["request"], "formDesigner")
	assert.Equal(t, "blue", data["request"].(map[string]interface{})["color"])
}

func TestEServiceForm_Wizard(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{"GET /eservices/svc-1/form": formRoute})
	w := h.do(httptest.NewRequest(http.MethodGet, "/api/eservices/svc-1/form?step=1", nil), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code, w.Body.String())
	wz := jsonBody(t, w)["data"].(map[string]interface{})["wizard"].(map[string]interface{})
	assert.Equal(t, float64(100), wz["progress"])
	steps := wz["steps"].([]interface{})
	require.Len(t, steps, 2)
	assert.Equal(t, "completed", steps[0].(map[string]interface{})["state"])
	assert.Equal(t, "active", steps[1].(map[string]interface{})["state"])

	w = h.do(postJSON("/api/eservices/svc-1/validate", `{"values":{},"draft":true}`), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, true, jsonBody(t, w)["data"].(map[string]interface{})["valid"])
}

func TestPages(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"GET /eservices": func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, 200, map[string]interface{}{"success": true, "data": []map[string]interface{}{
				{"id": "a", "nameAr": "أ", "nameEn": "A"},
				{"id": "b", "nameAr": "ب", "nameEn": "B", "featured": true},
			}})
		},
	})

	w := h.do(httptest.NewRequest(http.MethodGet, "/en/", nil), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code, w.Body.String())
	got := jsonBody(t, w)
	assert.Equal(t, "landing", got["page"])
	hl := got["highlights"].([]interface{})
	require.Len(t, hl, 2)
	assert.Equal(t, "B", hl[0].(map[string]interface{})["name"])

	w = h.do(httptest.NewRequest(http.MethodGet, "/ar/login?session_expired=true", nil))
	got = jsonBody(t, w)
	assert.Equal(t, "ar", got["locale"])
	assert.Equal(t, true, got["sessionExpired"])

	w = h.do(httptest.NewRequest(http.MethodGet, "/ar/login", nil), h.sessionCookies(t)...)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/ar/dashboard", w.Header().Get("Location"))
}

func TestLogout_AlwaysClearsCookies(t *testing.T) {
	h := newHarness(t, map[string]http.HandlerFunc{
		"POST /auth/logout": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
	})
	w := h.do(httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code)
	assert.Equal(t, -1, cookieMap(w)[session.TokenCookie].MaxAge)
	assert.Equal(t, []string{model.AuditLogout}, h.audit.actions())

	w = h.do(httptest.NewRequest(http.MethodGet, "/api/account/activity", nil), h.sessionCookies(t)...)
	require.Equal(t, 200, w.Code)
	assert.Len(t, jsonBody(t, w)["data"], 1)
}
