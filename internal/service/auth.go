package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"eportal/internal/model"
)

type AuthService struct{ backend *Backend }

func NewAuthService(backend *Backend) *AuthService { return &AuthService{backend: backend} }

type LoginInput struct {
	IdentityID   string `json:"identityId"`
	Password     string `json:"password"`
	CaptchaID    string `json:"captchaId"`
	CaptchaValue string `json:"captchaValue"`
}

type NafathStartInput struct {
	IdentityID   string `json:"identityId"`
	CaptchaID    string `json:"captchaId"`
	CaptchaValue string `json:"captchaValue"`
}

func (s *AuthService) Captcha(ctx context.Context, scope Scope) (*model.Captcha, error) {
	var c model.Captcha
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/auth/captcha", Scope: scope}, &c); err != nil {
		return nil, err
	}
	if c.ID == "" {
		return nil, &APIError{Code: ErrCodeDecode, Message: "captcha without id"}
	}
	return &c, nil
}

// Login exchanges credentials for a bearer token. A 401 here means wrong
// credentials, not an expired session.
func (s *AuthService) Login(ctx context.Context, scope Scope, in LoginInput) (*model.LoginResult, error) {
	var res model.LoginResult
	_, err := s.backend.Do(ctx, Call{Method: http.MethodPost, Path: "/auth", Body: in, Scope: scope}, &res)
	if err != nil {
		return nil, credentialError(err)
	}
	if res.Token == "" {
		return nil, &APIError{Code: ErrCodeDecode, Message: "login response without token"}
	}
	return &res, nil
}

func (s *AuthService) NafathStart(ctx context.Context, scope Scope, in NafathStartInput) (*model.NafathChallenge, error) {
	var ch model.NafathChallenge
	_, err := s.backend.Do(ctx, Call{Method: http.MethodPost, Path: "/auth/nafath", Body: in, Scope: scope}, &ch)
	if err != nil {
		return nil, credentialError(err)
	}
	if ch.TransactionID == "" {
		return nil, &APIError{Code: ErrCodeDecode, Message: "nafath response without transaction"}
	}
	return &ch, nil
}

// NafathStatus polls a Nafath transaction. WAITING and COMPLETED are returned
// as results; REJECTED and EXPIRED become errors.
func (s *AuthService) NafathStatus(ctx context.Context, scope Scope, transactionID string) (*model.NafathResult, error) {
	var res model.NafathResult
	path := "/auth/nafath/" + url.PathEscape(transactionID)
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: path, Scope: scope}, &res); err != nil {
		return nil, credentialError(err)
	}
	switch res.Status {
	case model.NafathRejected:
		return nil, &APIError{Code: ErrCodeNafathRejected}
	case model.NafathExpired:
		return nil, &APIError{Code: ErrCodeNafathExpired}
	case model.NafathCompleted:
		if res.Token == "" || res.User == nil {
			return nil, &APIError{Code: ErrCodeDecode, Message: "completed nafath without token"}
		}
	case model.NafathWaiting:
	default:
		return nil, &APIError{Code: ErrCodeDecode, Message: fmt.Sprintf("unknown nafath status %q", res.Status)}
	}
	return &res, nil
}

func (s *AuthService) Logout(ctx context.Context, scope Scope) error {
	_, err := s.backend.Do(ctx, Call{Method: http.MethodPost, Path: "/auth/logout", Scope: scope}, nil)
	return err
}

func (s *AuthService) Profile(ctx context.Context, scope Scope) (*model.User, error) {
	var u model.User
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/auth/profile", Scope: scope}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func credentialError(err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == ErrCodeUnauthorized {
		return &APIError{Code: ErrCodeInvalidCredentials, Status: apiErr.Status, Message: apiErr.Message}
	}
	return err
}
