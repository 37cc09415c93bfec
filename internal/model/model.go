package model

import "strings"

// Numeric language preference as stored by the backend.
const (
	LanguageArabic  = 1
	LanguageEnglish = 2
)

type User struct {
	ID         string `json:"id"`
	IdentityID string `json:"identityId"`
	NameAr     string `json:"nameAr"`
	NameEn     string `json:"nameEn"`
	Email      string `json:"email"`
	Mobile     string `json:"mobile,omitempty"`
	Language   int    `json:"language"`
}

// DisplayName picks the name matching locale, falling back to the other one.
func (u User) DisplayName(locale string) string {
	if strings.HasPrefix(locale, "en") {
		if u.NameEn != "" {
			return u.NameEn
		}
		return u.NameAr
	}
	if u.NameAr != "" {
		return u.NameAr
	}
	return u.NameEn
}

// PreferredLocale maps the numeric language preference to a locale tag.
func (u User) PreferredLocale() string {
	if u.Language == LanguageEnglish {
		return "en"
	}
	return "ar"
}

type LoginRequest struct {
	IdentityID   string `json:"identityId" binding:"required"`
	Password     string `json:"password" binding:"required"`
	CaptchaValue string `json:"captchaValue" binding:"required"`
}

type NafathStartRequest struct {
	IdentityID   string `json:"identityId" binding:"required,numeric,len=10"`
	CaptchaValue string `json:"captchaValue" binding:"required"`
}

type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

type Captcha struct {
	ID    string `json:"captchaId"`
	Image string `json:"image"`
}

// Nafath transaction states reported by the backend.
const (
	NafathWaiting   = "WAITING"
	NafathCompleted = "COMPLETED"
	NafathRejected  = "REJECTED"
	NafathExpired   = "EXPIRED"
)

type NafathChallenge struct {
	TransactionID string `json:"transactionId"`
	Random        string `json:"random"`
	ExpiresIn     int    `json:"expiresIn,omitempty"`
}

type NafathResult struct {
	Status string `json:"status"`
	Token  string `json:"token,omitempty"`
	User   *User  `json:"user,omitempty"`
}

type SessionResponse struct {
	Authenticated bool  `json:"authenticated"`
	User          *User `json:"user,omitempty"`
}

// Meta is the pagination block of the backend envelope.
type Meta struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}
