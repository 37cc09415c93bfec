package model

import (
	"encoding/json"
	"time"
)

type Bill struct {
	ID          string     `json:"id"`
	BillNumber  string     `json:"billNumber"`
	Description string     `json:"description"`
	Amount      float64    `json:"amount"`
	Currency    string     `json:"currency"`
	Status      string     `json:"status"`
	IssuedAt    time.Time  `json:"issuedAt"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	PaidAt      *time.Time `json:"paidAt,omitempty"`
	RequestID   string     `json:"requestId,omitempty"`
}

type BillPage struct {
	Items []Bill `json:"items"`
	Meta  Meta   `json:"meta"`
}

type Certificate struct {
	ID                string     `json:"id"`
	CertificateNumber string     `json:"certificateNumber"`
	Title             string     `json:"title"`
	RequestID         string     `json:"requestId,omitempty"`
	IssuedAt          time.Time  `json:"issuedAt"`
	ExpiresAt         *time.Time `json:"expiresAt,omitempty"`
	Status            string     `json:"status"`
}

type CertificatePage struct {
	Items []Certificate `json:"items"`
	Meta  Meta          `json:"meta"`
}

type CertificateVerification struct {
	Valid       bool         `json:"valid"`
	Certificate *Certificate `json:"certificate,omitempty"`
}

type EService struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	NameAr        string `json:"nameAr"`
	NameEn        string `json:"nameEn"`
	DescriptionAr string `json:"descriptionAr,omitempty"`
	DescriptionEn string `json:"descriptionEn,omitempty"`
	Category      string `json:"category,omitempty"`
	Icon          string `json:"icon,omitempty"`
	RequiresLogin bool   `json:"requiresLogin"`
	Featured      bool   `json:"featured,omitempty"`
}

func (s EService) Name(locale string) string {
	if locale == "en" && s.NameEn != "" {
		return s.NameEn
	}
	if s.NameAr != "" {
		return s.NameAr
	}
	return s.NameEn
}

// ServiceForm is the form designer document plus its translation table.
// Both are kept raw; formschema parses them defensively.
type ServiceForm struct {
	ServiceID    string          `json:"serviceId"`
	FormDesigner json.RawMessage `json:"formDesigner"`
	Translations json.RawMessage `json:"translations"`
}
