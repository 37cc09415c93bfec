package model

import (
	"encoding/json"
	"strings"
	"time"
)

type RequestStatus string

const (
	StatusDraft    RequestStatus = "draft"
	StatusActive   RequestStatus = "active"
	StatusClosed   RequestStatus = "closed"
	StatusRejected RequestStatus = "rejected"
)

var statusColors = map[RequestStatus]string{
	StatusDraft:    "gray",
	StatusActive:   "blue",
	StatusClosed:   "green",
	StatusRejected: "red",
}

type Request struct {
	ID              string        `json:"id"`
	ReferenceNumber string        `json:"referenceNumber"`
	DocumentType    string        `json:"documentType"`
	ServiceID       string        `json:"serviceId,omitempty"`
	ServiceName     string        `json:"serviceName,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	Status          RequestStatus `json:"status"`
	Color           string        `json:"color"`
	Step            int           `json:"step,omitempty"`
}

// WithColor fills Color from the status when the backend sent no hint.
func (r Request) WithColor() Request {
	if r.Color != "" {
		return r
	}
	if c, ok := statusColors[RequestStatus(strings.ToLower(string(r.Status)))]; ok {
		r.Color = c
	} else {
		r.Color = "gray"
	}
	return r
}

func (r Request) Closable() bool {
	return RequestStatus(strings.ToLower(string(r.Status))) == StatusActive
}

type TimelineEntry struct {
	Status    RequestStatus `json:"status"`
	Note      string        `json:"note,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
}

type RequestDetail struct {
	Request
	FormDesigner json.RawMessage        `json:"formDesigner,omitempty"`
	Translations json.RawMessage        `json:"translations,omitempty"`
	Values       map[string]interface{} `json:"values,omitempty"`
	Timeline     []TimelineEntry        `json:"timeline,omitempty"`
}

type RequestPage struct {
	Items []Request `json:"items"`
	Meta  Meta      `json:"meta"`
}

// Submission is the payload forwarded on draft save and final submit.
type Submission struct {
	ServiceID string                 `json:"serviceId" binding:"required"`
	RequestID string                 `json:"requestId,omitempty"`
	Step      int                    `json:"step,omitempty"`
	Values    map[string]interface{} `json:"values"`
}

type SubmissionResult struct {
	ID              string        `json:"id"`
	ReferenceNumber string        `json:"referenceNumber"`
	Status          RequestStatus `json:"status"`
}

type CloseRequest struct {
	Reason string `json:"reason"`
}

// Statistics holds request counts keyed by status.
type Statistics struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}
