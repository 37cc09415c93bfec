package service

import (
	"context"
	"net/http"
	"net/url"

	"eportal/internal/model"
)

type EServiceService struct{ backend *Backend }

func NewEServiceService(backend *Backend) *EServiceService { return &EServiceService{backend: backend} }

func (s *EServiceService) Catalog(ctx context.Context, scope Scope, category string) ([]model.EService, error) {
	q := url.Values{}
	if category != "" {
		q.Set("category", category)
	}
	var items []model.EService
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/eservices", Query: q, Scope: scope}, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.EService{}
	}
	return items, nil
}

func (s *EServiceService) Get(ctx context.Context, scope Scope, id string) (*model.EService, error) {
	var e model.EService
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/eservices/" + url.PathEscape(id), Scope: scope}, &e); err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *EServiceService) Form(ctx context.Context, scope Scope, id string) (*model.ServiceForm, error) {
	var f model.ServiceForm
	path := "/eservices/" + url.PathEscape(id) + "/form"
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: path, Scope: scope}, &f); err != nil {
		return nil, err
	}
	if f.ServiceID == "" {
		f.ServiceID = id
	}
	return &f, nil
}
