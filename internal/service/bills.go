package service

import (
	"context"
	"net/http"
	"net/url"

	"eportal/internal/model"
)

type BillService struct{ backend *Backend }

func NewBillService(backend *Backend) *BillService { return &BillService{backend: backend} }

func (s *BillService) List(ctx context.Context, scope Scope, q ListQuery) (*model.BillPage, error) {
	return s.page(ctx, scope, "/bills", q)
}

func (s *BillService) Unpaid(ctx context.Context, scope Scope, q ListQuery) (*model.BillPage, error) {
	return s.page(ctx, scope, "/bills/unpaid", q)
}

func (s *BillService) page(ctx context.Context, scope Scope, path string, q ListQuery) (*model.BillPage, error) {
	var items []model.Bill
	meta, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: path, Query: q.values(), Scope: scope}, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Bill{}
	}
	return &model.BillPage{Items: items, Meta: metaOrDefault(meta, q, len(items))}, nil
}

func (s *BillService) Get(ctx context.Context, scope Scope, id string) (*model.Bill, error) {
	var b model.Bill
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/bills/" + url.PathEscape(id), Scope: scope}, &b); err != nil {
		return nil, err
	}
	return &b, nil
}
