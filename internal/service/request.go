package service

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"eportal/internal/model"
)

type RequestService struct{ backend *Backend }

func NewRequestService(backend *Backend) *RequestService { return &RequestService{backend: backend} }

type ListQuery struct {
	Page     int
	PageSize int
	Status   string
	Search   string
}

func (q ListQuery) values() url.Values {
	v := url.Values{}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	if q.Status != "" {
		v.Set("status", q.Status)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	return v
}

func (s *RequestService) List(ctx context.Context, scope Scope, q ListQuery) (*model.RequestPage, error) {
	return s.page(ctx, scope, "/request", q)
}

func (s *RequestService) Drafts(ctx context.Context, scope Scope, q ListQuery) (*model.RequestPage, error) {
	return s.page(ctx, scope, "/request/drafts", q)
}

func (s *RequestService) page(ctx context.Context, scope Scope, path string, q ListQuery) (*model.RequestPage, error) {
	var items []model.Request
	meta, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: path, Query: q.values(), Scope: scope}, &items)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i] = items[i].WithColor()
	}
	if items == nil {
		items = []model.Request{}
	}
	return &model.RequestPage{Items: items, Meta: metaOrDefault(meta, q, len(items))}, nil
}

func (s *RequestService) Get(ctx context.Context, scope Scope, id string) (*model.RequestDetail, error) {
	var d model.RequestDetail
	path := "/request/" + url.PathEscape(id)
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: path, Scope: scope}, &d); err != nil {
		return nil, err
	}
	d.Request = d.Request.WithColor()
	return &d, nil
}

func (s *RequestService) SaveDraft(ctx context.Context, scope Scope, sub model.Submission) (*model.SubmissionResult, error) {
	var res model.SubmissionResult
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodPost, Path: "/request/save", Body: sub, Scope: scope}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *RequestService) Submit(ctx context.Context, scope Scope, sub model.Submission) (*model.SubmissionResult, error) {
	var res model.SubmissionResult
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodPost, Path: "/request/submit", Body: sub, Scope: scope}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *RequestService) Close(ctx context.Context, scope Scope, id, reason string) error {
	path := "/request/" + url.PathEscape(id) + "/close"
	_, err := s.backend.Do(ctx, Call{Method: http.MethodPost, Path: path, Body: model.CloseRequest{Reason: reason}, Scope: scope}, nil)
	return err
}

func (s *RequestService) Statistics(ctx context.Context, scope Scope) (*model.Statistics, error) {
	var st model.Statistics
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/request/statistics", Scope: scope}, &st); err != nil {
		return nil, err
	}
	if st.ByStatus == nil {
		st.ByStatus = map[string]int{}
	}
	if st.Total == 0 {
		for _, n := range st.ByStatus {
			st.Total += n
		}
	}
	return &st, nil
}

// metaOrDefault fills in pagination when the backend omitted meta.
func metaOrDefault(meta *model.Meta, q ListQuery, n int) model.Meta {
	if meta != nil {
		return *meta
	}
	m := model.Meta{Page: q.Page, PageSize: q.PageSize, Total: n}
	if m.Page <= 0 {
		m.Page = 1
	}
	if m.PageSize <= 0 {
		m.PageSize = n
	}
	if n > 0 {
		m.TotalPages = 1
	}
	return m
}
