package service

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"eportal/internal/model"
)

type CertificateService struct{ backend *Backend }

func NewCertificateService(backend *Backend) *CertificateService {
	return &CertificateService{backend: backend}
}

func (s *CertificateService) List(ctx context.Context, scope Scope, q ListQuery) (*model.CertificatePage, error) {
	var items []model.Certificate
	meta, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/certificate", Query: q.values(), Scope: scope}, &items)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []model.Certificate{}
	}
	return &model.CertificatePage{Items: items, Meta: metaOrDefault(meta, q, len(items))}, nil
}

func (s *CertificateService) Get(ctx context.Context, scope Scope, id string) (*model.Certificate, error) {
	var c model.Certificate
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: "/certificate/" + url.PathEscape(id), Scope: scope}, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Verify checks a certificate number; it needs no session.
func (s *CertificateService) Verify(ctx context.Context, scope Scope, number string) (*model.CertificateVerification, error) {
	var v model.CertificateVerification
	scope.Token = ""
	path := "/certificate/verify/" + url.PathEscape(number)
	if _, err := s.backend.Do(ctx, Call{Method: http.MethodGet, Path: path, Scope: scope}, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// Download streams the certificate document. The caller closes the body.
func (s *CertificateService) Download(ctx context.Context, scope Scope, id string) (io.ReadCloser, string, error) {
	path := "/certificate/" + url.PathEscape(id) + "/download"
	return s.backend.DoRaw(ctx, Call{Method: http.MethodGet, Path: path, Scope: scope})
}
