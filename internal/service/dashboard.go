package service

import (
	"context"

	"eportal/internal/model"

	"golang.org/x/sync/errgroup"
)

type DashboardSummary struct {
	Statistics  model.Statistics `json:"statistics"`
	Latest      []model.Request  `json:"latest"`
	Drafts      []model.Request  `json:"drafts"`
	UnpaidBills []model.Bill     `json:"unpaidBills"`
}

type DashboardService struct {
	requests *RequestService
	bills    *BillService
}

func NewDashboardService(requests *RequestService, bills *BillService) *DashboardService {
	return &DashboardService{requests: requests, bills: bills}
}

const dashboardListSize = 5

// Summary loads the dashboard blocks concurrently. The first failure cancels
// the remaining calls and is returned as is.
func (s *DashboardService) Summary(ctx context.Context, scope Scope) (*DashboardSummary, error) {
	var out DashboardSummary
	g, ctx := errgroup.WithContext(ctx)
	first := ListQuery{Page: 1, PageSize: dashboardListSize}

	g.Go(func() error {
		st, err := s.requests.Statistics(ctx, scope)
		if err != nil {
			return err
		}
		out.Statistics = *st
		return nil
	})
	g.Go(func() error {
		p, err := s.requests.List(ctx, scope, first)
		if err != nil {
			return err
		}
		out.Latest = p.Items
		return nil
	})
	g.Go(func() error {
		p, err := s.requests.Drafts(ctx, scope, first)
		if err != nil {
			return err
		}
		out.Drafts = p.Items
		return nil
	})
	g.Go(func() error {
		p, err := s.bills.Unpaid(ctx, scope, first)
		if err != nil {
			return err
		}
		out.UnpaidBills = p.Items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}
