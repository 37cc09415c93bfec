package handler

import (
	"net/http"

	"eportal/internal/model"
	"eportal/internal/pagination"
	"eportal/internal/service"

	"github.com/gin-gonic/gin"
)

const pageWindow = 5

type pageView struct {
	pagination.Page
	Window []int `json:"window"`
}

func newPageView(meta model.Meta) pageView {
	p := pagination.New(meta.Total, meta.Page, meta.PageSize)
	return pageView{Page: p, Window: p.Window(pageWindow)}
}

func listQuery(c *gin.Context) service.ListQuery {
	page, size := pagination.FromQuery(c)
	return service.ListQuery{Page: page, PageSize: size, Status: c.Query("status"), Search: c.Query("search")}
}

func paged(c *gin.Context, items interface{}, meta model.Meta) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       items,
		"meta":       meta,
		"pagination": newPageView(meta),
	})
}
