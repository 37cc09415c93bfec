package handler

import (
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

type BillHandler struct {
	bills *service.BillService
	jar   session.Cookies
}

func NewBillHandler(bills *service.BillService, jar session.Cookies) *BillHandler {
	return &BillHandler{bills: bills, jar: jar}
}

func (h *BillHandler) List(c *gin.Context) {
	p, err := h.bills.List(c.Request.Context(), scope(c), listQuery(c))
	if err != nil {
		fail(c, h.jar, "bill.list", err, nil)
		return
	}
	paged(c, p.Items, p.Meta)
}

func (h *BillHandler) Unpaid(c *gin.Context) {
	p, err := h.bills.Unpaid(c.Request.Context(), scope(c), listQuery(c))
	if err != nil {
		fail(c, h.jar, "bill.unpaid", err, nil)
		return
	}
	paged(c, p.Items, p.Meta)
}

func (h *BillHandler) Get(c *gin.Context) {
	b, err := h.bills.Get(c.Request.Context(), scope(c), c.Param("id"))
	if err != nil {
		fail(c, h.jar, "bill.get", err, nil)
		return
	}
	ok(c, b)
}
