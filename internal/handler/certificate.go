package handler

import (
	"fmt"
	"net/http"

	"eportal/internal/logger"
	"eportal/internal/middleware"
	"eportal/internal/service"
	"eportal/internal/session"

	"github.com/gin-gonic/gin"
)

type CertificateHandler struct {
	certs *service.CertificateService
	jar   session.Cookies
}

func NewCertificateHandler(certs *service.CertificateService, jar session.Cookies) *CertificateHandler {
	return &CertificateHandler{certs: certs, jar: jar}
}

func (h *CertificateHandler) List(c *gin.Context) {
	p, err := h.certs.List(c.Request.Context(), scope(c), listQuery(c))
	if err != nil {
		fail(c, h.jar, "certificate.list", err, nil)
		return
	}
	paged(c, p.Items, p.Meta)
}

func (h *CertificateHandler) Get(c *gin.Context) {
	cert, err := h.certs.Get(c.Request.Context(), scope(c), c.Param("id"))
	if err != nil {
		fail(c, h.jar, "certificate.get", err, nil)
		return
	}
	ok(c, cert)
}

// Verify is public: anyone holding a certificate number can check it.
func (h *CertificateHandler) Verify(c *gin.Context) {
	v, err := h.certs.Verify(c.Request.Context(), anonymous(c), c.Param("number"))
	if err != nil {
		fail(c, h.jar, "certificate.verify", err, nil)
		return
	}
	ok(c, v)
}

func (h *CertificateHandler) Download(c *gin.Context) {
	id := c.Param("id")
	body, contentType, err := h.certs.Download(c.Request.Context(), scope(c), id)
	if err != nil {
		fail(c, h.jar, "certificate.download", err, nil)
		return
	}
	defer body.Close()
	if contentType == "" {
		contentType = "application/pdf"
	}
	logger.Info("certificate.download", "id", id, "request_id", middleware.RequestIDFrom(c))
	c.DataFromReader(http.StatusOK, -1, contentType, body, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="certificate-%s.pdf"`, sanitizeFilename(id)),
	})
}

func sanitizeFilename(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '-' || r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' {
			out = append(out, r)
		}
	}
	return string(out)
}
