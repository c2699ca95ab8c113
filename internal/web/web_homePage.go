// Package web provides the HTTP server and web interface for go-records
package web

import (
	"github.com/gin-gonic/gin"
)

const homeTemplate = "index.html"

// homePage renders the landing page; the records are fetched client side by static/script.js
func (s *WebServer) homePage(c *gin.Context) {
	data := s.getBaseTemplateData("Records")
	s.renderTemplate(c, homeTemplate, data)
}
