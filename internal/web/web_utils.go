// Package web provides the HTTP server and web interface for go-records
package web

import (
	"bytes"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-records/internal/config"
	"github.com/spf13/afero"
)

const (
	TemplatesDirName = "templates"
	baseTemplate     = "base.html"
	errorTemplate    = "error.html"
)

// GetPort returns the listening port from the config
func (s *WebServer) GetPort() int {
	return s.Config.ListenPort
}

// getBaseTemplateData creates a TemplateData struct with common information
func (s *WebServer) getBaseTemplateData(title string) TemplateData {
	return TemplateData{
		Title:       template.HTML(title),
		CurrentTime: time.Now().Format("2006-01-02 15:04:05"),
		Port:        s.GetPort(),
		AppVersion:  config.AppVersion,
		RecordsAPI:  "/api/records",
	}
}

// templateDir is ServiceDir/templates as an absolute path
func (s *WebServer) templateDir() string {
	dir := filepath.Join(s.Config.ServiceDir, TemplatesDirName)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// parseTemplates loads base.html plus the named page from disk on every call
func (s *WebServer) parseTemplates(templateName string) (*template.Template, error) {
	tmplFS := afero.NewIOFS(afero.NewBasePathFs(s.Records.Fs, s.templateDir()))
	return template.ParseFS(tmplFS, baseTemplate, templateName)
}

// renderError renders an error page
func (s *WebServer) renderError(c *gin.Context, statusCode int, message string, errstring string) {
	errorData := struct {
		TemplateData
		Error      string
		StatusCode int
	}{
		TemplateData: s.getBaseTemplateData("Error"),
		Error:        message,
		StatusCode:   statusCode,
	}
	log.Printf("[WEB]: Error %d: %s - %s", statusCode, message, errstring)

	tmpl, err := s.parseTemplates(errorTemplate)
	if err != nil {
		log.Printf("[WEB]: Error loading error template: %v", err)
		c.String(statusCode, "Error: %s", message)
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseTemplate, errorData); err != nil {
		log.Printf("[WEB]: Error rendering error template: %v", err)
		c.String(statusCode, "Error: %s", message)
		return
	}
	c.Data(statusCode, "text/html; charset=utf-8", buf.Bytes())
}

// renderTemplate renders a page inside base.html.
// Output is buffered so a failing template never leaves a half written 200.
func (s *WebServer) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	tmpl, err := s.parseTemplates(templateName)
	if err != nil {
		s.renderError(c, http.StatusInternalServerError, "Template not found", err.Error())
		return
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, baseTemplate, data); err != nil {
		log.Printf("[WEB]: Error rendering template %s: %v", templateName, err)
		s.renderError(c, http.StatusInternalServerError, "Template error", err.Error())
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
