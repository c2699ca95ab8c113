// Package web provides the HTTP server and web interface for go-records
package web

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-while/go-records/internal/config"
	"github.com/go-while/go-records/internal/records"
	"github.com/spf13/afero"
)

// recordsErrorStatus maps a dataset failure to the response status and public message
func recordsErrorStatus(err error) (int, string) {
	switch records.KindOf(err) {
	case records.KindNotFound:
		return http.StatusNotFound, "dataset not found"
	case records.KindMalformed:
		return http.StatusInternalServerError, "dataset is not valid JSON"
	default:
		return http.StatusInternalServerError, "failed to read dataset"
	}
}

// getRecords serves the dataset file verbatim; it is read from disk on every request
func (s *WebServer) getRecords(c *gin.Context) {
	data, path, err := s.Records.Load()
	if err != nil {
		status, message := recordsErrorStatus(err)
		log.Printf("[WEB]: GET /api/records failed (%s): %v", records.KindOf(err), err)
		c.JSON(status, gin.H{"error": message})
		return
	}
	if s.Config.Debug {
		log.Printf("[WEB]: Serving %d bytes from %s", len(data), path)
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", data)
}

// getStats reports version, uptime and where the dataset would be read from
func (s *WebServer) getStats(c *gin.Context) {
	path, err := s.Records.Resolve()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	found, _ := afero.Exists(s.Records.Fs, path)

	c.JSON(http.StatusOK, gin.H{
		"app_version":   config.AppVersion,
		"start_time":    s.StartTime.Format(time.RFC3339),
		"uptime":        time.Since(s.StartTime).Round(time.Second).String(),
		"dataset_path":  path,
		"dataset_found": found,
	})
}
