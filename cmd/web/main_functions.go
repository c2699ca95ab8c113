package main

import (
	"log"

	"github.com/go-while/go-records/internal/config"
	"github.com/go-while/go-records/internal/records"
	"github.com/spf13/afero"
)

// applyFlagOverrides copies every flag that was set onto webConfig.
// Flags win over the config file, which wins over the defaults.
func applyFlagOverrides(webConfig *config.WebConfig) {
	if webhost != "" {
		webConfig.ListenHost = webhost
		log.Printf("[WEB]: Overriding listen host with command-line flag: %s", webConfig.ListenHost)
	}
	if webport > 0 {
		webConfig.ListenPort = webport
		log.Printf("[WEB]: Overriding listen port with command-line flag: %d", webConfig.ListenPort)
	} else {
		log.Printf("[WEB]: No port flag provided, using: %d", webConfig.ListenPort)
	}
	if webssl {
		webConfig.SSL = true
		log.Printf("[WEB]: SSL enabled via command-line flag")
	}
	if webcertFile != "" {
		webConfig.CertFile = webcertFile
		log.Printf("[WEB]: SSL cert file set: %s", webConfig.CertFile)
	}
	if webkeyFile != "" {
		webConfig.KeyFile = webkeyFile
		log.Printf("[WEB]: SSL key file set: %s", webConfig.KeyFile)
	}
	if serviceDir != "" {
		webConfig.ServiceDir = serviceDir
		log.Printf("[WEB]: Service dir set: %s", webConfig.ServiceDir)
	}
	if webdebug {
		webConfig.Debug = true
	}
}

// logDatasetCandidates reports where the dataset will be looked up.
// A missing file is only a warning here; requests answer 404 until it appears.
func logDatasetCandidates(recs *records.Service) {
	candidates, err := recs.Candidates()
	if err != nil {
		log.Printf("[WEB]: Warning: %v", err)
		return
	}
	found := false
	for i, path := range candidates {
		exists, _ := afero.Exists(recs.Fs, path)
		log.Printf("[WEB]: Dataset candidate %d: %s (exists: %t)", i+1, path, exists)
		found = found || exists
	}
	if !found {
		log.Printf("[WEB]: Warning: no dataset file found, /api/records will answer 404")
	}
}
