// Package records locates and loads the JSON dataset served by go-records
package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

const (
	DataDirName  = "data"
	DataFileName = "records.json"
)

// Dataset is the raw JSON document exactly as it is stored on disk
type Dataset []byte

// Service resolves and reads the dataset file relative to ServiceDir.
// It keeps no state between calls: every Load resolves and reads again.
type Service struct {
	ServiceDir string
	Fs         afero.Fs
}

// NewService creates a record service anchored at serviceDir.
// A nil fs selects the operating system filesystem.
func NewService(serviceDir string, fsys afero.Fs) *Service {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Service{
		ServiceDir: serviceDir,
		Fs:         fsys,
	}
}

// Candidates returns the dataset locations in priority order:
// serviceDir/../data/records.json first, then serviceDir/data/records.json
func (s *Service) Candidates() ([]string, error) {
	baseDir, err := filepath.Abs(s.ServiceDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve service dir %q: %w", s.ServiceDir, err)
	}
	primary := filepath.Clean(filepath.Join(baseDir, "..", DataDirName, DataFileName))
	fallback := filepath.Join(baseDir, DataDirName, DataFileName)
	return []string{primary, fallback}, nil
}

// Resolve picks the primary candidate if it exists, otherwise the fallback.
// The fallback is returned without checking it; Load reports a missing file.
func (s *Service) Resolve() (string, error) {
	candidates, err := s.Candidates()
	if err != nil {
		return "", err
	}
	primary, fallback := candidates[0], candidates[1]

	exists, err := afero.Exists(s.Fs, primary)
	if err != nil {
		log.Printf("[RECORDS]: stat %s failed, using fallback: %v", primary, err)
	}
	if exists {
		return primary, nil
	}
	return fallback, nil
}

// Load resolves the dataset path, then reads and parses the file at it.
// The file may vanish between Resolve and Open; that surfaces as KindNotFound.
func (s *Service) Load() (Dataset, string, error) {
	path, err := s.Resolve()
	if err != nil {
		return nil, "", &Error{Op: "resolve", Kind: KindIO, Err: err}
	}

	f, err := s.Fs.Open(path)
	if err != nil {
		kind := KindIO
		if errors.Is(err, fs.ErrNotExist) {
			kind = KindNotFound
		}
		return nil, path, &Error{Op: "open", Path: path, Kind: kind, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, path, &Error{Op: "stat", Path: path, Kind: KindIO, Err: err}
	}
	if info.IsDir() {
		return nil, path, &Error{Op: "read", Path: path, Kind: KindIO, Err: errors.New("is a directory")}
	}

	data, err := io.ReadAll(transform.NewReader(f, encoding.UTF8Validator))
	if err != nil {
		if errors.Is(err, encoding.ErrInvalidUTF8) {
			return nil, path, &Error{Op: "decode", Path: path, Kind: KindMalformed, Err: err}
		}
		return nil, path, &Error{Op: "read", Path: path, Kind: KindIO, Err: err}
	}

	if err := parse(data); err != nil {
		return nil, path, &Error{Op: "parse", Path: path, Kind: KindMalformed, Err: err}
	}
	return Dataset(data), path, nil
}

// parse checks that data holds exactly one JSON value
func parse(data []byte) error {
	var v json.RawMessage
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
