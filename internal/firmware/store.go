package firmware

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

var ErrArtifactNotFound = errors.New("firmware artifact not found")

var artifactPattern = regexp.MustCompile(`^firmware_preset_(\d+)\.ino$`)

// Store keeps generated firmware files in a single directory, one file per
// preset. Writing an artifact replaces the previous one.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the artifact directory.
func (s *Store) Dir() string {
	return s.dir
}

// FileName is the artifact name for a preset, also used as the download name.
func FileName(presetID uint) string {
	return fmt.Sprintf("firmware_preset_%d.ino", presetID)
}

// Path returns where the artifact for presetID lives.
func (s *Store) Path(presetID uint) string {
	return filepath.Join(s.dir, FileName(presetID))
}

// Write stores content as the artifact for presetID. The file is written to
// a temporary name first and renamed into place.
func (s *Store) Write(presetID uint, content string) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create firmware directory: %w", err)
	}

	tmpPath := filepath.Join(s.dir, ".tmp-"+uuid.NewString())
	if err := os.WriteFile(tmpPath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write firmware: %w", err)
	}

	path := s.Path(presetID)
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("failed to move firmware into place: %w", err)
	}
	return path, nil
}

// Open returns a reader for the artifact of presetID, or ErrArtifactNotFound.
func (s *Store) Open(presetID uint) (io.ReadCloser, os.FileInfo, error) {
	f, err := os.Open(s.Path(presetID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrArtifactNotFound
		}
		return nil, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return f, info, nil
}

// Exists reports whether an artifact has been generated for presetID.
func (s *Store) Exists(presetID uint) bool {
	info, err := os.Stat(s.Path(presetID))
	return err == nil && !info.IsDir()
}

// Remove deletes the artifact for presetID. A missing artifact is not an
// error.
func (s *Store) Remove(presetID uint) error {
	err := os.Remove(s.Path(presetID))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// PresetIDs lists the preset ids that currently have an artifact.
func (s *Store) PresetIDs() ([]uint, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var ids []uint
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		m := artifactPattern.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}
		id, err := strconv.ParseUint(m[1], 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}
