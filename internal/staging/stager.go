package staging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/google/uuid"

	"clipforge/internal/fileutil"
)

const (
	// tempDirPrefix marks staging directories so sweeps can recognize them.
	tempDirPrefix = ".clipforge-"

	maxCommitAttempts = 9999
	maxMkdirAttempts  = 5
)

// Stager hands out isolated temp paths inside one output directory and
// commits finished files into it with a single atomic rename. Commit is the
// only step that touches the shared namespace, so concurrent jobs writing to
// the same output directory never observe each other's partial output.
type Stager struct {
	outputDir string

	mu   sync.Mutex
	dirs map[string]string
}

// New creates a stager rooted at outputDir. The directory is created on
// first use, not here.
func New(outputDir string) (*Stager, error) {
	outputDir = strings.TrimSpace(outputDir)
	if outputDir == "" {
		return nil, errors.New("staging: output directory must not be empty")
	}
	return &Stager{outputDir: outputDir, dirs: make(map[string]string)}, nil
}

// OutputDir returns the directory committed files land in.
func (s *Stager) OutputDir() string {
	return s.outputDir
}

// TempPath returns a path for filename inside a hidden temp directory scoped
// to jobKey. The directory is created lazily; an empty jobKey shares one
// directory across the stager. Creation retries with a fresh suffix if the
// random name already exists.
func (s *Stager) TempPath(filename, jobKey string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", errors.New("staging: filename must not be empty")
	}
	if strings.ContainsRune(filename, os.PathSeparator) {
		return "", fmt.Errorf("staging: filename %q must not contain path separators", filename)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dir, ok := s.dirs[jobKey]
	if !ok {
		created, err := s.createTempDirLocked()
		if err != nil {
			return "", err
		}
		s.dirs[jobKey] = created
		dir = created
	}
	return filepath.Join(dir, filename), nil
}

func (s *Stager) createTempDirLocked() (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("staging: ensure output directory: %w", err)
	}
	for attempt := 0; attempt < maxMkdirAttempts; attempt++ {
		candidate := filepath.Join(s.outputDir, tempDirPrefix+uuid.NewString())
		err := os.Mkdir(candidate, 0o755)
		if err == nil {
			return candidate, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("staging: create temp directory: %w", err)
		}
	}
	return "", fmt.Errorf("staging: exhausted temp directory attempts in %s", s.outputDir)
}

// Commit moves tempPath into the output directory under a collision-free
// final name and returns that name. When the base name is taken, numeric
// suffixes (name_0001.ext, name_0002.ext, ...) are tried in order. The
// rename is atomic on the same filesystem; a cross-device rename falls back
// to a verified copy.
func (s *Stager) Commit(tempPath string) (string, error) {
	info, err := os.Stat(tempPath)
	if err != nil {
		return "", fmt.Errorf("staging: stat staged file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("staging: %s is a directory, expected a file", tempPath)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("staging: ensure output directory: %w", err)
	}

	final, err := s.nextFinalPathLocked(filepath.Base(tempPath))
	if err != nil {
		return "", err
	}

	if err := os.Rename(tempPath, final); err != nil {
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
			if copyErr := fileutil.CopyFileVerified(tempPath, final); copyErr != nil {
				return "", fmt.Errorf("staging: copy across filesystems: %w", copyErr)
			}
			_ = os.Remove(tempPath)
			return final, nil
		}
		return "", fmt.Errorf("staging: commit %s: %w", filepath.Base(tempPath), err)
	}
	return final, nil
}

// nextFinalPathLocked finds the first free name for base in the output
// directory. Callers hold s.mu, so jobs committing through the same stager
// never race on the same candidate.
func (s *Stager) nextFinalPathLocked(base string) (string, error) {
	candidate := filepath.Join(s.outputDir, base)
	if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
		return candidate, nil
	} else if err != nil {
		return "", fmt.Errorf("staging: probe final name: %w", err)
	}

	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for n := 1; n <= maxCommitAttempts; n++ {
		candidate = filepath.Join(s.outputDir, fmt.Sprintf("%s_%04d%s", stem, n, ext))
		_, err := os.Stat(candidate)
		if errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		}
		if err != nil {
			return "", fmt.Errorf("staging: probe final name: %w", err)
		}
	}
	return "", fmt.Errorf("staging: exhausted disambiguation slots for %s in %s", base, s.outputDir)
}

// Cleanup removes the temp directory for jobKey. Safe to call when no temp
// path was ever handed out for that key.
func (s *Stager) Cleanup(jobKey string) error {
	s.mu.Lock()
	dir, ok := s.dirs[jobKey]
	if ok {
		delete(s.dirs, jobKey)
	}
	s.mu.Unlock()

	if !ok {
		return nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("staging: remove temp directory: %w", err)
	}
	return nil
}

// CleanupAll removes every temp directory this stager created. Called once
// per run after all jobs settled.
func (s *Stager) CleanupAll() error {
	s.mu.Lock()
	dirs := make([]string, 0, len(s.dirs))
	for _, dir := range s.dirs {
		dirs = append(dirs, dir)
	}
	s.dirs = make(map[string]string)
	s.mu.Unlock()

	var firstErr error
	for _, dir := range dirs {
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("staging: remove temp directory: %w", err)
		}
	}
	return firstErr
}
