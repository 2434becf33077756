package artifacts

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"mediagate/internal/fileutil"
	"mediagate/internal/textutil"
)

// ErrOutsideStore reports an attempt to address a file outside a user's
// storage directory.
var ErrOutsideStore = errors.New("path escapes storage directory")

// Entry describes one saved file in a user's permanent store.
type Entry struct {
	Name     string
	Size     int64
	Modified time.Time
}

// Store manages the temp workspace and the per-user permanent store.
type Store struct {
	tempDir    string
	storageDir string
}

// NewStore creates the root directories if needed.
func NewStore(tempDir, storageDir string) (*Store, error) {
	if strings.TrimSpace(tempDir) == "" {
		return nil, errors.New("temp directory required")
	}
	if strings.TrimSpace(storageDir) == "" {
		return nil, errors.New("storage directory required")
	}
	for _, dir := range []string{tempDir, storageDir} {
		if err := fileutil.EnsureDir(dir); err != nil {
			return nil, err
		}
	}
	return &Store{tempDir: tempDir, storageDir: storageDir}, nil
}

// TempDir exposes the workspace root for preflight checks.
func (s *Store) TempDir() string { return s.tempDir }

// NewTempPath reserves a unique scratch path under the user's temp
// directory. The file itself is not created; ext keeps its leading dot.
func (s *Store) NewTempPath(userID int64, ext string) (string, error) {
	dir := filepath.Join(s.tempDir, strconv.FormatInt(userID, 10))
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}
	name := strings.ReplaceAll(uuid.NewString(), "-", "")
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return filepath.Join(dir, name+strings.ToLower(ext)), nil
}

// NewTempDir reserves a unique scratch directory for multi-file tool
// output such as downloads.
func (s *Store) NewTempDir(userID int64) (string, error) {
	dir := filepath.Join(s.tempDir, strconv.FormatInt(userID, 10), strings.ReplaceAll(uuid.NewString(), "-", ""))
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// Discard securely removes a scratch file, tolerating files that were
// never created. Directories are walked and removed bottom-up.
func (s *Store) Discard(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	info, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return SecureDelete(path)
	}
	var firstErr error
	walkErr := filepath.WalkDir(path, func(entry string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if err := SecureDelete(entry); err != nil && firstErr == nil {
			firstErr = err
		}
		return nil
	})
	if walkErr != nil && firstErr == nil {
		firstErr = walkErr
	}
	if err := os.RemoveAll(path); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// SaveToPermanent moves a finished artifact into the user's store under
// the requested display name. Name collisions get a numeric suffix before
// the extension rather than overwriting.
func (s *Store) SaveToPermanent(userID int64, sourcePath, name string) (string, error) {
	dir := filepath.Join(s.storageDir, strconv.FormatInt(userID, 10))
	if err := fileutil.EnsureDir(dir); err != nil {
		return "", err
	}
	safe := textutil.SanitizeFileName(name)
	if safe == "" {
		safe = filepath.Base(sourcePath)
	}
	target := filepath.Join(dir, safe)
	ext := filepath.Ext(safe)
	stem := strings.TrimSuffix(safe, ext)
	for n := 1; ; n++ {
		if _, err := os.Lstat(target); errors.Is(err, fs.ErrNotExist) {
			break
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", target, err)
		}
		target = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
	if err := fileutil.MoveFile(sourcePath, target); err != nil {
		return "", err
	}
	return target, nil
}

// ListPermanent returns the user's saved files sorted by name. A missing
// user directory is an empty store, not an error.
func (s *Store) ListPermanent(userID int64) ([]Entry, error) {
	dir := filepath.Join(s.storageDir, strconv.FormatInt(userID, 10))
	dirEntries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store %s: %w", dir, err)
	}
	entries := make([]Entry, 0, len(dirEntries))
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: de.Name(), Size: info.Size(), Modified: info.ModTime()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// DeletePermanent securely removes one saved file. The name is resolved
// inside the user's directory only; traversal attempts fail.
func (s *Store) DeletePermanent(userID int64, name string) error {
	dir := filepath.Join(s.storageDir, strconv.FormatInt(userID, 10))
	target := filepath.Join(dir, name)
	if name != filepath.Base(name) || !fileutil.WithinDir(dir, target) {
		return fmt.Errorf("%w: %s", ErrOutsideStore, name)
	}
	return SecureDelete(target)
}

// ClearPermanent securely removes every saved file for the user and
// returns how many files were deleted.
func (s *Store) ClearPermanent(userID int64) (int, error) {
	entries, err := s.ListPermanent(userID)
	if err != nil {
		return 0, err
	}
	dir := filepath.Join(s.storageDir, strconv.FormatInt(userID, 10))
	deleted := 0
	var firstErr error
	for _, entry := range entries {
		if err := SecureDelete(filepath.Join(dir, entry.Name)); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		deleted++
	}
	if firstErr == nil {
		_ = fileutil.RemoveDirIfEmpty(dir)
	}
	return deleted, firstErr
}

// SweepTemp securely removes scratch files older than maxAge and prunes
// user directories the sweep left empty. It returns the number of files
// removed.
func (s *Store) SweepTemp(maxAge time.Duration) (int, error) {
	cutoff := time.Now().Add(-maxAge)
	removed := 0
	var firstErr error

	walkErr := filepath.WalkDir(s.tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := SecureDelete(path); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return nil
		}
		removed++
		return nil
	})
	if walkErr != nil && firstErr == nil {
		firstErr = walkErr
	}

	s.pruneEmptyTempDirs()
	return removed, firstErr
}

func (s *Store) pruneEmptyTempDirs() {
	entries, err := os.ReadDir(s.tempDir)
	if err != nil {
		return
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		userDir := filepath.Join(s.tempDir, entry.Name())
		subEntries, err := os.ReadDir(userDir)
		if err != nil {
			continue
		}
		for _, sub := range subEntries {
			if sub.IsDir() {
				_ = fileutil.RemoveDirIfEmpty(filepath.Join(userDir, sub.Name()))
			}
		}
		_ = fileutil.RemoveDirIfEmpty(userDir)
	}
}
