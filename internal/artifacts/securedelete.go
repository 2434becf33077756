package artifacts

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

const (
	overwritePasses    = 3
	overwriteChunkSize = 1 << 20
)

// SecureDelete overwrites the file with random data before unlinking it.
// A missing file counts as success, which makes the call idempotent. When
// overwriting fails (read-only filesystem, device errors) the file is
// still unlinked plainly so the artifact never outlives the request.
func SecureDelete(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.Mode().IsRegular() && info.Size() > 0 {
		if err := overwriteFile(path, info.Size()); err != nil {
			return plainUnlink(path)
		}
	}
	return plainUnlink(path)
}

func overwriteFile(path string, size int64) error {
	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer file.Close()

	chunk := make([]byte, overwriteChunkSize)
	for pass := 0; pass < overwritePasses; pass++ {
		if _, err := file.Seek(0, 0); err != nil {
			return err
		}
		remaining := size
		for remaining > 0 {
			n := int64(len(chunk))
			if remaining < n {
				n = remaining
			}
			if _, err := rand.Read(chunk[:n]); err != nil {
				return err
			}
			if _, err := file.Write(chunk[:n]); err != nil {
				return err
			}
			remaining -= n
		}
		if err := file.Sync(); err != nil {
			return err
		}
	}
	return nil
}

func plainUnlink(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}
