// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package fileio

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// BackupSuffix is appended to a path to name its backup copy
const BackupSuffix = ".bak"

var ErrNoBackup = errors.Base("no backup")

// 💾 FileSystem loads and writes campaign files on the local disk. Relative
// paths are resolved against the base directory.
type FileSystem struct {
	baseDir string
	backup  bool
}

// Option configures a FileSystem
type Option func(*FileSystem)

// WithBackup keeps a .bak copy of every file before it is overwritten
func WithBackup(enabled bool) Option {
	return func(f *FileSystem) { f.backup = enabled }
}

// 🏭 New creates a file system rooted at baseDir
func New(baseDir string, opts ...Option) *FileSystem {
	f := &FileSystem{baseDir: filepath.Clean(baseDir)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// 🔒 abs returns the absolute path for a given relative path
func (f *FileSystem) abs(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(f.baseDir, path)
}

// Load reads the whole file
func (f *FileSystem) Load(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", errors.WithStack(err)
	}
	content, err := os.ReadFile(f.abs(path))
	if err != nil {
		return "", errors.Errorf("reading file: %w", err)
	}
	return string(content), nil
}

// Write replaces the file content atomically, keeping its permissions
func (f *FileSystem) Write(ctx context.Context, path string, content string) error {
	if f.backup {
		if err := f.BackupFile(ctx, path); err != nil {
			return err
		}
	}
	return f.WriteFileAtomic(ctx, path, []byte(content))
}

// WriteFileAtomic writes to a temp file in the same directory and renames it
// over the target
func (f *FileSystem) WriteFileAtomic(ctx context.Context, path string, content []byte) error {
	absPath := f.abs(path)

	mode := fs.FileMode(0644)
	if info, err := os.Stat(absPath); err == nil {
		mode = info.Mode().Perm()
	} else if !os.IsNotExist(err) {
		return errors.Errorf("checking file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(absPath), "."+filepath.Base(absPath)+".*.tmp")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		cleanup()
		return errors.Errorf("setting temp file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tmpPath, absPath); err != nil {
		os.Remove(tmpPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Int("bytes", len(content)).Msg("wrote file")
	return nil
}

// HasBackup reports whether path has a .bak copy
func (f *FileSystem) HasBackup(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(f.abs(path) + BackupSuffix)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Errorf("checking backup: %w", err)
}

// BackupFile copies path to path.bak. Missing files are not an error.
func (f *FileSystem) BackupFile(ctx context.Context, path string) error {
	absPath := f.abs(path)

	source, err := os.Open(absPath)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return errors.Errorf("opening file: %w", err)
	}
	defer source.Close()

	info, err := source.Stat()
	if err != nil {
		return errors.Errorf("reading file mode: %w", err)
	}
	destination, err := os.OpenFile(absPath+BackupSuffix, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return errors.Errorf("creating backup: %w", err)
	}
	if err := copyAndClose(destination, source); err != nil {
		return errors.Errorf("creating backup: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("backed up file")
	return nil
}

// RestoreFile writes path.bak back over path atomically and removes the
// backup. The backup is kept when the write fails.
func (f *FileSystem) RestoreFile(ctx context.Context, path string) error {
	backupPath := f.abs(path) + BackupSuffix

	content, err := os.ReadFile(backupPath)
	if os.IsNotExist(err) {
		return errors.Errorf("%w: %s", ErrNoBackup, path+BackupSuffix)
	} else if err != nil {
		return errors.Errorf("reading backup: %w", err)
	}

	if err := f.WriteFileAtomic(ctx, path, content); err != nil {
		return errors.Errorf("restoring from backup: %w", err)
	}
	if err := os.Remove(backupPath); err != nil {
		return errors.Errorf("removing backup: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("restored file")
	return nil
}

// copyAndClose copies src into dst and closes dst. A failed close means the
// copy may be incomplete, so its error is returned.
func copyAndClose(dst io.WriteCloser, src io.Reader) error {
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return errors.Errorf("copying file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return errors.Errorf("closing file: %w", err)
	}
	return nil
}
