package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/mcoot/pcarrot/internal/dependencies/clock"
)

// headerSize is the length of the expiry header at the start of each file
const headerSize = 8

// FileSystemCache stores one file per key under a directory. Each file
// starts with the expiry as big-endian unix seconds (0 = never) followed by
// the JSON value.
type FileSystemCache struct {
	dir   string
	clock clock.Clock
}

// NewFileSystem creates the cache directory if needed
func NewFileSystem(dir string, clk clock.Clock) (*FileSystemCache, error) {
	if dir == "" {
		return nil, errors.New("filesystem cache requires a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &FileSystemCache{dir: dir, clock: clk}, nil
}

func (c *FileSystemCache) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:]))
}

func (c *FileSystemCache) Get(_ context.Context, key string, dst any) (bool, error) {
	path := c.path(key)

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if len(raw) < headerSize {
		_ = os.Remove(path)
		return false, nil
	}

	expiry := int64(binary.BigEndian.Uint64(raw[:headerSize]))
	if expiry != 0 && clock.Expired(c.clock, time.Unix(expiry, 0)) {
		_ = os.Remove(path)
		return false, nil
	}

	if err := json.Unmarshal(raw[headerSize:], dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *FileSystemCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var expiry int64
	if ttl > 0 {
		expiry = c.clock.Now().Add(ttl).Unix()
	}

	buf := make([]byte, headerSize, headerSize+len(data))
	binary.BigEndian.PutUint64(buf, uint64(expiry))
	buf = append(buf, data...)

	// Write to a temp file and rename so readers never see partial content
	tmp, err := os.CreateTemp(c.dir, ".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(buf); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(key))
}

func (c *FileSystemCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
