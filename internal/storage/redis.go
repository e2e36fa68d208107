package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "script:"
	seedExt   = ".txt"
)

// RedisStorage keeps published scripts in Redis and reads seed scripts from
// DataDir/scripts on the filesystem.
type RedisStorage struct {
	client  *redis.Client
	logger  *slog.Logger
	dataDir string
	ttl     time.Duration
}

// Ensure RedisStorage implements Storage interface
var _ Storage = (*RedisStorage)(nil)

// NewRedisStorage creates a store on an existing client. A zero ttl keeps
// published scripts until deleted.
func NewRedisStorage(client *redis.Client, dataDir string, ttl time.Duration, logger *slog.Logger) *RedisStorage {
	if dataDir == "" {
		dataDir = "./data"
	}
	return &RedisStorage{
		client:  client,
		logger:  logger,
		dataDir: dataDir,
		ttl:     ttl,
	}
}

func (r *RedisStorage) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (r *RedisStorage) Close() error {
	if err := r.client.Close(); err != nil {
		r.logger.Error("Failed to close Redis connection", "error", err)
		return err
	}
	r.logger.Info("Redis connection closed")
	return nil
}

func (r *RedisStorage) ListScripts(ctx context.Context) ([]ScriptInfo, error) {
	found := make(map[string]bool)

	iter := r.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		found[strings.TrimPrefix(iter.Val(), keyPrefix)] = true
	}
	if err := iter.Err(); err != nil {
		r.logger.Error("Failed to scan scripts", "error", err)
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	seeds, err := r.seedNames()
	if err != nil {
		return nil, err
	}
	for _, name := range seeds {
		if _, ok := found[name]; !ok {
			found[name] = false
		}
	}

	scripts := make([]ScriptInfo, 0, len(found))
	for name, published := range found {
		scripts = append(scripts, ScriptInfo{Name: name, Published: published})
	}
	sort.Slice(scripts, func(i, j int) bool { return scripts[i].Name < scripts[j].Name })
	return scripts, nil
}

func (r *RedisStorage) GetScript(ctx context.Context, name string) (string, error) {
	if !ValidName(name) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}

	text, err := r.client.Get(ctx, keyPrefix+name).Result()
	if err == nil {
		return text, nil
	}
	if !errors.Is(err, redis.Nil) {
		r.logger.Error("Failed to load script", "name", name, "error", err)
		return "", fmt.Errorf("failed to load script: %w", err)
	}

	path := filepath.Join(r.scriptsDir(), name+seedExt)
	r.logger.Debug("Loading seed script", "name", name, "path", path)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrScriptNotFound, name)
		}
		return "", fmt.Errorf("failed to read script file: %w", err)
	}
	return string(data), nil
}

func (r *RedisStorage) SaveScript(ctx context.Context, name, text string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if err := r.client.Set(ctx, keyPrefix+name, text, r.ttl).Err(); err != nil {
		r.logger.Error("Failed to save script", "name", name, "error", err)
		return fmt.Errorf("failed to save script: %w", err)
	}
	r.logger.Debug("Script saved", "name", name, "bytes", len(text))
	return nil
}

func (r *RedisStorage) DeleteScript(ctx context.Context, name string) error {
	if !ValidName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	n, err := r.client.Del(ctx, keyPrefix+name).Result()
	if err != nil {
		r.logger.Error("Failed to delete script", "name", name, "error", err)
		return fmt.Errorf("failed to delete script: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrScriptNotFound, name)
	}
	return nil
}

func (r *RedisStorage) scriptsDir() string {
	return filepath.Join(r.dataDir, "scripts")
}

func (r *RedisStorage) seedNames() ([]string, error) {
	entries, err := os.ReadDir(r.scriptsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list seed scripts: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != seedExt {
			continue
		}
		name := strings.TrimSuffix(e.Name(), seedExt)
		if !ValidName(name) {
			r.logger.Warn("Skipping seed script with invalid name", "file", e.Name())
			continue
		}
		names = append(names, name)
	}
	return names, nil
}
