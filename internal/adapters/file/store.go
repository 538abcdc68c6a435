package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sync"

	"github.com/yurixander/minimal/pkg/domain"
)

var validNamespace = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Store implements ports.Store using the local filesystem.
// Each namespace is a JSON object stored in <BasePath>/<namespace>.json.
type Store struct {
	BasePath string

	mu    sync.Mutex
	cache map[string]map[string]json.RawMessage
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".minimal/storage".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".minimal", "storage")
	}
	return &Store{
		BasePath: basePath,
		cache:    make(map[string]map[string]json.RawMessage),
	}
}

func (s *Store) path(namespace string) (string, error) {
	if !validNamespace.MatchString(namespace) || namespace == "." || namespace == ".." {
		return "", fmt.Errorf("invalid namespace %q", namespace)
	}
	return filepath.Join(s.BasePath, namespace+".json"), nil
}

// load returns the namespace contents. Callers must hold s.mu.
func (s *Store) load(namespace string) (map[string]json.RawMessage, error) {
	if ns, ok := s.cache[namespace]; ok {
		return ns, nil
	}
	path, err := s.path(namespace)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]json.RawMessage{}, nil
		}
		return nil, fmt.Errorf("failed to read namespace file: %w", err)
	}

	ns := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &ns); err != nil {
		return nil, fmt.Errorf("failed to unmarshal namespace %s: %w", namespace, err)
	}
	s.cache[namespace] = ns
	return ns, nil
}

// Get retrieves the value of namespace/key.
func (s *Store) Get(ctx context.Context, namespace, key string) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, err := s.load(namespace)
	if err != nil {
		return nil, err
	}
	value, ok := ns[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return slices.Clone(value), nil
}

// Set stores value and rewrites the namespace file atomically.
func (s *Store) Set(ctx context.Context, namespace, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return fmt.Errorf("invalid JSON for %s/%s", namespace, key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ns, err := s.load(namespace)
	if err != nil {
		return err
	}
	next := make(map[string]json.RawMessage, len(ns)+1)
	for k, v := range ns {
		next[k] = v
	}
	next[key] = slices.Clone(value)
	return s.save(namespace, next)
}

// Delete removes namespace/key. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, err := s.load(namespace)
	if err != nil {
		return err
	}
	if _, ok := ns[key]; !ok {
		return nil
	}
	next := make(map[string]json.RawMessage, len(ns))
	for k, v := range ns {
		if k != key {
			next[k] = v
		}
	}
	return s.save(namespace, next)
}

// Keys lists the keys of a namespace, sorted.
func (s *Store) Keys(ctx context.Context, namespace string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, err := s.load(namespace)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(ns))
	for k := range ns {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys, nil
}

// Close is a no-op; every write is already durable.
func (s *Store) Close() error { return nil }

// save writes ns to a temporary file, syncs it, and renames it over the
// destination. The cache is only updated after the rename succeeds.
// Callers must hold s.mu.
func (s *Store) save(namespace string, ns map[string]json.RawMessage) error {
	destPath, err := s.path(namespace)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure storage directory: %w", err)
	}

	data, err := json.MarshalIndent(ns, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal namespace: %w", err)
	}

	// same directory keeps the rename on one filesystem
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+namespace+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Rename replaces destPath in one step, so readers never see it missing.
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	s.cache[namespace] = ns
	return nil
}
