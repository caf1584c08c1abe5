package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNoDocument is returned by Load when nothing is stored under the key.
	ErrNoDocument = errors.New("no document stored")
	// ErrInvalidKey is returned for keys that cannot be used as file names.
	ErrInvalidKey = errors.New("invalid key")
)

// KV is a string-keyed string store.
type KV interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
}

// Save encodes doc and stores it under key.
func Save(kv KV, key string, doc Document) error {
	s, err := Encode(doc)
	if err != nil {
		return err
	}
	if err := kv.Set(key, s); err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}
	return nil
}

// Load reads and decodes the document stored under key.
func Load(kv KV, key string) (Document, error) {
	s, ok, err := kv.Get(key)
	if err != nil {
		return Document{}, fmt.Errorf("read %q: %w", key, err)
	}
	if !ok {
		return Document{}, fmt.Errorf("%w under %q", ErrNoDocument, key)
	}
	return Decode(s)
}

// MemoryKV is an in-memory KV, safe for concurrent use.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemoryKV returns an empty store.
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{m: make(map[string]string)}
}

func (kv *MemoryKV) Get(key string) (string, bool, error) {
	kv.mu.RLock()
	defer kv.mu.RUnlock()
	v, ok := kv.m[key]
	return v, ok, nil
}

func (kv *MemoryKV) Set(key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.m[key] = value
	return nil
}

// DirKV stores each key as a file in a directory.
type DirKV struct {
	Dir string
}

// NewDirKV creates dir if needed.
func NewDirKV(dir string) (*DirKV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &DirKV{Dir: dir}, nil
}

func (kv *DirKV) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." || strings.ContainsAny(key, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(kv.Dir, key), nil
}

func (kv *DirKV) Get(key string) (string, bool, error) {
	p, err := kv.path(key)
	if err != nil {
		return "", false, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set replaces the file atomically.
func (kv *DirKV) Set(key, value string) error {
	p, err := kv.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(kv.Dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), p)
}
