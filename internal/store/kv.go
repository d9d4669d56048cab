package store

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// KV is the synchronous scalar key/value layer for flags and
// "last active id" pointers.
//
// KV never surfaces errors to callers: on a storage failure it logs
// the condition, keeps serving from memory, and returns the absent
// value on reads. This mirrors the record-free fast path the rest of
// the system expects - a pointer that fails to persist costs one
// resume, never a crash.
type KV struct {
	mu     sync.Mutex
	path   string
	values map[string]string
	logger *slog.Logger
}

// OpenKV loads the key/value file at path, or starts empty if it is
// absent or unreadable. OpenKV never fails; an unwritable path yields
// a working memory-only KV.
func OpenKV(path string, logger *slog.Logger) *KV {
	if logger == nil {
		logger = slog.Default()
	}
	kv := &KV{path: path, values: make(map[string]string), logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("kv load failed, starting empty", "path", path, "error", err)
		}
		return kv
	}
	if err := json.Unmarshal(data, &kv.values); err != nil {
		logger.Warn("kv file corrupt, starting empty", "path", path, "error", err)
		kv.values = make(map[string]string)
	}
	return kv
}

// GetString returns the value under key and whether it was present.
func (kv *KV) GetString(key string) (string, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.values[key]
	return v, ok
}

// SetString stores value under key and persists best-effort.
func (kv *KV) SetString(key, value string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.values[key] = value
	kv.flushLocked()
}

// GetBool parses the value under key; absent or unparseable values
// read as false.
func (kv *KV) GetBool(key string) bool {
	v, ok := kv.GetString(key)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false
	}
	return b
}

// SetBool formats and stores a boolean flag under key.
func (kv *KV) SetBool(key string, value bool) {
	kv.SetString(key, strconv.FormatBool(value))
}

// Remove deletes key and persists best-effort. Removing an absent key
// is a no-op.
func (kv *KV) Remove(key string) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if _, ok := kv.values[key]; !ok {
		return
	}
	delete(kv.values, key)
	kv.flushLocked()
}

// flushLocked writes the map to disk via rename for atomicity.
// Failures are logged, never returned - memory stays authoritative.
func (kv *KV) flushLocked() {
	data, err := json.MarshalIndent(kv.values, "", "  ")
	if err != nil {
		kv.logger.Warn("kv encode failed", "error", err)
		return
	}
	if dir := filepath.Dir(kv.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			kv.logger.Warn("kv flush failed", "path", kv.path, "error", err)
			return
		}
	}
	tmp := kv.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		kv.logger.Warn("kv flush failed", "path", kv.path, "error", err)
		return
	}
	if err := os.Rename(tmp, kv.path); err != nil {
		kv.logger.Warn("kv flush failed", "path", kv.path, "error", err)
	}
}
