// Package settings provides the persisted key-value stores used for user
// settings and cached window state.
//
// A Store is a JSON object on disk. Values are kept as raw JSON so callers
// decode into whatever type they own. Listeners subscribe per key and are
// called after a write has been persisted, outside the store lock, in the
// order they were registered.
package settings

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// Listener is called with the key that changed and its new raw value.
// A deleted key is reported with a nil value.
type Listener func(key string, value json.RawMessage)

// CorruptError is returned by Open when the file exists but is not valid JSON.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("settings file %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

type subscription struct {
	id int
	fn Listener
}

// Store is a JSON-file backed key-value store with change notification.
type Store struct {
	path     string
	defaults map[string]json.RawMessage

	mu        sync.Mutex
	values    map[string]json.RawMessage
	listeners map[string][]subscription
	nextID    int
}

// Open loads the store at path. A missing file yields an empty store.
// defaults supplies values returned by Get for keys that were never set.
func Open(path string, defaults map[string]any) (*Store, error) {
	encoded := make(map[string]json.RawMessage, len(defaults))
	for k, v := range defaults {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode default for %q: %w", k, err)
		}
		encoded[k] = raw
	}

	values, err := load(path)
	if err != nil {
		return nil, err
	}

	return &Store{
		path:      path,
		defaults:  encoded,
		values:    values,
		listeners: make(map[string][]subscription),
	}, nil
}

func load(path string) (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return make(map[string]json.RawMessage), nil
		}
		return nil, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return make(map[string]json.RawMessage), nil
	}

	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	if values == nil {
		values = make(map[string]json.RawMessage)
	}
	for k, raw := range values {
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err == nil {
			values[k] = buf.Bytes()
		}
	}
	return values, nil
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Raw returns the stored (or default) JSON for key.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rawLocked(key)
}

func (s *Store) rawLocked(key string) (json.RawMessage, bool) {
	if raw, ok := s.values[key]; ok {
		return raw, true
	}
	raw, ok := s.defaults[key]
	return raw, ok
}

// Get decodes key into v. It reports false when the key has neither a stored
// nor a default value, leaving v untouched.
func (s *Store) Get(key string, v any) (bool, error) {
	raw, ok := s.Raw(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("failed to decode setting %q: %w", key, err)
	}
	return true, nil
}

// Bool returns the boolean value of key, or false if unset or not a bool.
func (s *Store) Bool(key string) bool {
	var b bool
	if _, err := s.Get(key, &b); err != nil {
		return false
	}
	return b
}

// Strings returns the string slice value of key, or nil.
func (s *Store) Strings(key string) []string {
	var out []string
	if _, err := s.Get(key, &out); err != nil {
		return nil
	}
	return out
}

// Set stores v under key and persists the store.
func (s *Store) Set(key string, v any) error {
	return s.SetMany(map[string]any{key: v})
}

// SetMany stores several keys with a single write. Listeners fire for each
// key whose value actually changed.
func (s *Store) SetMany(values map[string]any) error {
	encoded := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		raw, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode setting %q: %w", k, err)
		}
		encoded[k] = raw
	}

	s.mu.Lock()
	var changed []string
	for k, raw := range encoded {
		if cur, ok := s.values[k]; ok && bytes.Equal(cur, raw) {
			continue
		}
		changed = append(changed, k)
	}
	if len(changed) == 0 {
		s.mu.Unlock()
		return nil
	}

	next := s.cloneLocked()
	for _, k := range changed {
		next[k] = encoded[k]
	}
	if err := save(s.path, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = next
	sort.Strings(changed)
	pending := s.collectLocked(changed)
	s.mu.Unlock()

	notify(pending)
	return nil
}

// Delete removes key, restoring its default if one exists.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	if _, ok := s.values[key]; !ok {
		s.mu.Unlock()
		return nil
	}
	next := s.cloneLocked()
	delete(next, key)
	if err := save(s.path, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.values = next
	pending := s.collectLocked([]string{key})
	s.mu.Unlock()

	notify(pending)
	return nil
}

// Keys returns every stored or defaulted key, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(s.values)+len(s.defaults))
	for k := range s.defaults {
		seen[k] = struct{}{}
	}
	for k := range s.values {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Snapshot returns a copy of every effective value.
func (s *Store) Snapshot() map[string]json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]json.RawMessage, len(s.values)+len(s.defaults))
	for k, v := range s.defaults {
		out[k] = v
	}
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

// OnChange subscribes fn to changes of key. The returned func unsubscribes.
func (s *Store) OnChange(key string, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.listeners[key] = append(s.listeners[key], subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.listeners[key]
		for i, sub := range subs {
			if sub.id == id {
				s.listeners[key] = append(subs[:i:i], subs[i+1:]...)
				return
			}
		}
	}
}

type pendingCall struct {
	key   string
	value json.RawMessage
	fn    Listener
}

func (s *Store) collectLocked(keys []string) []pendingCall {
	var calls []pendingCall
	for _, k := range keys {
		value := s.values[k]
		for _, sub := range s.listeners[k] {
			calls = append(calls, pendingCall{key: k, value: value, fn: sub.fn})
		}
	}
	return calls
}

func notify(calls []pendingCall) {
	for _, c := range calls {
		c.fn(c.key, c.value)
	}
}

func (s *Store) cloneLocked() map[string]json.RawMessage {
	next := make(map[string]json.RawMessage, len(s.values)+1)
	for k, v := range s.values {
		next[k] = v
	}
	return next
}

func save(path string, values map[string]json.RawMessage) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace settings %s: %w", path, err)
	}
	return nil
}
