package jsonconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/goccy/go-json"

	"github.com/dmitrymomot/secureconfig/pkg/keeper"
	"github.com/dmitrymomot/secureconfig/pkg/logger"
	"github.com/dmitrymomot/secureconfig/pkg/scrub"
	"github.com/dmitrymomot/secureconfig/pkg/source"
)

// Store is a JSON document whose string values may be individually
// encrypted. Values are addressed by dotted paths such as
// "database.password"; array elements by their index ("servers.0.token").
//
// Numbers are kept verbatim. Object keys are written in sorted order.
// A Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	doc      map[string]any
	keeper   *keeper.Keeper
	log      *slog.Logger
	readOnly bool
}

// New creates a store holding an empty object.
func New(opts ...Option) *Store {
	s := &Store{
		doc: make(map[string]any),
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("jsonconfig"))
	return s
}

// Keeper returns the store's keeper, nil in pass-through mode.
func (s *Store) Keeper() *keeper.Keeper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keeper
}

// Read parses a JSON object and deep-merges it into the store.
// Nothing is decrypted.
func (s *Store) Read(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return s.parse(data)
}

// ReadFile reads the JSON document at path.
func (s *Store) ReadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return s.parse(data)
}

// Load reads the document from src.
func (s *Store) Load(ctx context.Context, src source.Source) error {
	data, err := src.Read(ctx)
	if err != nil {
		return err
	}
	if err := s.parse(data); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "config loaded", logger.Source(fmt.Sprint(src)))
	return nil
}

func (s *Store) parse(data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return errors.Join(ErrParse, err)
	}
	var extra json.RawMessage
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected data after the top-level object", ErrParse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	merge(s.doc, doc)
	return nil
}

// Write serializes the raw document to w as indented JSON.
func (s *Store) Write(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(s.doc)
}

// Bytes returns the serialized raw document.
func (s *Store) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes the document to path atomically with owner-only
// permissions.
func (s *Store) WriteFile(path string) error {
	return s.Save(context.Background(), source.NewFile(path))
}

// Save writes the document to dst.
func (s *Store) Save(ctx context.Context, dst source.Source) error {
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	if err := dst.Write(ctx, data); err != nil {
		return err
	}
	s.log.DebugContext(ctx, "config saved", logger.Source(fmt.Sprint(dst)))
	return nil
}

func (s *Store) leaf(path string) (string, bool, error) {
	parts, err := splitPath(path)
	if err != nil {
		return "", false, err
	}
	v, err := lookup(s.doc, parts)
	if err != nil {
		return "", false, err
	}
	text, isString, err := leafText(v)
	if err != nil {
		return "", false, fmt.Errorf("%w: %q", err, path)
	}
	return text, isString, nil
}

// RawGet returns the stored value without decrypting it. Non-string
// scalars are returned in their JSON text form.
func (s *Store) RawGet(path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, _, err := s.leaf(path)
	return text, err
}

// Get returns the value at path, decrypting ciphertext. The caller owns the
// result and must Burn it, or use Use instead.
func (s *Store) Get(path string) (*scrub.String, error) {
	s.mu.RLock()
	raw, isString, err := s.leaf(path)
	kp := s.keeper
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	if !isString {
		return scrub.FromString(raw), nil
	}

	v, err := kp.Open(raw)
	if err != nil {
		s.log.Warn("failed to decrypt value",
			logger.Path(path),
			logger.KeyID(kp.KeyID()),
			logger.Error(err),
		)
		return nil, err
	}
	return v, nil
}

// Use passes the value at path to fn and burns it when fn returns or panics.
func (s *Store) Use(path string, fn func(*scrub.String) error) error {
	v, err := s.Get(path)
	if err != nil {
		return err
	}
	return scrub.Use(v, fn)
}

// IsEncrypted reports whether the value at path is ciphertext.
func (s *Store) IsEncrypted(path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, isString, err := s.leaf(path)
	if err != nil {
		return false, err
	}
	return isString && s.keeper.IsCiphertext(raw), nil
}

// Set stores value as a JSON string at path, creating missing objects. With
// encrypt set the value is encrypted first. Objects and arrays cannot be
// replaced by a value (ErrNotLeaf).
func (s *Store) Set(path, value string, encrypt bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ErrReadOnly
	}
	parts, err := splitPath(path)
	if err != nil {
		return err
	}

	raw, err := s.keeper.Seal(value, encrypt)
	if err != nil {
		return err
	}
	if err := setLeaf(s.doc, parts, raw); err != nil {
		return err
	}

	s.log.Debug("value set", logger.Path(path), logger.Encrypted(encrypt))
	return nil
}

// RawSet stores raw verbatim as a JSON string at path.
func (s *Store) RawSet(path, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ErrReadOnly
	}
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	return setLeaf(s.doc, parts, raw)
}

// Has reports whether path exists.
func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts, err := splitPath(path)
	if err != nil {
		return false
	}
	_, err = lookup(s.doc, parts)
	return err == nil
}

// Keys returns the sorted member names of the object at path. An empty path
// refers to the root object.
func (s *Store) Keys(path string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if path == "" {
		return sortedKeys(s.doc), nil
	}
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	v, err := lookup(s.doc, parts)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotObject, path)
	}
	return sortedKeys(obj), nil
}

// Delete removes the object member at path.
func (s *Store) Delete(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ErrReadOnly
	}
	parts, err := splitPath(path)
	if err != nil {
		return err
	}
	if _, err := lookup(s.doc, parts); err != nil {
		return err
	}

	container := any(s.doc)
	if len(parts) > 1 {
		if container, err = lookup(s.doc, parts[:len(parts)-1]); err != nil {
			return err
		}
	}
	obj, ok := container.(map[string]any)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotObject, strings.Join(parts[:len(parts)-1], pathSeparator))
	}
	delete(obj, parts[len(parts)-1])
	return nil
}

// Rekey re-encrypts every encrypted string under next and makes next the
// store's keeper. On error nothing changes. It returns the number of
// re-encrypted values.
func (s *Store) Rekey(next *keeper.Keeper) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return 0, ErrReadOnly
	}
	if next == nil {
		return 0, keeper.ErrNoKeeper
	}

	var apply []func()
	err := walkStrings(s.doc, "", func(path, raw string, set func(string)) error {
		if !s.keeper.IsCiphertext(raw) {
			return nil
		}
		v, err := s.keeper.Reseal(raw, next)
		if err != nil {
			s.log.Warn("failed to re-encrypt value", logger.Path(path), logger.Error(err))
			return err
		}
		apply = append(apply, func() { set(v) })
		return nil
	})
	if err != nil {
		return 0, err
	}

	for _, fn := range apply {
		fn()
	}
	s.log.Info("config re-encrypted", logger.KeyID(next.KeyID()), logger.Count(len(apply)))
	s.keeper = next
	return len(apply), nil
}
