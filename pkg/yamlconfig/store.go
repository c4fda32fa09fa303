package yamlconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/dmitrymomot/secureconfig/pkg/keeper"
	"github.com/dmitrymomot/secureconfig/pkg/logger"
	"github.com/dmitrymomot/secureconfig/pkg/scrub"
	"github.com/dmitrymomot/secureconfig/pkg/source"
)

// Store is a YAML document whose string values may be individually
// encrypted. Values are addressed by dotted paths; sequence items by their
// index. Key order, comments and anchors of loaded documents are preserved.
// A Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	doc      *yaml.Node
	keeper   *keeper.Keeper
	log      *slog.Logger
	readOnly bool
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{newMapping()}}
}

// New creates a store holding an empty mapping.
func New(opts ...Option) *Store {
	s := &Store{
		doc: emptyDocument(),
		log: logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("yamlconfig"))
	return s
}

func (s *Store) root() *yaml.Node {
	return s.doc.Content[0]
}

// Keeper returns the store's keeper, nil in pass-through mode.
func (s *Store) Keeper() *keeper.Keeper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keeper
}

// Read parses a YAML mapping and merges it into the store.
// Nothing is decrypted.
func (s *Store) Read(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return s.parse(data)
}

// ReadFile reads the YAML document at path.
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
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return errors.Join(ErrParse, err)
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty input.
		return nil
	}
	if doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("%w: top level must be a mapping", ErrParse)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.root().Content) == 0 {
		s.doc = &doc
		return nil
	}
	merge(s.root(), doc.Content[0])
	return nil
}

// Write serializes the raw document to w.
func (s *Store) Write(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(s.doc); err != nil {
		return err
	}
	return enc.Close()
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
	n, err := lookup(s.root(), parts)
	if err != nil {
		return "", false, err
	}
	text, isString, err := leafText(n)
	if err != nil {
		return "", false, fmt.Errorf("%w: %q", err, path)
	}
	return text, isString, nil
}

// RawGet returns the stored scalar without decrypting it.
func (s *Store) RawGet(path string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	text, _, err := s.leaf(path)
	return text, err
}

// Get returns the scalar at path, decrypting ciphertext. The caller owns
// the result and must Burn it, or use Use instead.
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

// IsEncrypted reports whether the scalar at path is ciphertext.
func (s *Store) IsEncrypted(path string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	raw, isString, err := s.leaf(path)
	if err != nil {
		return false, err
	}
	return isString && s.keeper.IsCiphertext(raw), nil
}

// Set stores value as a string scalar at path, creating missing mappings.
// With encrypt set the value is encrypted first. Comments attached to an
// existing scalar are kept.
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
	if err := setLeaf(s.root(), parts, raw); err != nil {
		return err
	}

	s.log.Debug("value set", logger.Path(path), logger.Encrypted(encrypt))
	return nil
}

// RawSet stores raw verbatim as a string scalar at path.
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
	return setLeaf(s.root(), parts, raw)
}

// Has reports whether path exists.
func (s *Store) Has(path string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	parts, err := splitPath(path)
	if err != nil {
		return false
	}
	_, err = lookup(s.root(), parts)
	return err == nil
}

// Keys returns the keys of the mapping at path in document order. An empty
// path refers to the top-level mapping.
func (s *Store) Keys(path string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if path == "" {
		return keys(s.root()), nil
	}
	parts, err := splitPath(path)
	if err != nil {
		return nil, err
	}
	n, err := lookup(s.root(), parts)
	if err != nil {
		return nil, err
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: %q", ErrNotMapping, path)
	}
	return keys(n), nil
}

// Delete removes the mapping entry at path.
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
	return remove(s.root(), parts)
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

	resealed := make(map[*yaml.Node]string)
	err := walkStrings(s.root(), "", func(path string, leaf *yaml.Node) error {
		if !s.keeper.IsCiphertext(leaf.Value) {
			return nil
		}
		v, err := s.keeper.Reseal(leaf.Value, next)
		if err != nil {
			s.log.Warn("failed to re-encrypt value", logger.Path(path), logger.Error(err))
			return err
		}
		resealed[leaf] = v
		return nil
	})
	if err != nil {
		return 0, err
	}

	for n, v := range resealed {
		n.Value = v
	}
	s.log.Info("config re-encrypted", logger.KeyID(next.KeyID()), logger.Count(len(resealed)))
	s.keeper = next
	return len(resealed), nil
}
