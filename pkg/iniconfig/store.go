package iniconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"gopkg.in/ini.v1"

	"github.com/dmitrymomot/secureconfig/pkg/keeper"
	"github.com/dmitrymomot/secureconfig/pkg/logger"
	"github.com/dmitrymomot/secureconfig/pkg/scrub"
	"github.com/dmitrymomot/secureconfig/pkg/source"
)

// DefaultSection is the name of the section holding keys that appear before
// the first section header. An empty section name refers to it as well.
const DefaultSection = "DEFAULT"

var loadOptions = ini.LoadOptions{
	// Values such as passwords may contain '#' or ';', end with a
	// backslash or be wrapped in quotes.
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
}

// Store is an INI document whose values may be individually encrypted.
//
// Values are kept in their raw form: ciphertext stays ciphertext until Get
// or Use decrypts it on demand, and Write serializes exactly what is stored.
// A Store is safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	file     *ini.File
	keeper   *keeper.Keeper
	log      *slog.Logger
	readOnly bool
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		file: ini.Empty(loadOptions),
		log:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(logger.Component("iniconfig"))
	return s
}

// Keeper returns the store's keeper, nil in pass-through mode.
func (s *Store) Keeper() *keeper.Keeper {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keeper
}

// Read parses an INI document and merges it into the store. Keys already
// present are overwritten. Nothing is decrypted.
func (s *Store) Read(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return s.parse(data)
}

// ReadFile reads the INI document at path.
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
	parsed, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return errors.Join(ErrParse, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isEmpty() {
		// Adopt the parsed file as is so comments survive a round trip.
		s.file = parsed
		return nil
	}

	for _, sec := range parsed.Sections() {
		dst := s.file.Section(sec.Name())
		for _, k := range sec.Keys() {
			dst.Key(k.Name()).SetValue(k.Value())
		}
	}
	return nil
}

func (s *Store) isEmpty() bool {
	for _, sec := range s.file.Sections() {
		if sec.Name() != DefaultSection || len(sec.Keys()) > 0 {
			return false
		}
	}
	return true
}

// Write serializes the raw document to w. Encrypted values are written as
// stored; no encryption happens here.
func (s *Store) Write(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.file.WriteTo(w)
	return err
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

func (s *Store) lookup(section, key string) (*ini.Key, error) {
	sec, err := s.file.GetSection(section)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, section)
	}
	k, err := sec.GetKey(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %q in section %q", ErrKeyNotFound, key, section)
	}
	return k, nil
}

// RawGet returns the stored value without decrypting it.
func (s *Store) RawGet(section, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := s.lookup(section, key)
	if err != nil {
		return "", err
	}
	return k.Value(), nil
}

// Get returns the value of key in section. Ciphertext is decrypted; plain
// values are returned unchanged. The caller owns the result and must Burn
// it, or use Use instead.
//
// A store without a keeper fails with keeper.ErrNoKeeper on encrypted
// values; RawGet returns them verbatim. A value encrypted under another key
// fails with keeper.ErrInvalidKey.
func (s *Store) Get(section, key string) (*scrub.String, error) {
	s.mu.RLock()
	k, err := s.lookup(section, key)
	if err != nil {
		s.mu.RUnlock()
		return nil, err
	}
	raw, kp := k.Value(), s.keeper
	s.mu.RUnlock()

	v, err := kp.Open(raw)
	if err != nil {
		s.log.Warn("failed to decrypt value",
			logger.Section(section),
			logger.Key(key),
			logger.KeyID(kp.KeyID()),
			logger.Error(err),
		)
		return nil, err
	}
	return v, nil
}

// Use passes the value of key to fn and burns it when fn returns or panics.
func (s *Store) Use(section, key string, fn func(*scrub.String) error) error {
	v, err := s.Get(section, key)
	if err != nil {
		return err
	}
	return scrub.Use(v, fn)
}

// IsEncrypted reports whether the stored value carries the ciphertext sigil.
func (s *Store) IsEncrypted(section, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := s.lookup(section, key)
	if err != nil {
		return false, err
	}
	return s.keeper.IsCiphertext(k.Value()), nil
}

// Set stores value under key, creating the section if needed. With encrypt
// set the value is encrypted first and a keeper is required
// (keeper.ErrNoKeeper). Without it the value is stored verbatim, replacing
// whatever was there; plaintext starting with the sigil is refused with
// keeper.ErrSigilCollision. A plain value the INI format cannot write back
// unchanged, such as one with surrounding spaces, is refused
// with ErrUnrepresentable.
func (s *Store) Set(section, key, value string, encrypt bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(key); err != nil {
		return err
	}

	raw, err := s.keeper.Seal(value, encrypt)
	if err != nil {
		return err
	}
	if err := checkRepresentable(section, key, raw); err != nil {
		return err
	}
	s.setRaw(section, key, raw)

	s.log.Debug("value set",
		logger.Section(section),
		logger.Key(key),
		logger.Encrypted(encrypt),
	)
	return nil
}

// RawSet stores raw verbatim with no encryption or sigil check.
func (s *Store) RawSet(section, key, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkWritable(key); err != nil {
		return err
	}
	if err := checkRepresentable(section, key, raw); err != nil {
		return err
	}
	s.setRaw(section, key, raw)
	return nil
}

// checkRepresentable writes the entry into a scratch document and parses it
// back with the store's load options. Anything that does not come back
// byte-for-byte would be corrupted by the next Write.
func checkRepresentable(section, key, raw string) error {
	scratch := ini.Empty(loadOptions)
	scratch.Section(section).Key(key).SetValue(raw)

	var buf bytes.Buffer
	if _, err := scratch.WriteTo(&buf); err != nil {
		return errors.Join(ErrUnrepresentable, err)
	}
	parsed, err := ini.LoadSources(loadOptions, buf.Bytes())
	if err != nil {
		return errors.Join(ErrUnrepresentable, err)
	}
	k, err := parsed.Section(section).GetKey(key)
	if err != nil || k.Value() != raw {
		return ErrUnrepresentable
	}
	return nil
}

func (s *Store) checkWritable(key string) error {
	if s.readOnly {
		return ErrReadOnly
	}
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}

func (s *Store) setRaw(section, key, raw string) {
	s.file.Section(section).Key(key).SetValue(raw)
}

// Sections returns section names in document order. The default section is
// included only when it holds keys.
func (s *Store) Sections() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.file.Sections()))
	for _, sec := range s.file.Sections() {
		if sec.Name() == DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		names = append(names, sec.Name())
	}
	return names
}

// HasSection reports whether section exists.
func (s *Store) HasSection(section string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.file.GetSection(section)
	return err == nil
}

// Keys returns the key names of section in document order.
func (s *Store) Keys(section string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sec, err := s.file.GetSection(section)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSectionNotFound, section)
	}
	return sec.KeyStrings(), nil
}

// HasKey reports whether key exists in section.
func (s *Store) HasKey(section, key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, err := s.lookup(section, key)
	return err == nil
}

// DeleteKey removes key from section.
func (s *Store) DeleteKey(section, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ErrReadOnly
	}
	if _, err := s.lookup(section, key); err != nil {
		return err
	}
	s.file.Section(section).DeleteKey(key)
	return nil
}

// DeleteSection removes section and all its keys.
func (s *Store) DeleteSection(section string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.readOnly {
		return ErrReadOnly
	}
	if _, err := s.file.GetSection(section); err != nil {
		return fmt.Errorf("%w: %q", ErrSectionNotFound, section)
	}
	s.file.DeleteSection(section)
	return nil
}

// Rekey re-encrypts every encrypted value under next and makes next the
// store's keeper. Plain values are left alone. Either every value is
// re-encrypted or, on error, nothing changes. It returns the number of
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

	resealed := make(map[*ini.Key]string)
	for _, sec := range s.file.Sections() {
		for _, k := range sec.Keys() {
			raw := k.Value()
			if !s.keeper.IsCiphertext(raw) {
				continue
			}
			v, err := s.keeper.Reseal(raw, next)
			if err != nil {
				s.log.Warn("failed to re-encrypt value",
					logger.Section(sec.Name()),
					logger.Key(k.Name()),
					logger.Error(err),
				)
				return 0, err
			}
			resealed[k] = v
		}
	}

	for k, v := range resealed {
		k.SetValue(v)
	}
	s.log.Info("config re-encrypted",
		logger.KeyID(next.KeyID()),
		logger.Count(len(resealed)),
	)
	s.keeper = next
	return len(resealed), nil
}
