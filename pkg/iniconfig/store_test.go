package iniconfig_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/secureconfig/pkg/iniconfig"
	"github.com/dmitrymomot/secureconfig/pkg/keeper"
	"github.com/dmitrymomot/secureconfig/pkg/logger"
	"github.com/dmitrymomot/secureconfig/pkg/scrub"
	"github.com/dmitrymomot/secureconfig/pkg/source"
)

// Throwaway keys, never use them for real data.
const (
	testKey      = "sFbO-GbipIFIpj64S2_AZBIPBvX80Yozszw7PR2dVFg="
	testKeyWrong = "UCPUOddzvewGWaJxW1ZlPKftdlS9SCUjwYUYwov0bT0="
)

const testINI = `[database]
username=some_user
password=lame_password
hostname=some_hostname
port=3306
`

func newKeeper(t *testing.T, key string) *keeper.Keeper {
	t.Helper()
	k, err := keeper.FromString(key)
	require.NoError(t, err)
	return k
}

func newStore(t *testing.T, doc string, opts ...iniconfig.Option) *iniconfig.Store {
	t.Helper()
	s := iniconfig.New(opts...)
	require.NoError(t, s.Read(strings.NewReader(doc)))
	return s
}

func get(t *testing.T, s *iniconfig.Store, section, key string) string {
	t.Helper()
	v, err := s.Get(section, key)
	require.NoError(t, err)
	defer v.Burn()
	return strings.Clone(v.Reveal())
}

func TestStore_GetPlainValue(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)))

	assert.Equal(t, "some_user", get(t, s, "database", "username"))
	assert.Equal(t, "3306", get(t, s, "database", "port"))

	raw, err := s.RawGet("database", "username")
	require.NoError(t, err)
	assert.Equal(t, "some_user", raw)
}

func TestStore_SetEncrypted(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	s := newStore(t, testINI, iniconfig.WithKeeper(k))

	require.NoError(t, s.Set("database", "password", "lame_password", true))

	raw, err := s.RawGet("database", "password")
	require.NoError(t, err)
	assert.NotEqual(t, "lame_password", raw)
	assert.True(t, strings.HasPrefix(raw, k.Sigil()))

	enc, err := s.IsEncrypted("database", "password")
	require.NoError(t, err)
	assert.True(t, enc)

	assert.Equal(t, "lame_password", get(t, s, "database", "password"))
}

func TestStore_WriteReadRoundTrip(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	s := newStore(t, testINI, iniconfig.WithKeeper(k))
	require.NoError(t, s.Set("database", "password", "lame_password", true))

	var buf bytes.Buffer
	require.NoError(t, s.Write(&buf))
	assert.NotContains(t, buf.String(), "lame_password")

	s2 := newStore(t, buf.String(), iniconfig.WithKeeper(k))
	assert.Equal(t, "lame_password", get(t, s2, "database", "password"))
	assert.Equal(t, "some_user", get(t, s2, "database", "username"))

	// Raw values survive the round trip unchanged.
	for _, key := range []string{"username", "password", "hostname", "port"} {
		want, err := s.RawGet("database", key)
		require.NoError(t, err)
		got, err := s2.RawGet("database", key)
		require.NoError(t, err)
		assert.Equal(t, want, got, key)
	}
}

func TestStore_WrongKeeper(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)))
	require.NoError(t, s.Set("database", "password", "lame_password", true))
	doc, err := s.Bytes()
	require.NoError(t, err)

	wrong := newStore(t, string(doc), iniconfig.WithKeeper(newKeeper(t, testKeyWrong)))

	_, err = wrong.Get("database", "password")
	require.Error(t, err)
	assert.ErrorIs(t, err, keeper.ErrInvalidKey)
	assert.NotErrorIs(t, err, keeper.ErrNotCiphertext)

	assert.Equal(t, "some_user", get(t, wrong, "database", "username"))
}

func TestStore_PassThrough(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)))
	require.NoError(t, s.Set("database", "password", "lame_password", true))
	ciphertext, err := s.RawGet("database", "password")
	require.NoError(t, err)
	doc, err := s.Bytes()
	require.NoError(t, err)

	plain := newStore(t, string(doc))
	assert.Nil(t, plain.Keeper())

	raw, err := plain.RawGet("database", "password")
	require.NoError(t, err)
	assert.Equal(t, ciphertext, raw)

	_, err = plain.Get("database", "password")
	assert.ErrorIs(t, err, keeper.ErrNoKeeper)

	err = plain.Set("database", "token", "secret", true)
	assert.ErrorIs(t, err, keeper.ErrNoKeeper)

	assert.Equal(t, "some_user", get(t, plain, "database", "username"))
	require.NoError(t, plain.Set("database", "username", "other_user", false))
	assert.Equal(t, "other_user", get(t, plain, "database", "username"))

	// Writing without a keeper keeps the ciphertext intact.
	out, err := plain.Bytes()
	require.NoError(t, err)
	back := newStore(t, string(out), iniconfig.WithKeeper(newKeeper(t, testKey)))
	assert.Equal(t, "lame_password", get(t, back, "database", "password"))
}

func TestStore_SetPlainReplacesEncrypted(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)))
	require.NoError(t, s.Set("database", "password", "lame_password", true))
	require.NoError(t, s.Set("database", "password", "plain_now", false))

	raw, err := s.RawGet("database", "password")
	require.NoError(t, err)
	assert.Equal(t, "plain_now", raw)

	enc, err := s.IsEncrypted("database", "password")
	require.NoError(t, err)
	assert.False(t, enc)

	require.NoError(t, s.Set("database", "username", "some_user", true))
	enc, err = s.IsEncrypted("database", "username")
	require.NoError(t, err)
	assert.True(t, enc)
}

func TestStore_SigilCollision(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	s := iniconfig.New(iniconfig.WithKeeper(k))
	value := k.Sigil() + "looks encrypted"

	err := s.Set("app", "motto", value, false)
	assert.ErrorIs(t, err, keeper.ErrSigilCollision)
	assert.False(t, s.HasKey("app", "motto"))

	require.NoError(t, s.RawSet("app", "motto", value))
	raw, err := s.RawGet("app", "motto")
	require.NoError(t, err)
	assert.Equal(t, value, raw)

	_, err = s.Get("app", "motto")
	assert.ErrorIs(t, err, keeper.ErrMalformedCiphertext)
}

func TestStore_SpecialCharacters(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	s := iniconfig.New(iniconfig.WithKeeper(k))

	values := map[string]string{
		"hash":      "pa#ss;word",
		"equals":    "a=b",
		"unicode":   "пароль 世界",
		"empty":     "",
		"backslash": `C:\path\`,
		"quoted":    `"quoted"`,
		"single":    `'single'`,
	}
	for key, v := range values {
		require.NoError(t, s.Set("plain", key, v, false))
		require.NoError(t, s.Set("secret", key, v, true))
	}

	doc, err := s.Bytes()
	require.NoError(t, err)
	back := newStore(t, string(doc), iniconfig.WithKeeper(k))

	for key, v := range values {
		assert.Equal(t, v, get(t, back, "plain", key), key)
		assert.Equal(t, v, get(t, back, "secret", key), key)
	}
}

func TestStore_UnrepresentableValues(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	s := iniconfig.New(iniconfig.WithKeeper(k))

	for _, v := range []string{`"""x`, " padded ", "trailing "} {
		assert.ErrorIs(t, s.Set("plain", "key", v, false), iniconfig.ErrUnrepresentable, v)
		assert.ErrorIs(t, s.RawSet("plain", "key", v), iniconfig.ErrUnrepresentable, v)

		// Encrypted, the same value is just an opaque token.
		require.NoError(t, s.Set("secret", "key", v, true), v)
		doc, err := s.Bytes()
		require.NoError(t, err)
		back := newStore(t, string(doc), iniconfig.WithKeeper(k))
		assert.Equal(t, v, get(t, back, "secret", "key"), v)
	}

	assert.False(t, s.HasSection("plain"))
}

func TestStore_WritePreservesQuotedLines(t *testing.T) {
	t.Parallel()

	const doc = "[paths]\n" +
		"double = \"quoted\"\n" +
		"single = 'quoted'\n" +
		"windows = C:\\dir\\\n" +
		"after = next\n"

	s := newStore(t, doc)

	out, err := s.Bytes()
	require.NoError(t, err)
	back := newStore(t, string(out))

	for key, want := range map[string]string{
		"double":  `"quoted"`,
		"single":  `'quoted'`,
		"windows": `C:\dir\`,
		"after":   "next",
	} {
		raw, err := back.RawGet("paths", key)
		require.NoError(t, err, key)
		assert.Equal(t, want, raw, key)
	}
}

func TestStore_NotFound(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI)

	_, err := s.Get("missing", "username")
	assert.ErrorIs(t, err, iniconfig.ErrSectionNotFound)

	_, err = s.Get("database", "missing")
	assert.ErrorIs(t, err, iniconfig.ErrKeyNotFound)

	_, err = s.RawGet("database", "missing")
	assert.ErrorIs(t, err, iniconfig.ErrKeyNotFound)

	_, err = s.IsEncrypted("missing", "key")
	assert.ErrorIs(t, err, iniconfig.ErrSectionNotFound)

	_, err = s.Keys("missing")
	assert.ErrorIs(t, err, iniconfig.ErrSectionNotFound)

	assert.ErrorIs(t, s.DeleteKey("database", "missing"), iniconfig.ErrKeyNotFound)
	assert.ErrorIs(t, s.DeleteSection("missing"), iniconfig.ErrSectionNotFound)
}

func TestStore_Structure(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI+"\n[cache]\nttl=60\n")

	assert.Equal(t, []string{"database", "cache"}, s.Sections())
	assert.True(t, s.HasSection("cache"))
	assert.False(t, s.HasSection("missing"))

	keys, err := s.Keys("database")
	require.NoError(t, err)
	assert.Equal(t, []string{"username", "password", "hostname", "port"}, keys)

	assert.True(t, s.HasKey("database", "port"))
	require.NoError(t, s.DeleteKey("database", "port"))
	assert.False(t, s.HasKey("database", "port"))

	require.NoError(t, s.DeleteSection("cache"))
	assert.Equal(t, []string{"database"}, s.Sections())

	require.NoError(t, s.Set("", "debug", "true", false))
	assert.Equal(t, []string{iniconfig.DefaultSection, "database"}, s.Sections())
	assert.Equal(t, "true", get(t, s, iniconfig.DefaultSection, "debug"))

	assert.ErrorIs(t, s.Set("database", "", "x", false), iniconfig.ErrEmptyKey)
}

func TestStore_ReadMerges(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI)
	require.NoError(t, s.Read(strings.NewReader("[database]\nport=5432\n[cache]\nttl=60\n")))

	assert.Equal(t, "5432", get(t, s, "database", "port"))
	assert.Equal(t, "some_user", get(t, s, "database", "username"))
	assert.Equal(t, "60", get(t, s, "cache", "ttl"))
}

func TestStore_ReadOnly(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	s := newStore(t, testINI, iniconfig.WithKeeper(k), iniconfig.WithReadOnly())

	assert.ErrorIs(t, s.Set("database", "password", "x", true), iniconfig.ErrReadOnly)
	assert.ErrorIs(t, s.RawSet("database", "password", "x"), iniconfig.ErrReadOnly)
	assert.ErrorIs(t, s.DeleteKey("database", "password"), iniconfig.ErrReadOnly)
	assert.ErrorIs(t, s.DeleteSection("database"), iniconfig.ErrReadOnly)
	_, err := s.Rekey(newKeeper(t, testKeyWrong))
	assert.ErrorIs(t, err, iniconfig.ErrReadOnly)

	assert.Equal(t, "lame_password", get(t, s, "database", "password"))
	_, err = s.Bytes()
	assert.NoError(t, err)
}

func TestStore_Use(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)))
	require.NoError(t, s.Set("database", "password", "lame_password", true))

	var kept *scrub.String
	err := s.Use("database", "password", func(p *scrub.String) error {
		kept = p
		assert.Equal(t, "lame_password", p.Reveal())
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, kept)
	assert.True(t, kept.Burned())
	assert.Equal(t, strings.Repeat("\x00", len("lame_password")), kept.Reveal())

	boom := errors.New("boom")
	err = s.Use("database", "password", func(*scrub.String) error { return boom })
	assert.ErrorIs(t, err, boom)

	err = s.Use("database", "missing", func(*scrub.String) error { return nil })
	assert.ErrorIs(t, err, iniconfig.ErrKeyNotFound)
}

func TestStore_Rekey(t *testing.T) {
	t.Parallel()

	oldKeeper := newKeeper(t, testKey)
	newKeeperValue := newKeeper(t, testKeyWrong)

	s := newStore(t, testINI, iniconfig.WithKeeper(oldKeeper))
	require.NoError(t, s.Set("database", "password", "lame_password", true))
	require.NoError(t, s.Set("api", "token", "t0k3n", true))

	n, err := s.Rekey(newKeeperValue)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Same(t, newKeeperValue, s.Keeper())

	assert.Equal(t, "lame_password", get(t, s, "database", "password"))
	assert.Equal(t, "t0k3n", get(t, s, "api", "token"))
	assert.Equal(t, "some_user", get(t, s, "database", "username"))

	raw, err := s.RawGet("database", "password")
	require.NoError(t, err)
	_, err = oldKeeper.Decrypt(raw)
	assert.ErrorIs(t, err, keeper.ErrInvalidKey)

	_, err = s.Rekey(nil)
	assert.ErrorIs(t, err, keeper.ErrNoKeeper)
}

func TestStore_RekeyFailureLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	s := newStore(t, testINI, iniconfig.WithKeeper(k))
	require.NoError(t, s.Set("database", "password", "lame_password", true))
	require.NoError(t, s.RawSet("database", "broken", k.Sigil()+"garbage"))

	before, err := s.Bytes()
	require.NoError(t, err)

	_, err = s.Rekey(newKeeper(t, testKeyWrong))
	assert.ErrorIs(t, err, keeper.ErrMalformedCiphertext)

	after, err := s.Bytes()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Same(t, k, s.Keeper())
}

func TestStore_FilesAndSources(t *testing.T) {
	t.Parallel()

	k := newKeeper(t, testKey)
	dir := t.TempDir()
	ctx := context.Background()

	s := newStore(t, testINI, iniconfig.WithKeeper(k))
	require.NoError(t, s.Set("database", "password", "lame_password", true))

	path := filepath.Join(dir, "config.ini")
	require.NoError(t, s.WriteFile(path))

	fromFile := iniconfig.New(iniconfig.WithKeeper(k))
	require.NoError(t, fromFile.ReadFile(path))
	assert.Equal(t, "lame_password", get(t, fromFile, "database", "password"))

	src := source.NewFile(filepath.Join(dir, "saved.ini"))
	require.NoError(t, fromFile.Save(ctx, src))

	loaded := iniconfig.New(iniconfig.WithKeeper(k))
	require.NoError(t, loaded.Load(ctx, src))
	assert.Equal(t, "lame_password", get(t, loaded, "database", "password"))

	err := iniconfig.New().Load(ctx, source.NewFile(filepath.Join(dir, "missing.ini")))
	assert.ErrorIs(t, err, source.ErrNotFound)

	err = iniconfig.New().ReadFile(filepath.Join(dir, "missing.ini"))
	assert.Error(t, err)
}

func TestStore_NeverLogsValues(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := logger.New(logger.WithOutput(&logs), logger.WithLevelName("debug"), logger.WithJSONFormatter())

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)), iniconfig.WithLogger(log))
	require.NoError(t, s.Set("database", "password", "lame_password", true))
	require.NoError(t, s.Set("database", "username", "some_user", false))
	_ = get(t, s, "database", "password")
	_, err := s.Rekey(newKeeper(t, testKeyWrong))
	require.NoError(t, err)

	wrong := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)), iniconfig.WithLogger(log))
	require.NoError(t, wrong.RawSet("database", "password", mustRaw(t, s, "database", "password")))
	_, err = wrong.Get("database", "password")
	require.Error(t, err)

	out := logs.String()
	assert.NotEmpty(t, out)
	assert.Contains(t, out, `"key":"password"`)
	assert.NotContains(t, out, "lame_password")
	assert.NotContains(t, out, "some_user")
}

func TestStore_NilLogger(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)), iniconfig.WithLogger(nil))
	wrong := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKeyWrong)), iniconfig.WithLogger(nil))

	assert.NotPanics(t, func() {
		require.NoError(t, s.Set("database", "password", "lame_password", true))
		assert.Equal(t, "lame_password", get(t, s, "database", "password"))

		require.NoError(t, wrong.RawSet("database", "password", mustRaw(t, s, "database", "password")))
		_, err := wrong.Get("database", "password")
		assert.ErrorIs(t, err, keeper.ErrInvalidKey)
	})
}

func mustRaw(t *testing.T, s *iniconfig.Store, section, key string) string {
	t.Helper()
	raw, err := s.RawGet(section, key)
	require.NoError(t, err)
	return raw
}

func TestStore_Concurrent(t *testing.T) {
	t.Parallel()

	s := newStore(t, testINI, iniconfig.WithKeeper(newKeeper(t, testKey)))
	require.NoError(t, s.Set("database", "password", "lame_password", true))

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if i%2 == 0 {
				_ = s.Set("database", "hostname", "host", false)
				return
			}
			v, err := s.Get("database", "password")
			if assert.NoError(t, err) {
				assert.Equal(t, "lame_password", v.Reveal())
				v.Burn()
			}
		}()
	}
	wg.Wait()
}
