package storage

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	b, err := Open("bolt", filepath.Join(dir, "nested", "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })

	f, err := Open("file", filepath.Join(dir, "files"))
	require.NoError(t, err)

	return map[string]Store{"bolt": b, "file": f, "memory": NewMemory()}
}

func TestLoadMissingKey(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			data, err := s.Load("copytool.lists")
			require.NoError(t, err)
			assert.Nil(t, data)
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Save("copytool.lists", []byte(`[{"id":"1"}]`)))
			require.NoError(t, s.Save("copytool.lists", []byte(`[{"id":"2"}]`)))

			data, err := s.Load("copytool.lists")
			require.NoError(t, err)
			assert.Equal(t, `[{"id":"2"}]`, string(data))
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	b, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, b.Save("k", []byte("v")))
	require.NoError(t, b.Close())

	b, err = OpenBolt(path)
	require.NoError(t, err)
	defer b.Close()
	data, err := b.Load("k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(data))
}

func TestFileKeyIsSanitised(t *testing.T) {
	dir := t.TempDir()
	f, err := OpenFile(dir)
	require.NoError(t, err)

	require.NoError(t, f.Save("../escape", []byte("x")))
	_, err = os.Stat(filepath.Join(dir, "__escape.json"))
	assert.NoError(t, err)
}

func TestAtomicWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blob.json")

	require.NoError(t, AtomicWrite(path, []byte("one")))
	require.NoError(t, AtomicWrite(path, []byte("two")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))
}

func TestLockAndWriteConcurrent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blob.json")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, LockAndWrite(path, []byte("payload")))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestMemoryInjectedFailures(t *testing.T) {
	m := NewMemory()
	m.SaveErr = errors.New("disk full")
	assert.Error(t, m.Save("k", []byte("v")))
	assert.Zero(t, m.Saves)

	m.SaveErr = nil
	m.LoadErr = errors.New("corrupt")
	_, err := m.Load("k")
	assert.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, err := Open("sqlite", t.TempDir())
	assert.Error(t, err)
}
