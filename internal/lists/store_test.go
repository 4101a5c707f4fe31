package lists

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lian/codecopy/internal/clipboard"
	"github.com/lian/codecopy/internal/format"
	"github.com/lian/codecopy/internal/logger"
	"github.com/lian/codecopy/internal/models"
	"github.com/lian/codecopy/internal/storage"
)

type fixture struct {
	store *Store
	disk  *storage.Memory
	clip  *clipboard.Memory
	log   *logger.Memory
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	clock := int64(1_700_000_000_000)
	orig := models.NowMillis
	models.NowMillis = func() int64 {
		clock++
		return clock
	}
	t.Cleanup(func() { models.NowMillis = orig })

	f := &fixture{
		disk: storage.NewMemory(),
		clip: &clipboard.Memory{},
		log:  logger.NewMemory(),
	}
	f.store = f.open(opts)
	return f
}

func (f *fixture) open(opts Options) *Store {
	s := Open(f.disk, format.Default(), f.clip, opts, f.log)
	n := 0
	s.NewID = func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
	return s
}

func entry(rel, content string) models.Entry {
	return models.NewEntry(rel, content)
}

func TestCreate(t *testing.T) {
	f := newFixture(t, Options{})

	l, err := f.store.Create("  Auth flow  ")
	require.NoError(t, err)
	assert.Equal(t, "Auth flow", l.Name)
	assert.NotEmpty(t, l.ID)
	assert.Empty(t, l.Entries)
	assert.Equal(t, l.CreatedAt, l.UpdatedAt)
	assert.Equal(t, 1, f.disk.Saves)
}

func TestCreateRejectsInvalidNames(t *testing.T) {
	f := newFixture(t, Options{})
	_, err := f.store.Create("Auth")
	require.NoError(t, err)

	for _, name := range []string{"", "   ", "Auth", " Auth "} {
		_, err := f.store.Create(name)
		assert.Error(t, err, "name %q", name)
		var verr *models.ValidationError
		assert.True(t, errors.As(err, &verr))
	}
	assert.Equal(t, 1, f.store.Len())
	assert.Len(t, f.log.Lines("warn"), 4)
}

func TestCreateCapsListCount(t *testing.T) {
	f := newFixture(t, Options{MaxLists: 2})
	_, err := f.store.Create("a")
	require.NoError(t, err)
	_, err = f.store.Create("b")
	require.NoError(t, err)

	_, err = f.store.Create("c")
	assert.ErrorIs(t, err, models.ErrTooManyLists)
	assert.Equal(t, 2, f.store.Len())
}

func TestRename(t *testing.T) {
	f := newFixture(t, Options{})
	a, _ := f.store.Create("a")
	b, _ := f.store.Create("b")

	require.NoError(t, f.store.Rename(a.ID, " a "), "renaming to own name is allowed")
	assert.ErrorIs(t, f.store.Rename(a.ID, "b"), models.ErrDuplicateName)
	assert.ErrorIs(t, f.store.Rename(a.ID, "  "), models.ErrInvalidName)
	assert.ErrorIs(t, f.store.Rename("missing", "x"), models.ErrListNotFound)

	require.NoError(t, f.store.Rename(b.ID, "renamed"))
	got, ok := f.store.Get(b.ID)
	require.True(t, ok)
	assert.Equal(t, "renamed", got.Name)
	assert.Greater(t, got.UpdatedAt, b.UpdatedAt)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, Options{})
	a, _ := f.store.Create("a")
	b, _ := f.store.Create("b")

	require.NoError(t, f.store.Delete(a.ID))
	assert.ErrorIs(t, f.store.Delete(a.ID), models.ErrListNotFound)

	all := f.store.GetAll()
	require.Len(t, all, 1)
	assert.Equal(t, b.ID, all[0].ID)
}

func TestAddEntryIsIdempotentPerPath(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("a")

	require.NoError(t, f.store.AddEntry(l.ID, entry("src/a.ts", "one")))
	err := f.store.AddEntry(l.ID, entry("src/a.ts", "two"))
	assert.ErrorIs(t, err, models.ErrDuplicateEntry)

	got, _ := f.store.Get(l.ID)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "one", got.Entries[0].Content)
}

func TestAddEntryRejections(t *testing.T) {
	f := newFixture(t, Options{MaxEntriesPerList: 2})
	l, _ := f.store.Create("a")

	assert.ErrorIs(t, f.store.AddEntry("missing", entry("x", "x")), models.ErrListNotFound)
	assert.ErrorIs(t, f.store.AddEntry(l.ID, entry("", "x")), models.ErrEmptyPath)

	require.NoError(t, f.store.AddEntry(l.ID, entry("a", "a")))
	require.NoError(t, f.store.AddEntry(l.ID, entry("b", "b")))
	assert.ErrorIs(t, f.store.AddEntry(l.ID, entry("c", "c")), models.ErrListFull)
}

func TestAddEntryUpdatesTimestamp(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("a")
	require.NoError(t, f.store.AddEntry(l.ID, entry("a", "a")))

	got, _ := f.store.Get(l.ID)
	assert.Greater(t, got.UpdatedAt, l.UpdatedAt)
	assert.Equal(t, l.CreatedAt, got.CreatedAt)
}

func TestRemoveEntry(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("a")
	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, f.store.AddEntry(l.ID, entry(p, p)))
	}

	require.NoError(t, f.store.RemoveEntry(l.ID, 1))
	assert.ErrorIs(t, f.store.RemoveEntry(l.ID, 2), models.ErrIndexOutOfRange)
	assert.ErrorIs(t, f.store.RemoveEntry(l.ID, -1), models.ErrIndexOutOfRange)

	got, _ := f.store.Get(l.ID)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "a", got.Entries[0].RelativePath)
	assert.Equal(t, "c", got.Entries[1].RelativePath)
}

func TestGetAllReturnsCopies(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("a")
	require.NoError(t, f.store.AddEntry(l.ID, entry("a", "a")))

	all := f.store.GetAll()
	all[0].Name = "mutated"
	all[0].Entries[0].Content = "mutated"

	got, _ := f.store.Get(l.ID)
	assert.Equal(t, "a", got.Name)
	assert.Equal(t, "a", got.Entries[0].Content)
}

func TestGetAllKeepsCreationOrder(t *testing.T) {
	f := newFixture(t, Options{})
	for _, n := range []string{"first", "second", "third"} {
		_, err := f.store.Create(n)
		require.NoError(t, err)
	}
	all := f.store.GetAll()
	require.Len(t, all, 3)
	assert.Equal(t, "first", all[0].Name)
	assert.Equal(t, "third", all[2].Name)
}

func TestFind(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("Auth flow")

	got, ok := f.store.Find(l.ID)
	require.True(t, ok)
	assert.Equal(t, l.ID, got.ID)

	got, ok = f.store.Find(" Auth flow ")
	require.True(t, ok)
	assert.Equal(t, l.ID, got.ID)

	_, ok = f.store.Find("nope")
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	f := newFixture(t, Options{})
	_, _ = f.store.Create("a")
	_, _ = f.store.Create("b")

	require.NoError(t, f.store.Clear())
	assert.Zero(t, f.store.Len())

	reopened := f.open(Options{})
	assert.Zero(t, reopened.Len())
}

func TestPersistenceRoundTrip(t *testing.T) {
	f := newFixture(t, Options{})
	a, _ := f.store.Create("a")
	b, _ := f.store.Create("b")
	require.NoError(t, f.store.AddEntry(a.ID, entry("src/a.ts", "A")))
	require.NoError(t, f.store.AddEntry(a.ID, entry("src/b.ts", "B")))

	want := f.store.GetAll()

	reopened := f.open(Options{})
	got := reopened.GetAll()
	assert.Equal(t, want, got)
	assert.Equal(t, a.ID, got[0].ID)
	assert.Equal(t, b.ID, got[1].ID)
	assert.NotNil(t, got[1].Entries)
}

func TestPersistedShape(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("a")
	require.NoError(t, f.store.AddEntry(l.ID, models.Entry{RelativePath: "x", Content: "y", Timestamp: 5}))

	data, err := f.disk.Load(StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, fmt.Sprintf(
		`[{"id":%q,"name":"a","entries":[{"relativePath":"x","content":"y","timestamp":5}],"createdAt":%d,"updatedAt":%d}]`,
		l.ID, l.CreatedAt, l.CreatedAt+1,
	), string(data))
}

func TestSaveFailureKeepsInMemoryChange(t *testing.T) {
	f := newFixture(t, Options{})
	f.disk.SaveErr = errors.New("quota exceeded")

	notified := 0
	f.store.Subscribe(func() { notified++ })

	l, err := f.store.Create("a")
	require.NoError(t, err)
	require.NoError(t, f.store.AddEntry(l.ID, entry("a", "a")))

	got, ok := f.store.Get(l.ID)
	require.True(t, ok)
	assert.Len(t, got.Entries, 1)
	assert.Equal(t, 2, notified)
	assert.True(t, f.log.Contains("error", "quota exceeded"))
}

func TestLoadFailureStartsEmpty(t *testing.T) {
	f := newFixture(t, Options{})
	f.disk.LoadErr = errors.New("corrupt")

	s := f.open(Options{})
	assert.Zero(t, s.Len())
	assert.True(t, f.log.Contains("error", "corrupt"))
}

func TestLoadMalformedBlob(t *testing.T) {
	f := newFixture(t, Options{})
	require.NoError(t, f.disk.Save(StorageKey, []byte("{not json")))

	s := f.open(Options{})
	assert.Zero(t, s.Len())
	assert.True(t, f.log.Contains("error", "decode lists"))
}

func saveBlob(t *testing.T, f *fixture, lists []models.List) {
	t.Helper()
	data, err := EncodeLists(lists)
	require.NoError(t, err)
	require.NoError(t, f.disk.Save(StorageKey, data))
}

func TestLoadEnforcesListCapAndUniqueNames(t *testing.T) {
	f := newFixture(t, Options{})
	saveBlob(t, f, []models.List{
		{ID: "1", Name: "a"},
		{ID: "2", Name: " b "},
		{ID: "3", Name: "a"},
		{ID: "4", Name: "  "},
		{ID: "5", Name: "c"},
		{ID: "6", Name: "d"},
	})

	s := f.open(Options{MaxLists: 3})
	require.Equal(t, 3, s.Len())
	got := s.GetAll()
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].Name, got[1].Name, got[2].Name})
	assert.True(t, f.log.Contains("warn", "Dropping stored list 3"))
	assert.True(t, f.log.Contains("warn", "Dropping stored list 4"))
	assert.True(t, f.log.Contains("warn", `"d": more than 3 lists`))
}

func TestLoadDropsDuplicateAndExcessEntries(t *testing.T) {
	f := newFixture(t, Options{})
	saveBlob(t, f, []models.List{{
		ID:   "1",
		Name: "a",
		Entries: []models.Entry{
			{RelativePath: "x.ts", Content: "first"},
			{RelativePath: "x.ts", Content: "second"},
			{RelativePath: "", Content: "orphan"},
			{RelativePath: "y.ts", Content: "y"},
			{RelativePath: "z.ts", Content: "z"},
		},
	}})

	s := f.open(Options{MaxEntriesPerList: 2})
	got, ok := s.Get("1")
	require.True(t, ok)
	require.Len(t, got.Entries, 2)
	assert.Equal(t, "first", got.Entries[0].Content)
	assert.Equal(t, "y.ts", got.Entries[1].RelativePath)
	assert.True(t, f.log.Contains("warn", "duplicate stored entry x.ts"))
	assert.True(t, f.log.Contains("warn", "without path"))
	assert.True(t, f.log.Contains("warn", "z.ts"))

	// The cleaned list accepts no more entries at the cap.
	assert.ErrorIs(t, s.AddEntry("1", entry("w.ts", "w")), models.ErrListFull)
}

func TestSubscribe(t *testing.T) {
	f := newFixture(t, Options{})

	var calls []string
	cancelA := f.store.Subscribe(func() { calls = append(calls, "a") })
	f.store.Subscribe(func() {
		// Subscribers observe the already-persisted state.
		data, _ := f.disk.Load(StorageKey)
		assert.NotEmpty(t, data)
		calls = append(calls, "b")
	})

	l, _ := f.store.Create("x")
	assert.Equal(t, []string{"a", "b"}, calls)

	cancelA()
	require.NoError(t, f.store.Rename(l.ID, "y"))
	assert.Equal(t, []string{"a", "b", "b"}, calls)
}

func TestRejectedMutationsDoNotNotify(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("x")
	saves := f.disk.Saves

	notified := 0
	f.store.Subscribe(func() { notified++ })

	_, _ = f.store.Create("")
	_ = f.store.Rename("missing", "y")
	_ = f.store.RemoveEntry(l.ID, 0)

	assert.Zero(t, notified)
	assert.Equal(t, saves, f.disk.Saves)
}

func TestCopyToClipboard(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("a")

	assert.ErrorIs(t, f.store.CopyToClipboard(l.ID), models.ErrEmptyList)
	assert.ErrorIs(t, f.store.CopyToClipboard("missing"), models.ErrListNotFound)
	assert.Zero(t, f.clip.Writes)

	require.NoError(t, f.store.AddEntry(l.ID, entry("a.ts", "A")))
	require.NoError(t, f.store.AddEntry(l.ID, entry("b.ts", "B")))
	require.NoError(t, f.store.CopyToClipboard(l.ID))

	assert.Equal(t, "a.ts\n```\nA\n```\n\nb.ts\n```\nB\n```", f.clip.Text)
}

func TestCopyToClipboardWithoutSink(t *testing.T) {
	f := newFixture(t, Options{})
	s := Open(f.disk, nil, nil, Options{}, f.log)
	s.NewID = func() string { return "id" }
	l, err := s.Create("a")
	require.NoError(t, err)
	require.NoError(t, s.AddEntry(l.ID, entry("a.ts", "A")))

	require.Error(t, s.CopyToClipboard(l.ID))
	assert.True(t, f.log.Contains("error", "no clipboard configured"))
}

func TestOpenAppliesDefaultCaps(t *testing.T) {
	f := newFixture(t, Options{})
	assert.Equal(t, DefaultOptions(), f.store.opts)
}

func TestConcurrentAddEntry(t *testing.T) {
	f := newFixture(t, Options{})
	l, _ := f.store.Create("a")

	var notified sync.WaitGroup
	notified.Add(20)
	f.store.Subscribe(func() {
		// Reading from a subscriber must not deadlock.
		_, _ = f.store.Get(l.ID)
		notified.Done()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, f.store.AddEntry(l.ID, models.Entry{RelativePath: fmt.Sprintf("f%02d", i), Content: "x"}))
		}(i)
	}
	wg.Wait()
	notified.Wait()

	got, _ := f.store.Get(l.ID)
	assert.Len(t, got.Entries, 20)
}
