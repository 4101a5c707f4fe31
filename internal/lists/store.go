// Package lists keeps named, persisted collections of entries that can be
// copied to the clipboard again later.
//
// Every successful mutation saves the full snapshot through a storage.Store
// and then notifies subscribers synchronously. A failed save is logged and the
// in-memory state stays authoritative for the rest of the session.
package lists

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lian/codecopy/internal/clipboard"
	"github.com/lian/codecopy/internal/format"
	"github.com/lian/codecopy/internal/logger"
	"github.com/lian/codecopy/internal/models"
	"github.com/lian/codecopy/internal/storage"
)

// StorageKey is the blob key holding every list.
const StorageKey = "copytool.lists"

// Options are the store caps.
type Options struct {
	MaxLists          int
	MaxEntriesPerList int
}

// DefaultOptions allows 20 lists of 100 entries.
func DefaultOptions() Options {
	return Options{MaxLists: 20, MaxEntriesPerList: 100}
}

type subscriber struct {
	id int
	fn func()
}

// Store owns every List. Callers only ever receive copies. It is safe for
// concurrent use; subscribers run after the lock is released.
type Store struct {
	mu        sync.Mutex
	lists     map[string]*models.List
	order     []string // ids in creation (or load) order
	persist   storage.Store
	formatter *format.Formatter
	clip      clipboard.Writer
	opts      Options
	log       logger.Logger

	subs    []subscriber
	nextSub int

	// NewID generates list ids.
	NewID func() string
}

// Open creates a Store and loads the saved lists. A load failure is logged and
// yields an empty store.
func Open(persist storage.Store, formatter *format.Formatter, clip clipboard.Writer, opts Options, log logger.Logger) *Store {
	def := DefaultOptions()
	if opts.MaxLists <= 0 {
		opts.MaxLists = def.MaxLists
	}
	if opts.MaxEntriesPerList <= 0 {
		opts.MaxEntriesPerList = def.MaxEntriesPerList
	}
	if formatter == nil {
		formatter = format.Default()
	}

	s := &Store{
		lists:     make(map[string]*models.List),
		persist:   persist,
		formatter: formatter,
		clip:      clip,
		opts:      opts,
		log:       logger.OrDiscard(log),
		NewID:     uuid.NewString,
	}
	s.load()
	return s
}

func (s *Store) load() {
	data, err := s.persist.Load(StorageKey)
	if err != nil {
		s.log.Errorf("Error loading lists from storage: %v", &models.PersistenceError{Op: "load", Err: err})
		return
	}
	lists, err := DecodeLists(data)
	if err != nil {
		s.log.Errorf("Error loading lists from storage: %v", &models.PersistenceError{Op: "load", Err: err})
		return
	}
	for i := range lists {
		l := lists[i]
		if l.ID == "" {
			s.log.Warnf("Dropping stored list %q without id", l.Name)
			continue
		}
		if _, dup := s.lists[l.ID]; dup {
			s.log.Warnf("Dropping duplicate stored list id %s", l.ID)
			continue
		}
		if len(s.order) >= s.opts.MaxLists {
			s.log.Warnf("Dropping stored list %q: more than %d lists", l.Name, s.opts.MaxLists)
			continue
		}
		l.Name = strings.TrimSpace(l.Name)
		if l.Name == "" || s.nameTaken(l.Name) {
			s.log.Warnf("Dropping stored list %s: name %q is empty or already used", l.ID, l.Name)
			continue
		}
		l.Entries = s.loadEntries(l)
		s.lists[l.ID] = &l
		s.order = append(s.order, l.ID)
	}
	s.log.Debugf("Loaded %d lists from storage", len(s.order))
}

func (s *Store) nameTaken(name string) bool {
	for _, id := range s.order {
		if s.lists[id].Name == name {
			return true
		}
	}
	return false
}

// loadEntries drops stored entries without a path or with a repeated path and
// cuts the rest at the per-list cap.
func (s *Store) loadEntries(l models.List) []models.Entry {
	seen := make(map[string]bool, len(l.Entries))
	out := make([]models.Entry, 0, len(l.Entries))
	for _, e := range l.Entries {
		switch {
		case e.RelativePath == "":
			s.log.Warnf("Dropping stored entry without path in list %q", l.Name)
		case seen[e.RelativePath]:
			s.log.Warnf("Dropping duplicate stored entry %s in list %q", e.RelativePath, l.Name)
		case len(out) >= s.opts.MaxEntriesPerList:
			s.log.Warnf("Dropping stored entry %s in list %q: more than %d entries", e.RelativePath, l.Name, s.opts.MaxEntriesPerList)
		default:
			seen[e.RelativePath] = true
			out = append(out, e)
		}
	}
	return out
}

// EncodeLists serialises lists in order.
func EncodeLists(lists []models.List) ([]byte, error) {
	if lists == nil {
		lists = []models.List{}
	}
	return json.Marshal(lists)
}

// DecodeLists parses a blob written by EncodeLists. Empty input is no lists.
func DecodeLists(data []byte) ([]models.List, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var lists []models.List
	if err := json.Unmarshal(data, &lists); err != nil {
		return nil, fmt.Errorf("decode lists: %w", err)
	}
	for i := range lists {
		if lists[i].Entries == nil {
			lists[i].Entries = []models.Entry{}
		}
	}
	return lists, nil
}

// mutate runs fn under the lock. When fn succeeds the snapshot is saved before
// the lock is released and subscribers are notified after.
func (s *Store) mutate(fn func() error) error {
	s.mu.Lock()
	err := fn()
	if err == nil {
		s.saveLocked()
	}
	s.mu.Unlock()

	if err == nil {
		s.notify()
	}
	return err
}

// saveLocked persists the snapshot. Persistence failures are logged, never
// returned.
func (s *Store) saveLocked() {
	data, err := EncodeLists(s.snapshotLocked())
	if err == nil {
		err = s.persist.Save(StorageKey, data)
	}
	if err != nil {
		s.log.Errorf("Error saving lists to storage: %v", &models.PersistenceError{Op: "save", Err: err})
		return
	}
	s.log.Debugf("Saved %d lists to storage", len(s.order))
}

// reject logs a validation failure and returns it.
func (s *Store) reject(subject string, reason error) error {
	err := models.NewValidationError(subject, reason)
	s.log.Warnf("%v", err)
	return err
}

// Subscribe registers fn to run after every successful mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := append([]subscriber(nil), s.subs...)
	s.mu.Unlock()
	for _, sub := range subs {
		sub.fn()
	}
}

// checkName trims name and rejects empty names and names taken by a list
// other than self.
func (s *Store) checkName(name, self string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", s.reject(name, models.ErrInvalidName)
	}
	for _, id := range s.order {
		if id != self && s.lists[id].Name == trimmed {
			return "", s.reject(trimmed, models.ErrDuplicateName)
		}
	}
	return trimmed, nil
}

// Create adds an empty list named name.
func (s *Store) Create(name string) (models.List, error) {
	var created models.List
	err := s.mutate(func() error {
		trimmed, err := s.checkName(name, "")
		if err != nil {
			return err
		}
		if len(s.order) >= s.opts.MaxLists {
			return s.reject(trimmed, models.ErrTooManyLists)
		}

		now := models.NowMillis()
		l := &models.List{
			ID:        s.NewID(),
			Name:      trimmed,
			Entries:   []models.Entry{},
			CreatedAt: now,
			UpdatedAt: now,
		}
		s.lists[l.ID] = l
		s.order = append(s.order, l.ID)
		s.log.Infof("Created new list: %s (%s)", l.Name, l.ID)
		created = l.Clone()
		return nil
	})
	return created, err
}

// Rename changes a list's name under the same rules as Create.
func (s *Store) Rename(id, newName string) error {
	return s.mutate(func() error {
		l, ok := s.lists[id]
		if !ok {
			return s.reject(id, models.ErrListNotFound)
		}
		trimmed, err := s.checkName(newName, id)
		if err != nil {
			return err
		}
		old := l.Name
		l.Name = trimmed
		l.UpdatedAt = models.NowMillis()
		s.log.Infof("Renamed list %s to %s", old, trimmed)
		return nil
	})
}

// Delete removes a list.
func (s *Store) Delete(id string) error {
	return s.mutate(func() error {
		l, ok := s.lists[id]
		if !ok {
			return s.reject(id, models.ErrListNotFound)
		}
		delete(s.lists, id)
		for i, oid := range s.order {
			if oid == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
		s.log.Infof("Deleted list: %s (%s)", l.Name, id)
		return nil
	})
}

// Clear removes every list.
func (s *Store) Clear() error {
	return s.mutate(func() error {
		n := len(s.order)
		s.lists = make(map[string]*models.List)
		s.order = nil
		s.log.Infof("Cleared %d lists", n)
		return nil
	})
}

// AddEntry appends e to the list unless its path is already present or the
// list is full.
func (s *Store) AddEntry(id string, e models.Entry) error {
	return s.mutate(func() error {
		l, ok := s.lists[id]
		if !ok {
			return s.reject(id, models.ErrListNotFound)
		}
		if e.RelativePath == "" {
			return s.reject(l.Name, models.ErrEmptyPath)
		}
		if l.HasPath(e.RelativePath) {
			return s.reject(e.RelativePath, models.ErrDuplicateEntry)
		}
		if len(l.Entries) >= s.opts.MaxEntriesPerList {
			return s.reject(l.Name, models.ErrListFull)
		}
		l.Entries = append(l.Entries, e)
		l.UpdatedAt = models.NowMillis()
		s.log.Infof("Added entry to list %s: %s", l.Name, e.RelativePath)
		return nil
	})
}

// RemoveEntry deletes the entry at index.
func (s *Store) RemoveEntry(id string, index int) error {
	return s.mutate(func() error {
		l, ok := s.lists[id]
		if !ok {
			return s.reject(id, models.ErrListNotFound)
		}
		if index < 0 || index >= len(l.Entries) {
			return s.reject(fmt.Sprintf("%s[%d]", l.Name, index), models.ErrIndexOutOfRange)
		}
		removed := l.Entries[index]
		l.Entries = append(l.Entries[:index], l.Entries[index+1:]...)
		l.UpdatedAt = models.NowMillis()
		s.log.Infof("Removed entry %s at index %d from list %s", removed.RelativePath, index, l.Name)
		return nil
	})
}

// GetAll returns copies of every list in creation order.
func (s *Store) GetAll() []models.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []models.List {
	out := make([]models.List, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lists[id].Clone())
	}
	return out
}

// Get returns a copy of the list with id.
func (s *Store) Get(id string) (models.List, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(id)
}

func (s *Store) getLocked(id string) (models.List, bool) {
	l, ok := s.lists[id]
	if !ok {
		return models.List{}, false
	}
	return l.Clone(), true
}

// Find resolves ref as an id first, then as a trimmed name.
func (s *Store) Find(ref string) (models.List, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.getLocked(ref); ok {
		return l, true
	}
	name := strings.TrimSpace(ref)
	for _, id := range s.order {
		if s.lists[id].Name == name {
			return s.lists[id].Clone(), true
		}
	}
	return models.List{}, false
}

// Len returns the number of lists.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// CopyToClipboard renders the list's entries and writes them to the clipboard.
func (s *Store) CopyToClipboard(id string) error {
	l, ok := s.Get(id)
	if !ok {
		return s.reject(id, models.ErrListNotFound)
	}
	if len(l.Entries) == 0 {
		return s.reject(l.Name, models.ErrEmptyList)
	}
	if s.clip == nil {
		err := errors.New("no clipboard configured")
		s.log.Errorf("Error copying list %s: %v", l.Name, err)
		return err
	}
	text := s.formatter.Format(l.Entries)
	if err := s.clip.WriteText(text); err != nil {
		s.log.Errorf("Error copying list %s: %v", l.Name, err)
		return err
	}
	s.log.Infof("Copied list %s to clipboard (%d entries)", l.Name, len(l.Entries))
	return nil
}
