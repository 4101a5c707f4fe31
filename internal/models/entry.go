// Package models holds the data types shared by every codecopy component:
// captured file entries, named lists of entries, and the error kinds the
// components report to each other.
package models

import "time"

// Entry is one file's text captured at a point in time.
// RelativePath uses forward slashes and is relative to the project root; it is
// both the display key and the identity used for de-duplication.
type Entry struct {
	RelativePath string `json:"relativePath"`
	Content      string `json:"content"`
	Timestamp    int64  `json:"timestamp"` // Unix milliseconds
}

// NewEntry captures content for relativePath with the current time.
func NewEntry(relativePath, content string) Entry {
	return Entry{
		RelativePath: relativePath,
		Content:      content,
		Timestamp:    NowMillis(),
	}
}

// CapturedAt returns the capture time as a time.Time.
func (e Entry) CapturedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// List is a named, ordered, de-duplicated collection of entries.
type List struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Entries   []Entry `json:"entries"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// HasPath reports whether the list already holds an entry for relativePath.
func (l *List) HasPath(relativePath string) bool {
	for _, e := range l.Entries {
		if e.RelativePath == relativePath {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can never mutate store-owned state.
func (l List) Clone() List {
	c := l
	c.Entries = make([]Entry, len(l.Entries))
	copy(c.Entries, l.Entries)
	return c
}

// NowMillis is the clock used for all timestamps. Tests may replace it.
var NowMillis = func() int64 {
	return time.Now().UnixMilli()
}
