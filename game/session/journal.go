package session

import (
	"time"
)

// Category groups activity log entries for filtering.
type Category string

const (
	CategoryCombat Category = "combat"
	CategoryLoot   Category = "loot"
	CategoryShop   Category = "shop"
	CategorySystem Category = "system"
)

// LogEntry is one line of the activity log.
type LogEntry struct {
	Seq      int64     `json:"seq"`
	Time     time.Time `json:"time"`
	Category Category  `json:"category"`
	Type     string    `json:"type,omitempty"`
	Message  string    `json:"message"`
}

// Journal is a fixed-capacity ring of log entries; the oldest entry is
// overwritten once it is full.
type Journal struct {
	buf  []LogEntry
	head int
	size int
	seq  int64
}

// NewJournal creates a Journal holding up to capacity entries.
func NewJournal(capacity int) *Journal {
	if capacity <= 0 {
		capacity = 100
	}
	return &Journal{buf: make([]LogEntry, capacity)}
}

// Append stores e, assigning its sequence number, and returns the stored copy.
func (j *Journal) Append(e LogEntry) LogEntry {
	j.seq++
	e.Seq = j.seq
	idx := (j.head + j.size) % len(j.buf)
	if j.size == len(j.buf) {
		j.head = (j.head + 1) % len(j.buf)
	} else {
		j.size++
	}
	j.buf[idx] = e
	return e
}

// Len is the number of stored entries.
func (j *Journal) Len() int { return j.size }

// Entries returns the stored entries oldest first. A non-empty category
// keeps only matching entries.
func (j *Journal) Entries(category Category) []LogEntry {
	out := make([]LogEntry, 0, j.size)
	for i := 0; i < j.size; i++ {
		e := j.buf[(j.head+i)%len(j.buf)]
		if category != "" && e.Category != category {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Since returns entries with a sequence number greater than seq.
func (j *Journal) Since(seq int64) []LogEntry {
	var out []LogEntry
	for i := 0; i < j.size; i++ {
		e := j.buf[(j.head+i)%len(j.buf)]
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// Clear drops every entry. Sequence numbers keep increasing.
func (j *Journal) Clear() {
	j.head, j.size = 0, 0
}
