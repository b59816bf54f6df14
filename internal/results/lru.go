package results

import "sync"

// LRUStore keeps recently used records in memory in front of a backing
// Store. Saves are written through.
type LRUStore struct {
	mu   sync.Mutex
	cap  int
	back Store

	// Doubly-linked list for LRU ordering (most recent at head).
	head, tail *lruEntry
	items      map[string]*lruEntry
}

type lruEntry struct {
	key  string
	rec  *Record
	prev *lruEntry
	next *lruEntry
}

// NewLRUStore creates an LRU cache with the given capacity that delegates
// to back on cache misses. Capacity must be >= 1.
func NewLRUStore(cap int, back Store) *LRUStore {
	if cap < 1 {
		cap = 1
	}
	return &LRUStore{
		cap:   cap,
		back:  back,
		items: make(map[string]*lruEntry, cap),
	}
}

// Save writes rec through to the backing store, then caches a copy of it.
// Nothing is cached when the backing store fails.
func (s *LRUStore) Save(rec *Record) error {
	if err := s.back.Save(rec); err != nil {
		return err
	}
	s.put(rec.ID, rec.clone(), true)
	return nil
}

// Load returns a copy of the cached record, falling back to the backing
// store on a miss and promoting the loaded record.
func (s *LRUStore) Load(id string) (*Record, error) {
	s.mu.Lock()
	if e, ok := s.items[id]; ok {
		s.moveToFront(e)
		rec := e.rec.clone()
		s.mu.Unlock()
		return rec, nil
	}
	s.mu.Unlock()

	rec, err := s.back.Load(id)
	if err != nil {
		return nil, err
	}
	s.put(id, rec.clone(), false)
	return rec, nil
}

// Len returns the number of cached records.
func (s *LRUStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// put caches rec under id. A loaded record never replaces a cached one:
// the cached entry came from a Save that finished after the load began.
func (s *LRUStore) put(id string, rec *Record, replace bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.items[id]; ok {
		if replace {
			e.rec = rec
		}
		s.moveToFront(e)
		return
	}
	e := &lruEntry{key: id, rec: rec}
	s.items[id] = e
	s.pushFront(e)
	if len(s.items) > s.cap {
		s.evict()
	}
}

func (s *LRUStore) pushFront(e *lruEntry) {
	e.prev = nil
	e.next = s.head
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *LRUStore) moveToFront(e *lruEntry) {
	if s.head == e {
		return
	}
	s.remove(e)
	s.pushFront(e)
}

func (s *LRUStore) remove(e *lruEntry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
	e.prev = nil
	e.next = nil
}

func (s *LRUStore) evict() {
	if s.tail == nil {
		return
	}
	e := s.tail
	s.remove(e)
	delete(s.items, e.key)
}
