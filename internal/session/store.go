package session

import (
	"container/list"
	"sync"
	"time"
)

// DefaultMaxEntries — предел числа сессий, если он не задан в конфиге.
const DefaultMaxEntries = 10000

// Store — in-memory хранилище сессий: LRU с TTL (скользящее истечение).
// Вытесненная сессия восстанавливается по cookie через LoginViaStoredCredentials.
type Store struct {
	mu         sync.Mutex
	entries    map[string]*list.Element
	order      *list.List
	maxEntries int
	ttl        time.Duration
	now        func() time.Time
}

type storeEntry struct {
	session   *Session
	expiresAt time.Time
}

// NewStore создаёт хранилище. maxEntries <= 0 -> DefaultMaxEntries; ttl <= 0 — без истечения.
func NewStore(maxEntries int, ttl time.Duration, opts ...Option) *Store {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}

	return &Store{
		entries:    make(map[string]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        buildOptions(opts).now,
	}
}

// Get возвращает живую сессию и продлевает её срок.
func (s *Store) Get(id string) (*Session, bool) {
	if id == "" {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[id]
	if !ok {
		return nil, false
	}

	entry := elem.Value.(*storeEntry)
	now := s.now()

	if s.expired(entry, now) {
		s.removeElement(elem)
		return nil, false
	}

	entry.expiresAt = s.deadline(now)
	s.order.MoveToFront(elem)

	return entry.session, true
}

// Put сохраняет сессию (или обновляет существующую с тем же ID).
func (s *Store) Put(sess *Session) {
	if sess == nil || sess.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	if elem, ok := s.entries[sess.ID]; ok {
		entry := elem.Value.(*storeEntry)
		entry.session = sess
		entry.expiresAt = s.deadline(now)
		s.order.MoveToFront(elem)
		return
	}

	s.entries[sess.ID] = s.order.PushFront(&storeEntry{session: sess, expiresAt: s.deadline(now)})

	s.evictExpiredLocked(now)
	s.enforceSizeLimitLocked()
}

// Delete удаляет сессию.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[id]; ok {
		s.removeElement(elem)
	}
}

// Len — число хранимых сессий (включая ещё не вычищенные истёкшие).
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

func (s *Store) deadline(now time.Time) time.Time {
	if s.ttl <= 0 {
		return time.Time{}
	}

	return now.Add(s.ttl)
}

func (s *Store) expired(e *storeEntry, now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

func (s *Store) evictExpiredLocked(now time.Time) {
	for elem := s.order.Back(); elem != nil; {
		prev := elem.Prev()
		if s.expired(elem.Value.(*storeEntry), now) {
			s.removeElement(elem)
		}
		elem = prev
	}
}

func (s *Store) enforceSizeLimitLocked() {
	for len(s.entries) > s.maxEntries {
		elem := s.order.Back()
		if elem == nil {
			return
		}
		s.removeElement(elem)
	}
}

func (s *Store) removeElement(elem *list.Element) {
	delete(s.entries, elem.Value.(*storeEntry).session.ID)
	s.order.Remove(elem)
}
