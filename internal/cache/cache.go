package cache

import (
	"container/list"
	"sync"
)

// Frame is an encoded overlay image ready for upload
type Frame struct {
	Text string
	Data []byte
}

// Service implements an LRU cache of rendered frames keyed by text
type Service struct {
	mu      sync.Mutex
	maxSize int
	entries map[string]*list.Element
	lruList *list.List
	hits    uint64
	misses  uint64
}

// New creates a new cache service
func New(maxSize int) *Service {
	if maxSize <= 0 {
		maxSize = 4
	}

	return &Service{
		maxSize: maxSize,
		entries: make(map[string]*list.Element),
		lruList: list.New(),
	}
}

// Get returns the frame rendered for text, or nil
func (s *Service) Get(text string) *Frame {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, exists := s.entries[text]
	if !exists {
		s.misses++
		return nil
	}

	s.hits++
	s.lruList.MoveToFront(elem)
	return elem.Value.(*Frame)
}

// Set caches frame under its text
func (s *Service) Set(frame *Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, exists := s.entries[frame.Text]; exists {
		elem.Value = frame
		s.lruList.MoveToFront(elem)
		return
	}

	s.entries[frame.Text] = s.lruList.PushFront(frame)
	s.enforceMaxSize()
}

// GetOrCreate returns the cached frame for text, building and caching
// it with build on a miss.
func (s *Service) GetOrCreate(text string, build func(string) *Frame) *Frame {
	if frame := s.Get(text); frame != nil {
		return frame
	}
	frame := build(text)
	s.Set(frame)
	return frame
}

// enforceMaxSize removes least recently used frames (must hold lock)
func (s *Service) enforceMaxSize() {
	for s.lruList.Len() > s.maxSize {
		elem := s.lruList.Back()
		if elem == nil {
			return
		}
		s.lruList.Remove(elem)
		delete(s.entries, elem.Value.(*Frame).Text)
	}
}

// Stats returns cache statistics
func (s *Service) Stats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return CacheStats{
		Size:    s.lruList.Len(),
		MaxSize: s.maxSize,
		Hits:    s.hits,
		Misses:  s.misses,
	}
}

// CacheStats holds cache statistics
type CacheStats struct {
	Size    int    `json:"size"`
	MaxSize int    `json:"max_size"`
	Hits    uint64 `json:"hits"`
	Misses  uint64 `json:"misses"`
}
