package overlay

import (
	"sync"
	"time"
)

// Service holds the state shown by the overlay window. The clock ticker
// writes it and the render loop reads it.
type Service struct {
	mu         sync.RWMutex
	text       string
	lastUpdate time.Time
	pointerIn  bool
	redraws    uint64
}

// DisplayInfo is a snapshot of the overlay state
type DisplayInfo struct {
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
	PointerIn bool      `json:"pointer_in"`
	Redraws   uint64    `json:"redraws"`
}

// New creates a new overlay service
func New() *Service {
	return &Service{}
}

// SetText replaces the displayed text. It reports whether the value
// changed.
func (s *Service) SetText(text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := s.text != text
	s.text = text
	s.lastUpdate = time.Now()
	return changed
}

// Text returns the current text
func (s *Service) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text
}

// SetPointerInside records enter/leave notifications. Nothing is drawn
// differently for it.
func (s *Service) SetPointerInside(inside bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pointerIn = inside
}

// MarkRedrawn counts a completed redraw
func (s *Service) MarkRedrawn() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.redraws++
}

// GetDisplayInfo returns a snapshot of the current state
func (s *Service) GetDisplayInfo() DisplayInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DisplayInfo{
		Text:      s.text,
		UpdatedAt: s.lastUpdate,
		PointerIn: s.pointerIn,
		Redraws:   s.redraws,
	}
}
