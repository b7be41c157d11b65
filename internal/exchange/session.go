package exchange

import "sync"

// State is a step of the exchange dialog
type State string

const (
	StateIdle               State = "idle"
	StateAwaitingPair       State = "awaiting_pair"
	StateAwaitingGiveMethod State = "awaiting_give_method"
	StateAwaitingGetMethod  State = "awaiting_get_method"
	StateAwaitingLocation   State = "awaiting_location"
)

// LocationOnline is the location sentinel for requests without a cash leg
const LocationOnline = "online"

// ExchangeRequest is what the dialog has collected so far
type ExchangeRequest struct {
	GiveToken  string
	GetToken   string
	GiveMethod Method
	GetMethod  Method
	Location   string
}

// HasCash reports whether either leg is paid in cash
func (r ExchangeRequest) HasCash() bool {
	return r.GiveMethod == MethodCash || r.GetMethod == MethodCash
}

// Conversation is the per-chat dialog state
type Conversation struct {
	State   State
	Request ExchangeRequest
}

// SessionStore keeps one conversation per conversation id
type SessionStore interface {
	Create(id int64) Conversation
	Get(id int64) (Conversation, bool)
	Update(id int64, conv Conversation)
	Delete(id int64)
}

// MemoryStore is an in-process SessionStore. Conversations are lost on restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[int64]Conversation
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[int64]Conversation)}
}

// Create starts a fresh conversation waiting for a currency pair, replacing any existing one
func (s *MemoryStore) Create(id int64) Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := Conversation{State: StateAwaitingPair}
	s.sessions[id] = conv
	return conv
}

// Get returns a copy of the stored conversation
func (s *MemoryStore) Get(id int64) (Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.sessions[id]
	return conv, ok
}

// Update replaces the stored conversation
func (s *MemoryStore) Update(id int64, conv Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[id] = conv
}

// Delete discards the conversation
func (s *MemoryStore) Delete(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
}

// Len returns the number of conversations in progress
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}
