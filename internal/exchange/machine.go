package exchange

import (
	"strings"
	"sync"
	"unicode"
)

// Step is the outcome of feeding one input into the Machine
type Step struct {
	// State is the conversation state after the input was handled
	State State
	// Request is a snapshot of the collected request
	Request ExchangeRequest
	// Reply is set when the request was composed
	Reply *ComposedReply
	// Err explains why the input was rejected or the request could not be composed
	Err error
	// Cancelled is set when an in-progress request was discarded
	Cancelled bool
}

// Done reports whether the step produced links
func (s Step) Done() bool {
	return s.Reply != nil
}

// Machine sequences the exchange dialog:
// pair -> give method -> get method -> location (only with a cash leg) -> compose.
// Operations on one conversation are serialized; different conversations run in parallel.
type Machine struct {
	sessions    SessionStore
	composer    *Composer
	cancelWords map[string]struct{}

	locks sync.Map // conversation id -> *sync.Mutex
}

// NewMachine creates a dialog state machine
func NewMachine(sessions SessionStore, composer *Composer, cancelWords []string) *Machine {
	words := make(map[string]struct{}, len(cancelWords))
	for _, w := range cancelWords {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			words[w] = struct{}{}
		}
	}
	return &Machine{
		sessions:    sessions,
		composer:    composer,
		cancelWords: words,
	}
}

// lock holds the conversation mutex until the returned func is called
func (m *Machine) lock(id int64) func() {
	mu, _ := m.locks.LoadOrStore(id, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	return mu.(*sync.Mutex).Unlock
}

// Composer returns the composer used to finish requests
func (m *Machine) Composer() *Composer {
	return m.composer
}

// State returns the conversation state, StateIdle when there is none
func (m *Machine) State(id int64) State {
	conv, ok := m.sessions.Get(id)
	if !ok {
		return StateIdle
	}
	return conv.State
}

// InProgress reports whether the conversation is somewhere inside the dialog
func (m *Machine) InProgress(id int64) bool {
	return m.State(id) != StateIdle
}

// IsCancel reports whether text is one of the cancel keywords
func (m *Machine) IsCancel(text string) bool {
	_, ok := m.cancelWords[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Start opens a new exchange request, discarding any unfinished one
func (m *Machine) Start(id int64) Step {
	defer m.lock(id)()

	conv := m.sessions.Create(id)
	return Step{State: conv.State, Request: conv.Request}
}

// Cancel discards the request in progress
func (m *Machine) Cancel(id int64) Step {
	defer m.lock(id)()
	return m.cancel(id)
}

func (m *Machine) cancel(id int64) Step {
	conv, ok := m.sessions.Get(id)
	if !ok {
		return Step{State: StateIdle}
	}
	m.sessions.Delete(id)
	return Step{State: StateIdle, Request: conv.Request, Cancelled: conv.State != StateIdle}
}

// HandleText feeds free text into the current step.
// Cancel words win over every step, including the location answer.
func (m *Machine) HandleText(id int64, text string) Step {
	defer m.lock(id)()

	if m.IsCancel(text) {
		return m.cancel(id)
	}

	conv, ok := m.sessions.Get(id)
	if !ok || conv.State == StateIdle {
		return Step{State: StateIdle, Err: ErrNoConversation}
	}

	switch conv.State {
	case StateAwaitingPair:
		tokens := Tokenize(text)
		if len(tokens) < 2 {
			return Step{State: conv.State, Request: conv.Request, Err: ErrMalformedInput}
		}
		conv.Request.GiveToken = tokens[0]
		conv.Request.GetToken = tokens[1]
		conv.State = StateAwaitingGiveMethod
		m.sessions.Update(id, conv)
		return Step{State: conv.State, Request: conv.Request}

	case StateAwaitingLocation:
		location := strings.TrimSpace(text)
		if location == "" {
			return Step{State: conv.State, Request: conv.Request, Err: ErrMalformedInput}
		}
		conv.Request.Location = location
		return m.resolve(id, conv.Request)

	default:
		return Step{State: conv.State, Request: conv.Request, Err: ErrUnexpectedInput}
	}
}

// ChooseMethod applies a discrete payment method choice for one leg
func (m *Machine) ChooseMethod(id int64, leg Leg, method Method) Step {
	defer m.lock(id)()

	conv, ok := m.sessions.Get(id)
	if !ok || conv.State == StateIdle {
		return Step{State: StateIdle, Err: ErrNoConversation}
	}
	if method == MethodUnknown {
		return Step{State: conv.State, Request: conv.Request, Err: ErrUnexpectedInput}
	}

	switch {
	case conv.State == StateAwaitingGiveMethod && leg == LegGive:
		conv.Request.GiveMethod = method
		conv.State = StateAwaitingGetMethod
		m.sessions.Update(id, conv)
		return Step{State: conv.State, Request: conv.Request}

	case conv.State == StateAwaitingGetMethod && leg == LegGet:
		conv.Request.GetMethod = method
		if !conv.Request.HasCash() {
			conv.Request.Location = LocationOnline
			return m.resolve(id, conv.Request)
		}
		conv.State = StateAwaitingLocation
		m.sessions.Update(id, conv)
		return Step{State: conv.State, Request: conv.Request}

	default:
		return Step{State: conv.State, Request: conv.Request, Err: ErrUnexpectedInput}
	}
}

// ChooseOnline answers the location question with LocationOnline
func (m *Machine) ChooseOnline(id int64) Step {
	defer m.lock(id)()

	conv, ok := m.sessions.Get(id)
	if !ok || conv.State == StateIdle {
		return Step{State: StateIdle, Err: ErrNoConversation}
	}
	if conv.State != StateAwaitingLocation {
		return Step{State: conv.State, Request: conv.Request, Err: ErrUnexpectedInput}
	}

	conv.Request.Location = LocationOnline
	return m.resolve(id, conv.Request)
}

// resolve composes the request and ends the conversation either way
func (m *Machine) resolve(id int64, req ExchangeRequest) Step {
	m.sessions.Delete(id)

	reply, err := m.composer.Compose(req)
	if err != nil {
		return Step{State: StateIdle, Request: req, Err: err}
	}
	return Step{State: StateIdle, Request: req, Reply: reply}
}

// Tokenize splits pair input on anything that is not a letter or digit,
// so "UAH USD", "uah/usd" and "UAH -> USD" all yield two tokens.
func Tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
