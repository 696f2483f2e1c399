package state

import tele "gopkg.in/telebot.v4"

// State identifies a finite-state-machine step used in conversations.
type State string

const (
	// StateIdle indicates there is no active conversation with the user.
	StateIdle State = "idle"
)

// Session stores the conversation state and the typed form payload for a
// user. Form holds exactly one in-progress form struct; starting a new form
// replaces it entirely.
type Session struct {
	State State
	Form  any
}

// Manager orchestrates user sessions and FSM state transitions. Each user
// owns at most one session; Begin discards any previous incomplete form.
type Manager interface {
	Begin(userID int64, st State, form any)
	SetState(userID int64, st State)
	GetState(userID int64) State
	Form(userID int64) (any, bool)
	Clear(userID int64)

	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// FormAs retrieves the user's form payload asserted to the concrete form
// type. The second result is false when no session exists or the session
// carries a different form, which callers treat as a stale session.
func FormAs[T any](m Manager, userID int64) (*T, bool) {
	v, ok := m.Form(userID)
	if !ok {
		return nil, false
	}
	form, ok := v.(*T)
	if !ok || form == nil {
		return nil, false
	}
	return form, true
}
