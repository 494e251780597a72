package conversation

import "strings"

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Intent is the coarse category assigned to the user's request.
type Intent string

const (
	IntentNews    Intent = "news"
	IntentDice    Intent = "dice"
	IntentSearch  Intent = "search"
	IntentGeneral Intent = "general"
)

// Message is one entry in the conversation log. Messages are never mutated
// after being appended.
type Message struct {
	Role    Role
	Content string
}

func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// State is the unit of data threaded through a workflow run. It is owned by
// exactly one run: messages are append-only and the intent is set once by the
// classifier node.
type State struct {
	RunID    string
	intent   Intent
	messages []Message
}

// NewState creates a fresh state seeded with the user's utterance.
func NewState(runID, utterance string) *State {
	st := &State{RunID: runID, intent: IntentGeneral}
	st.Append(RoleUser, utterance)
	return st
}

func (s *State) Append(role Role, content string) {
	s.messages = append(s.messages, Message{Role: role, Content: content})
}

// Messages returns a copy of the log in conversation order.
func (s *State) Messages() []Message {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

func (s *State) Len() int {
	return len(s.messages)
}

// Last returns the most recent message. ok is false only for an empty log.
func (s *State) Last() (Message, bool) {
	if len(s.messages) == 0 {
		return Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

func (s *State) Intent() Intent {
	return s.intent
}

func (s *State) SetIntent(intent Intent) {
	if strings.TrimSpace(string(intent)) == "" {
		intent = IntentGeneral
	}
	s.intent = intent
}
