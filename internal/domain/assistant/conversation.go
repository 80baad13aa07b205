package assistant

import (
	"sync"

	"github.com/google/uuid"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
)

// Role identifies who produced a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ActionExpenseAdded tags an assistant message that recorded an expense.
const ActionExpenseAdded = "expense_added"

// Message is one turn in a conversation.
type Message struct {
	Role    Role
	Content string
	Action  string
	Expense *expenses.Expense
}

// Conversation is an append-only in-memory message log. It lives for the
// duration of a chat session and is never persisted.
type Conversation struct {
	mu       sync.Mutex
	messages []Message
}

// NewConversation creates an empty conversation.
func NewConversation() *Conversation {
	return &Conversation{}
}

// Append adds one message to the log.
func (c *Conversation) Append(m Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, m)
}

// Messages returns a copy of the log in order.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages.
func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

// ConversationLog holds one conversation per user for the lifetime of the
// process. Logs are created on first use and never evicted.
type ConversationLog struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID]*Conversation
}

// NewConversationLog creates an empty registry.
func NewConversationLog() *ConversationLog {
	return &ConversationLog{byUser: make(map[uuid.UUID]*Conversation)}
}

// For returns the user's conversation, creating it if needed.
func (l *ConversationLog) For(userID uuid.UUID) *Conversation {
	l.mu.RLock()
	c := l.byUser[userID]
	l.mu.RUnlock()
	if c != nil {
		return c
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if c = l.byUser[userID]; c == nil {
		c = NewConversation()
		l.byUser[userID] = c
	}
	return c
}
