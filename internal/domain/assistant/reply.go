package assistant

import "github.com/FACorreiaa/expense-assistant/internal/domain/expenses"

// Reply is what a chat turn produces. Exactly two variants exist: a plain
// text answer, or an answer that also recorded an expense.
type Reply interface {
	Text() string
	replyVariant()
}

// PlainReply is a narrative answer with no side effect.
type PlainReply struct {
	Content string
}

func (r PlainReply) Text() string  { return r.Content }
func (r PlainReply) replyVariant() {}

// ExpenseAddedReply is an answer that recorded an expense as a side effect.
type ExpenseAddedReply struct {
	Content string
	Expense *expenses.Expense
}

func (r ExpenseAddedReply) Text() string  { return r.Content }
func (r ExpenseAddedReply) replyVariant() {}
