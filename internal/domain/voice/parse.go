package voice

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Expense is the strict-JSON object the voice flow expects from the model.
// Unlike the chat flow there is no surrounding narrative text: the whole
// reply must be one JSON object.
type Expense struct {
	Amount      string `json:"amount"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Date        string `json:"date"`
}

// ParseExpense parses a model reply into a voice expense. Markdown fences
// are stripped first because models wrap JSON in them despite instructions;
// anything else non-JSON is an error.
func ParseExpense(raw string) (Expense, error) {
	clean := stripFences(raw)

	var e Expense
	if err := json.Unmarshal([]byte(clean), &e); err != nil {
		return Expense{}, fmt.Errorf("voice: parse model reply: %w", err)
	}
	if e.Description == "" {
		return Expense{}, fmt.Errorf("voice: model reply missing description")
	}
	return e, nil
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	return strings.TrimSpace(s)
}
