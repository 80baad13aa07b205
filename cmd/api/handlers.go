package main

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/expense-assistant/internal/domain/assistant"
	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
	"github.com/FACorreiaa/expense-assistant/internal/domain/report"
	"github.com/FACorreiaa/expense-assistant/internal/domain/taxonomy"
)

// Fixed messages the LLM error taxonomy maps to. The orchestrator never
// retries these; the client sees one stable message per failure category.
const (
	msgMissingKey     = "El asistente no está configurado. Falta la clave de API."
	msgInvalidKey     = "La clave de API del asistente no es válida."
	msgNoBalance      = "El saldo de la API del asistente se ha agotado."
	msgRateLimited    = "Demasiadas peticiones al asistente. Espera un momento e inténtalo de nuevo."
	msgAssistantError = "El asistente no está disponible en este momento. Inténtalo más tarde."
)

type chatRequest struct {
	Message string `json:"message"`
}

type expensePayload struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Amount        string    `json:"amount"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory,omitempty"`
	Date          string    `json:"date"`
	PaymentMethod string    `json:"payment_method"`
}

type chatResponse struct {
	Content string          `json:"content"`
	Action  string          `json:"action,omitempty"`
	Expense *expensePayload `json:"expense,omitempty"`
}

func expenseToPayload(e *expenses.Expense) *expensePayload {
	if e == nil {
		return nil
	}
	return &expensePayload{
		ID:            e.ID,
		Name:          e.Name,
		Amount:        e.Amount.StringFixed(2),
		Category:      e.Category,
		Subcategory:   e.Subcategory,
		Date:          e.Date,
		PaymentMethod: string(e.PaymentMethod),
	}
}

func (d *Dependencies) handleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	conv := d.Conversations.For(userID)
	conv.Append(assistant.Message{Role: assistant.RoleUser, Content: req.Message})

	reply, err := d.Orchestrator.HandleMessage(r.Context(), userID, req.Message)
	if err != nil {
		msg := llmErrorMessage(err)
		conv.Append(assistant.Message{Role: assistant.RoleAssistant, Content: msg})
		writeJSON(w, http.StatusOK, chatResponse{Content: msg})
		return
	}

	resp := chatResponse{Content: reply.Text()}
	turn := assistant.Message{Role: assistant.RoleAssistant, Content: reply.Text()}
	if added, ok := reply.(assistant.ExpenseAddedReply); ok {
		resp.Action = assistant.ActionExpenseAdded
		resp.Expense = expenseToPayload(added.Expense)
		turn.Action = assistant.ActionExpenseAdded
		turn.Expense = added.Expense
	}
	conv.Append(turn)
	writeJSON(w, http.StatusOK, resp)
}

type historyMessage struct {
	Role    string          `json:"role"`
	Content string          `json:"content"`
	Action  string          `json:"action,omitempty"`
	Expense *expensePayload `json:"expense,omitempty"`
}

func (d *Dependencies) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	messages := d.Conversations.For(userID).Messages()
	out := make([]historyMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, historyMessage{
			Role:    string(m.Role),
			Content: m.Content,
			Action:  m.Action,
			Expense: expenseToPayload(m.Expense),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

type transcriptRequest struct {
	Transcript string `json:"transcript"`
}

func (d *Dependencies) handleVoiceTranscript(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	var req transcriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	result, err := d.VoiceProcessor.Process(r.Context(), userID, req.Transcript)
	if err != nil {
		writeJSON(w, http.StatusOK, chatResponse{Content: llmErrorMessage(err)})
		return
	}

	resp := chatResponse{Content: result.Message}
	if result.Expense != nil {
		resp.Action = assistant.ActionExpenseAdded
		resp.Expense = expenseToPayload(result.Expense)
	}
	writeJSON(w, http.StatusOK, resp)
}

type suggestionPayload struct {
	Category string `json:"category"`
	Score    int    `json:"score"`
}

func (d *Dependencies) handleCategorySuggest(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	set, err := d.TaxonomyService.CategorySet(r.Context(), userID)
	if err != nil {
		d.Logger.Error("category set load failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	suggestions := taxonomy.SuggestCategories(query, set, 5)
	out := make([]suggestionPayload, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, suggestionPayload{Category: s.Key, Score: s.Score})
	}
	writeJSON(w, http.StatusOK, map[string]any{"suggestions": out})
}

func (d *Dependencies) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}

	month := r.URL.Query().Get("month")
	format := report.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = report.FormatExcel
	}

	info, err := d.ReportService.ExportMonthly(r.Context(), userID, month, format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rc, stored, err := d.FileStorage.Open(r.Context(), userID, info.ID)
	if err != nil {
		d.Logger.Error("opening generated report failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", stored.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+stored.Name+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		d.Logger.Warn("streaming report failed", "error", err)
	}
}

func (d *Dependencies) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := d.DB.Pool.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unreachable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Routes assembles the HTTP mux.
func (d *Dependencies) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/chat", d.handleChat)
	mux.HandleFunc("GET /v1/chat/history", d.handleChatHistory)
	mux.HandleFunc("POST /v1/voice/transcript", d.handleVoiceTranscript)
	mux.HandleFunc("GET /v1/categories/suggest", d.handleCategorySuggest)
	mux.HandleFunc("GET /v1/reports/monthly", d.handleMonthlyReport)
	mux.HandleFunc("GET /healthz", d.handleHealthz)
	if d.Config.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}
	return mux
}

// llmErrorMessage maps the client's typed errors onto fixed user-facing
// messages.
func llmErrorMessage(err error) string {
	var apiErr *assistant.APIError
	switch {
	case errors.Is(err, assistant.ErrAPIKeyNotConfigured):
		return msgMissingKey
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusUnauthorized:
			return msgInvalidKey
		case http.StatusPaymentRequired:
			return msgNoBalance
		case http.StatusTooManyRequests:
			return msgRateLimited
		}
		return msgAssistantError
	default:
		return msgAssistantError
	}
}

func userIDFrom(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		writeError(w, http.StatusUnauthorized, "X-User-ID header is required")
		return uuid.Nil, false
	}
	userID, err := uuid.Parse(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return uuid.Nil, false
	}
	return userID, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("encoding response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
