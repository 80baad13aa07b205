// Package assistant turns free-form Spanish chat messages into expense
// records: the direct pattern matcher first, an LLM fallback with an
// action-directive protocol when the heuristics yield nothing.
package assistant

import (
	"context"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
	"github.com/FACorreiaa/expense-assistant/internal/domain/extraction"
	"github.com/FACorreiaa/expense-assistant/internal/domain/search"
	"github.com/FACorreiaa/expense-assistant/internal/domain/snapshot"
	"github.com/FACorreiaa/expense-assistant/internal/domain/taxonomy"
	"github.com/FACorreiaa/expense-assistant/pkg/money"
)

// Fixed user-facing messages. They are part of the chat contract, tests
// assert on them verbatim.
const (
	MsgNoCategories    = "⚠️ No tienes categorías configuradas. Crea al menos una categoría antes de añadir gastos."
	MsgInvalidCategory = "⚠️ No he podido asignar una categoría válida, así que no he añadido el gasto."
	MsgAddFailed       = "⚠️ No he podido guardar el gasto. Inténtalo de nuevo en unos minutos."

	defaultExpenseName = "Gasto añadido desde chat"
)

// actionRe matches exactly one action directive, newlines included.
var actionRe = regexp.MustCompile(`(?s)\[ACTION:(\{.*?\})\]`)

// LLM is the model client. *Client implements it.
type LLM interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Recorder persists expenses. *expenses.Store implements it.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, d expenses.Draft) (*expenses.Expense, error)
}

// CategorySource serves the user's category set. *taxonomy.Service
// implements it.
type CategorySource interface {
	CategorySet(ctx context.Context, userID uuid.UUID) (*taxonomy.CategorySet, error)
}

// SnapshotSource builds the financial context for prompts.
// *snapshot.Service implements it.
type SnapshotSource interface {
	Snapshot(ctx context.Context, userID uuid.UUID, now time.Time) (snapshot.Snapshot, error)
}

// SimilarSource finds past expenses matching the message. *search.Index
// implements it; nil disables prompt enrichment.
type SimilarSource interface {
	Similar(userID uuid.UUID, text string, limit int) ([]search.Hit, error)
	IndexExpense(e *expenses.Expense) error
}

// Orchestrator runs one chat turn end to end.
type Orchestrator struct {
	matcher    *extraction.Matcher
	resolver   *taxonomy.Resolver
	categories CategorySource
	snapshots  SnapshotSource
	similar    SimilarSource
	llm        LLM
	recorder   Recorder
	metrics    *Metrics
	logger     *slog.Logger

	now func() time.Time
}

// NewOrchestrator wires a chat orchestrator. similar may be nil.
func NewOrchestrator(
	matcher *extraction.Matcher,
	resolver *taxonomy.Resolver,
	categories CategorySource,
	snapshots SnapshotSource,
	similar SimilarSource,
	llm LLM,
	recorder Recorder,
	metrics *Metrics,
	logger *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		matcher:    matcher,
		resolver:   resolver,
		categories: categories,
		snapshots:  snapshots,
		similar:    similar,
		llm:        llm,
		recorder:   recorder,
		metrics:    metrics,
		logger:     logger,
		now:        time.Now,
	}
}

// HandleMessage processes one user message: direct extraction first, LLM
// fallback otherwise. LLM transport errors are returned typed so the HTTP
// layer can map them to fixed messages; everything else resolves to a Reply.
func (o *Orchestrator) HandleMessage(ctx context.Context, userID uuid.UUID, text string) (Reply, error) {
	normalized := strings.ToLower(strings.TrimSpace(text))
	now := o.now()

	set, err := o.categories.CategorySet(ctx, userID)
	if err != nil {
		return nil, err
	}

	if match, ok := o.matcher.Detect(normalized, now); ok {
		o.metrics.DirectMatches.Inc()
		return o.recordDirect(ctx, userID, match, set)
	}

	o.metrics.AIFallbacks.Inc()
	return o.fallback(ctx, userID, normalized, set, now)
}

func (o *Orchestrator) recordDirect(ctx context.Context, userID uuid.UUID, match extraction.DirectMatch, set *taxonomy.CategorySet) (Reply, error) {
	if set.Len() == 0 {
		return PlainReply{Content: MsgNoCategories}, nil
	}

	category, ok := o.resolver.FindBestCategory("", match.Description, set)
	if !ok {
		return PlainReply{Content: MsgInvalidCategory}, nil
	}
	subcategory := taxonomy.FindBestSubcategory(match.Description, set.Subcategories(category))

	draft := expenses.Draft{
		Name:          match.Description,
		Amount:        match.Amount,
		Category:      category,
		Subcategory:   subcategory,
		Date:          match.Date,
		PaymentMethod: expenses.PaymentCard,
	}

	e, err := o.recorder.Record(ctx, userID, draft)
	if err != nil {
		o.logger.Error("direct expense record failed", "user_id", userID, "error", err)
		return PlainReply{Content: MsgAddFailed}, nil
	}
	o.indexExpense(e)
	o.metrics.ExpensesAdded.WithLabelValues("direct").Inc()

	content := "✅ Gasto añadido: " + e.Name + ", " + money.FormatEuro(e.Amount) + " en " + e.Category +
		" (" + e.Date + ")."
	return ExpenseAddedReply{Content: content, Expense: e}, nil
}

func (o *Orchestrator) fallback(ctx context.Context, userID uuid.UUID, text string, set *taxonomy.CategorySet, now time.Time) (Reply, error) {
	snap, err := o.snapshots.Snapshot(ctx, userID, now)
	if err != nil {
		// The chat still works without context, just less informed.
		o.logger.Warn("snapshot build failed, prompting without context", "user_id", userID, "error", err)
		snap = snapshot.Snapshot{Month: now.Format("2006-01")}
	}

	var hits []search.Hit
	if o.similar != nil {
		if hits, err = o.similar.Similar(userID, text, 5); err != nil {
			o.logger.Warn("similar expense lookup failed", "error", err)
			hits = nil
		}
	}

	prompt := BuildSystemPrompt(snap, set, hits)
	replyText, err := o.llm.Complete(ctx, prompt, text)
	if err != nil {
		o.metrics.LLMErrors.Inc()
		return nil, err
	}

	return o.applyDirective(ctx, userID, replyText, set, now), nil
}

// directive is the JSON payload inside an [ACTION:{...}] block.
type directive struct {
	Type        string `json:"type"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Date        string `json:"date"`
}

// applyDirective post-processes the model reply. A malformed or unusable
// directive is stripped and never surfaces as an error, only its text
// disappears.
func (o *Orchestrator) applyDirective(ctx context.Context, userID uuid.UUID, replyText string, set *taxonomy.CategorySet, now time.Time) Reply {
	m := actionRe.FindStringSubmatch(replyText)
	if m == nil {
		return PlainReply{Content: replyText}
	}
	cleaned := strings.TrimSpace(actionRe.ReplaceAllString(replyText, ""))

	var d directive
	if err := json.Unmarshal([]byte(m[1]), &d); err != nil {
		o.logger.Warn("unparseable action directive dropped", "payload", m[1], "error", err)
		o.metrics.DirectiveDrops.Inc()
		return PlainReply{Content: cleaned}
	}

	if d.Type != "ADD_EXPENSE" {
		o.metrics.DirectiveDrops.Inc()
		return PlainReply{Content: cleaned}
	}

	if set.Len() == 0 {
		o.metrics.DirectiveDrops.Inc()
		return PlainReply{Content: cleaned + "\n\n" + MsgNoCategories}
	}

	// The prompt hands the model the exact category names, so the directive
	// must echo one of them. Anything else is stripped, never recorded.
	category, ok := set.KeyFor(d.Category)
	if !ok {
		o.logger.Warn("directive category not in user set", "category", d.Category)
		o.metrics.DirectiveDrops.Inc()
		return PlainReply{Content: cleaned + "\n\n" + MsgInvalidCategory}
	}

	desc := d.Description
	if desc == "" {
		desc = d.Name
	}
	subcategory := taxonomy.FindBestSubcategory(desc, set.Subcategories(category))

	name := d.Name
	if name == "" {
		name = d.Description
	}
	if name == "" {
		name = defaultExpenseName
	}

	date := d.Date
	if _, err := time.Parse("2006-01-02", date); err != nil {
		date = now.Format("2006-01-02")
	}

	draft := expenses.Draft{
		Name:          name,
		Amount:        money.ParseEuroOrZero(d.Amount),
		Category:      category,
		Subcategory:   subcategory,
		Date:          date,
		PaymentMethod: expenses.PaymentCard,
	}

	e, err := o.recorder.Record(ctx, userID, draft)
	if err != nil {
		o.logger.Error("directive expense record failed", "user_id", userID, "error", err)
		return PlainReply{Content: cleaned + "\n\n" + MsgAddFailed}
	}
	o.indexExpense(e)
	o.metrics.ExpensesAdded.WithLabelValues("ai").Inc()

	return ExpenseAddedReply{Content: cleaned, Expense: e}
}

func (o *Orchestrator) indexExpense(e *expenses.Expense) {
	if o.similar == nil {
		return
	}
	if err := o.similar.IndexExpense(e); err != nil {
		o.logger.Warn("expense indexing failed", "expense_id", e.ID, "error", err)
	}
}
