package voice

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
	"github.com/FACorreiaa/expense-assistant/internal/domain/extraction"
	"github.com/FACorreiaa/expense-assistant/internal/domain/taxonomy"
	"github.com/FACorreiaa/expense-assistant/pkg/money"
)

// LLM completes one system+user exchange.
type LLM interface {
	Complete(ctx context.Context, systemPrompt, userMessage string) (string, error)
}

// Recorder persists expenses.
type Recorder interface {
	Record(ctx context.Context, userID uuid.UUID, d expenses.Draft) (*expenses.Expense, error)
}

// CategorySource serves the user's category set.
type CategorySource interface {
	CategorySet(ctx context.Context, userID uuid.UUID) (*taxonomy.CategorySet, error)
}

// Result is the outcome of one processed transcript.
type Result struct {
	Message string
	Expense *expenses.Expense
}

// Fixed user-facing messages for the voice flow.
const (
	MsgVoiceNoCategories = "⚠️ No tienes categorías configuradas. Crea al menos una categoría antes de añadir gastos por voz."
	MsgVoiceNotParsed    = "No he entendido el gasto. Prueba con algo como \"gasto a tabaco que me ha costado nueve coma treinta\"."
	MsgVoiceAddFailed    = "No he podido guardar el gasto. Inténtalo de nuevo."
)

// voiceSystemPrompt instructs the model to answer with one JSON object and
// nothing else. Unlike the chat flow there is no narrative text to strip a
// directive from.
const voiceSystemPrompt = `Extrae un gasto del mensaje transcrito por voz del usuario.
Responde SOLO con un objeto JSON, sin texto adicional y sin bloques de código:
{"amount":"<importe con 2 decimales>","description":"<descripción corta>","category":"<categoría si la mencionó>","date":"YYYY-MM-DD si mencionó una fecha"}
Si el mensaje no describe ningún gasto, responde {"description":""}.`

// TranscriptProcessor turns final voice transcripts into recorded expenses:
// the spoken-phrase matcher first, a strict-JSON model call when it yields
// nothing.
type TranscriptProcessor struct {
	matcher    *extraction.Matcher
	resolver   *taxonomy.Resolver
	categories CategorySource
	llm        LLM
	recorder   Recorder
	logger     *slog.Logger

	now func() time.Time
}

// NewTranscriptProcessor wires a voice transcript processor.
func NewTranscriptProcessor(categories CategorySource, llm LLM, recorder Recorder, logger *slog.Logger) *TranscriptProcessor {
	return &TranscriptProcessor{
		matcher:    extraction.NewVoiceMatcher(),
		resolver:   taxonomy.NewResolver(),
		categories: categories,
		llm:        llm,
		recorder:   recorder,
		logger:     logger,
		now:        time.Now,
	}
}

// Process handles one final transcript for a user.
func (p *TranscriptProcessor) Process(ctx context.Context, userID uuid.UUID, transcript string) (Result, error) {
	normalized := strings.ToLower(strings.TrimSpace(transcript))
	now := p.now()

	set, err := p.categories.CategorySet(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if set.Len() == 0 {
		return Result{Message: MsgVoiceNoCategories}, nil
	}

	if match, ok := p.matcher.Detect(normalized, now); ok {
		return p.record(ctx, userID, expenses.Draft{
			Name:          match.Description,
			Amount:        match.Amount,
			Category:      p.resolveCategory("", match.Description, set),
			Date:          match.Date,
			PaymentMethod: expenses.PaymentCard,
		}, set)
	}

	reply, err := p.llm.Complete(ctx, voiceSystemPrompt, normalized)
	if err != nil {
		return Result{}, err
	}

	parsed, err := ParseExpense(reply)
	if err != nil || parsed.Description == "" {
		p.logger.Warn("voice model reply unusable", "error", err)
		return Result{Message: MsgVoiceNotParsed}, nil
	}

	date := parsed.Date
	if _, dateErr := time.Parse("2006-01-02", date); dateErr != nil {
		date = now.Format("2006-01-02")
	}

	return p.record(ctx, userID, expenses.Draft{
		Name:          parsed.Description,
		Amount:        money.ParseEuroOrZero(parsed.Amount),
		Category:      p.resolveCategory(parsed.Category, parsed.Description, set),
		Date:          date,
		PaymentMethod: expenses.PaymentCard,
	}, set)
}

func (p *TranscriptProcessor) resolveCategory(suggested, description string, set *taxonomy.CategorySet) string {
	category, _ := p.resolver.FindBestCategory(suggested, description, set)
	return category
}

func (p *TranscriptProcessor) record(ctx context.Context, userID uuid.UUID, draft expenses.Draft, set *taxonomy.CategorySet) (Result, error) {
	draft.Subcategory = taxonomy.FindBestSubcategory(draft.Name, set.Subcategories(draft.Category))

	e, err := p.recorder.Record(ctx, userID, draft)
	if err != nil {
		p.logger.Error("voice expense record failed", "user_id", userID, "error", err)
		return Result{Message: MsgVoiceAddFailed}, nil
	}

	return Result{
		Message: "✅ Gasto añadido: " + e.Name + ", " + money.FormatEuro(e.Amount) + " en " + e.Category + ".",
		Expense: e,
	}, nil
}
