package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/expense-assistant/internal/domain/expenses"
	"github.com/FACorreiaa/expense-assistant/internal/domain/extraction"
	"github.com/FACorreiaa/expense-assistant/internal/domain/snapshot"
	"github.com/FACorreiaa/expense-assistant/internal/domain/taxonomy"
)

type fakeCategories struct {
	set *taxonomy.CategorySet
}

func (f fakeCategories) CategorySet(_ context.Context, _ uuid.UUID) (*taxonomy.CategorySet, error) {
	return f.set, nil
}

type fakeSnapshots struct{}

func (fakeSnapshots) Snapshot(_ context.Context, _ uuid.UUID, now time.Time) (snapshot.Snapshot, error) {
	return snapshot.Snapshot{Month: now.Format("2006-01")}, nil
}

type fakeLLM struct {
	reply     string
	err       error
	gotSystem string
	gotUser   string
}

func (f *fakeLLM) Complete(_ context.Context, systemPrompt, userMessage string) (string, error) {
	f.gotSystem = systemPrompt
	f.gotUser = userMessage
	return f.reply, f.err
}

type recordingFake struct {
	drafts []expenses.Draft
	err    error
}

func (f *recordingFake) Record(_ context.Context, userID uuid.UUID, d expenses.Draft) (*expenses.Expense, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.drafts = append(f.drafts, d)
	return &expenses.Expense{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          d.Name,
		Amount:        d.Amount,
		Category:      d.Category,
		Subcategory:   d.Subcategory,
		Date:          d.Date,
		PaymentMethod: d.PaymentMethod,
	}, nil
}

func testSet() *taxonomy.CategorySet {
	set := taxonomy.NewCategorySet()
	set.Add("Alimentación", taxonomy.Category{Color: "#4caf50", Subcategories: []string{"Supermercado", "Fruta"}})
	set.Add("Transporte", taxonomy.Category{Color: "#2196f3", Subcategories: []string{"Gasolina"}})
	return set
}

func newTestOrchestrator(set *taxonomy.CategorySet, llm LLM, recorder Recorder) *Orchestrator {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(
		extraction.NewMatcher(),
		taxonomy.NewResolver(),
		fakeCategories{set: set},
		fakeSnapshots{},
		nil,
		llm,
		recorder,
		NewMetrics(prometheus.NewRegistry()),
		logger,
	)
	o.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return o
}

func TestHandleMessage_DirectMatch(t *testing.T) {
	llm := &fakeLLM{reply: "no debería llamarse"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "Gasté 50€ en supermercado")
	require.NoError(t, err)

	added, ok := reply.(ExpenseAddedReply)
	require.True(t, ok, "expected ExpenseAddedReply, got %T", reply)
	assert.Equal(t, "Alimentación", added.Expense.Category)
	assert.Equal(t, "Supermercado", added.Expense.Subcategory)
	assert.Equal(t, "2024-03-15", added.Expense.Date)
	assert.True(t, added.Expense.Amount.Equal(decimal.NewFromInt(50)))
	assert.Contains(t, added.Content, "Gasto añadido")

	// The LLM was never consulted.
	assert.Empty(t, llm.gotUser)
}

func TestHandleMessage_DirectMatch_NoCategories(t *testing.T) {
	recorder := &recordingFake{}
	o := newTestOrchestrator(taxonomy.NewCategorySet(), &fakeLLM{}, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "gasté 20€ en cine")
	require.NoError(t, err)

	assert.Equal(t, PlainReply{Content: MsgNoCategories}, reply)
	assert.Empty(t, recorder.drafts, "recorder must never be reached without categories")
}

func TestHandleMessage_FallbackPlainAnswer(t *testing.T) {
	llm := &fakeLLM{reply: "Este mes llevas gastados 210€, sobre todo en alimentación."}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "¿cuánto llevo gastado este mes?")
	require.NoError(t, err)

	assert.Equal(t, PlainReply{Content: llm.reply}, reply)
	assert.Empty(t, recorder.drafts)
	// The prompt carries the exact category names.
	assert.Contains(t, llm.gotSystem, "Alimentación")
	assert.Contains(t, llm.gotSystem, "Transporte")
	assert.Contains(t, llm.gotSystem, "ADD_EXPENSE")
}

func TestHandleMessage_FallbackDirective(t *testing.T) {
	llm := &fakeLLM{reply: "¡Apuntado!\n[ACTION:{\"type\":\"ADD_EXPENSE\",\"amount\":\"12.50\",\"category\":\"Alimentación\",\"description\":\"fruta del mercado\",\"date\":\"2024-03-14\"}]"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "ayer compré algo de fruta por doce cincuenta")
	require.NoError(t, err)

	added, ok := reply.(ExpenseAddedReply)
	require.True(t, ok, "expected ExpenseAddedReply, got %T", reply)
	assert.Equal(t, "¡Apuntado!", added.Content, "directive must be stripped from visible text")
	assert.Equal(t, "Alimentación", added.Expense.Category)
	assert.Equal(t, "Fruta", added.Expense.Subcategory)
	assert.Equal(t, "2024-03-14", added.Expense.Date)
	assert.True(t, added.Expense.Amount.Equal(decimal.RequireFromString("12.50")))
}

func TestHandleMessage_DirectiveSpansNewlines(t *testing.T) {
	llm := &fakeLLM{reply: "Hecho.\n[ACTION:{\"type\":\"ADD_EXPENSE\",\n\"amount\":\"5.00\",\n\"category\":\"Transporte\",\n\"description\":\"metro\"}]"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "he cogido el metro")
	require.NoError(t, err)

	added, ok := reply.(ExpenseAddedReply)
	require.True(t, ok)
	assert.Equal(t, "Transporte", added.Expense.Category)
}

func TestHandleMessage_MalformedDirectiveStripped(t *testing.T) {
	llm := &fakeLLM{reply: "Voy a apuntarlo.\n[ACTION:{\"type\":\"ADD_EXPENSE\",}]"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "apúntame algo")
	require.NoError(t, err)

	assert.Equal(t, PlainReply{Content: "Voy a apuntarlo."}, reply)
	assert.Empty(t, recorder.drafts)
}

func TestHandleMessage_DirectiveWithoutCategories(t *testing.T) {
	llm := &fakeLLM{reply: "Apuntado.\n[ACTION:{\"type\":\"ADD_EXPENSE\",\"amount\":\"9.00\",\"category\":\"Ocio\",\"description\":\"cine\"}]"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(taxonomy.NewCategorySet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "fui al cine")
	require.NoError(t, err)

	plain, ok := reply.(PlainReply)
	require.True(t, ok)
	assert.Contains(t, plain.Content, "Apuntado.")
	assert.Contains(t, plain.Content, MsgNoCategories)
	assert.Empty(t, recorder.drafts, "recorder must never be reached without categories")
}

func TestHandleMessage_DirectiveUnknownCategory(t *testing.T) {
	llm := &fakeLLM{reply: "Listo!\n[ACTION:{\"type\":\"ADD_EXPENSE\",\"amount\":\"12.50\",\"category\":\"Ocio\",\"description\":\"cine\"}]"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "fui al cine ayer")
	require.NoError(t, err)

	plain, ok := reply.(PlainReply)
	require.True(t, ok)
	assert.Contains(t, plain.Content, "Listo!")
	assert.Contains(t, plain.Content, MsgInvalidCategory)
	assert.Empty(t, recorder.drafts, "recorder must never see a category outside the set")
}

func TestHandleMessage_DirectiveDefaults(t *testing.T) {
	// Missing name, unparseable amount, no date: defaults kick in.
	llm := &fakeLLM{reply: "Ok.\n[ACTION:{\"type\":\"ADD_EXPENSE\",\"amount\":\"unos veinte\",\"category\":\"Transporte\"}]"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "gasolina")
	require.NoError(t, err)

	added, ok := reply.(ExpenseAddedReply)
	require.True(t, ok)
	assert.Equal(t, "Gasto añadido desde chat", added.Expense.Name)
	assert.True(t, added.Expense.Amount.IsZero(), "unparseable amount records as zero")
	assert.Equal(t, "2024-03-15", added.Expense.Date)
	assert.Equal(t, expenses.PaymentCard, added.Expense.PaymentMethod)
}

func TestHandleMessage_UnknownDirectiveTypeStripped(t *testing.T) {
	llm := &fakeLLM{reply: "Hecho.\n[ACTION:{\"type\":\"DELETE_EXPENSE\",\"description\":\"cine\"}]"}
	recorder := &recordingFake{}
	o := newTestOrchestrator(testSet(), llm, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "borra el gasto del cine")
	require.NoError(t, err)

	assert.Equal(t, PlainReply{Content: "Hecho."}, reply)
	assert.Empty(t, recorder.drafts)
}

func TestHandleMessage_LLMErrorPropagates(t *testing.T) {
	llm := &fakeLLM{err: ErrAPIKeyNotConfigured}
	o := newTestOrchestrator(testSet(), llm, &recordingFake{})

	_, err := o.HandleMessage(context.Background(), uuid.New(), "¿qué tal voy este mes?")
	assert.ErrorIs(t, err, ErrAPIKeyNotConfigured)
}

func TestHandleMessage_DirectRecordFailure(t *testing.T) {
	recorder := &recordingFake{err: errors.New("db down")}
	o := newTestOrchestrator(testSet(), &fakeLLM{}, recorder)

	reply, err := o.HandleMessage(context.Background(), uuid.New(), "gasté 30€ en gasolina")
	require.NoError(t, err)
	assert.Equal(t, PlainReply{Content: MsgAddFailed}, reply)
}

func TestConversation_AppendOnly(t *testing.T) {
	c := NewConversation()
	c.Append(Message{Role: RoleUser, Content: "hola"})
	c.Append(Message{Role: RoleAssistant, Content: "¿en qué te ayudo?", Action: ""})

	msgs := c.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)

	// Mutating the copy does not touch the log.
	msgs[0].Content = "cambiado"
	assert.Equal(t, "hola", c.Messages()[0].Content)
	assert.Equal(t, 2, c.Len())
}

func TestConversationLog_PerUser(t *testing.T) {
	log := NewConversationLog()
	alice := uuid.New()
	bob := uuid.New()

	log.For(alice).Append(Message{Role: RoleUser, Content: "hola"})

	assert.Same(t, log.For(alice), log.For(alice))
	assert.Equal(t, 1, log.For(alice).Len())
	assert.Equal(t, 0, log.For(bob).Len())
}
