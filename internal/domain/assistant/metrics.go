package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts extractor outcomes. Registered once at wiring time.
type Metrics struct {
	DirectMatches  prometheus.Counter
	AIFallbacks    prometheus.Counter
	ExpensesAdded  *prometheus.CounterVec
	LLMErrors      prometheus.Counter
	DirectiveDrops prometheus.Counter
}

// NewMetrics registers the assistant metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		DirectMatches: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_direct_matches_total",
			Help: "Messages resolved by the direct pattern matcher without an LLM call.",
		}),
		AIFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_ai_fallbacks_total",
			Help: "Messages escalated to the LLM endpoint.",
		}),
		ExpensesAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "assistant_expenses_added_total",
			Help: "Expenses recorded, by extraction source.",
		}, []string{"source"}),
		LLMErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_llm_errors_total",
			Help: "Failed LLM calls.",
		}),
		DirectiveDrops: factory.NewCounter(prometheus.CounterOpts{
			Name: "assistant_directive_drops_total",
			Help: "Action directives stripped because they could not be applied.",
		}),
	}
}
