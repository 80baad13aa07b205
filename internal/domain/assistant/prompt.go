package assistant

import (
	"strconv"
	"strings"

	"github.com/FACorreiaa/expense-assistant/internal/domain/search"
	"github.com/FACorreiaa/expense-assistant/internal/domain/snapshot"
	"github.com/FACorreiaa/expense-assistant/internal/domain/taxonomy"
	"github.com/FACorreiaa/expense-assistant/pkg/money"
)

// BuildSystemPrompt renders the snapshot, the user's exact category list and
// the action-directive contract into the system prompt. Category names are
// embedded verbatim so the model can echo them back unchanged.
func BuildSystemPrompt(snap snapshot.Snapshot, set *taxonomy.CategorySet, similar []search.Hit) string {
	var b strings.Builder

	b.WriteString("Eres el asistente financiero personal del usuario. ")
	b.WriteString("Respondes siempre en español, en un tono cercano y breve (máximo 4 frases salvo que el usuario pida detalle).\n\n")

	b.WriteString("CONTEXTO FINANCIERO DEL USUARIO (mes " + snap.Month + "):\n")

	if len(snap.History) > 0 {
		b.WriteString("Histórico mensual de gasto:\n")
		for _, mt := range snap.History {
			b.WriteString("  " + mt.Month + ": " + money.FormatEuro(mt.Total) + "\n")
		}
	}

	if len(snap.Categories) > 0 {
		b.WriteString("Gasto del mes actual por categoría:\n")
		for _, c := range snap.Categories {
			b.WriteString("  " + c.Key + ": " + money.FormatEuro(c.Spent))
			if c.Budget.IsPositive() {
				b.WriteString(" de " + money.FormatEuro(c.Budget) + " presupuestados (" + c.PercentUsed.String() + "%)")
			}
			b.WriteString(", proyección fin de mes " + money.FormatEuro(c.Projection) +
				" (confianza " + string(c.Confidence) + ")\n")
		}
		b.WriteString("Total gastado este mes: " + money.FormatEuro(snap.TotalSpent) + "\n")
	}

	if snap.Income.IsPositive() {
		b.WriteString("Ingresos mensuales: " + money.FormatEuro(snap.Income) +
			". Disponible: " + money.FormatEuro(snap.Available) + "\n")
	}

	if len(snap.Goals) > 0 {
		b.WriteString("Objetivos de ahorro:\n")
		for _, g := range snap.Goals {
			b.WriteString("  " + g.Name + ": " + money.FormatEuro(g.Saved) + " de " +
				money.FormatEuro(g.Target) + " (" + g.Percent.String() + "%)\n")
		}
	}

	if len(snap.Recurring) > 0 {
		b.WriteString("Gastos recurrentes:\n")
		for _, r := range snap.Recurring {
			b.WriteString("  " + r.Name + ": " + money.FormatEuro(r.Amount) + " el día " +
				strconv.Itoa(r.DayOfMonth) + " de cada mes\n")
		}
	}

	if len(similar) > 0 {
		b.WriteString("Gastos anteriores parecidos al mensaje actual:\n")
		for _, h := range similar {
			b.WriteString("  " + h.Document.Name + " (" + h.Document.Category + ", " +
				h.Document.Amount + "€, " + h.Document.Date + ")\n")
		}
	}

	b.WriteString("\nCATEGORÍAS VÁLIDAS (usa estos nombres EXACTOS, sin cambiar mayúsculas ni tildes):\n")
	for _, key := range set.Keys() {
		b.WriteString("  - " + key)
		if subs := set.Subcategories(key); len(subs) > 0 {
			b.WriteString(" (subcategorías: " + strings.Join(subs, ", ") + ")")
		}
		b.WriteString("\n")
	}

	b.WriteString(`
REGLAS:
1. Si el usuario describe una compra o un gasto, añade al FINAL de tu respuesta exactamente un bloque con este formato:
[ACTION:{"type":"ADD_EXPENSE","amount":"<importe con 2 decimales>","category":"<nombre exacto de la lista>","description":"<máximo 50 caracteres>","date":"YYYY-MM-DD"}]
2. La categoría del bloque debe ser EXACTAMENTE una de las de la lista anterior.
3. Si el usuario solo hace una pregunta, responde sin bloque ACTION.
4. Cuando des proyecciones o estimaciones, indica la confianza (alta, media o baja).
5. No inventes datos que no estén en el contexto.
`)

	return b.String()
}
