package taxonomy

import (
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// synonymEntry maps a canonical concept to the trigger words that imply it.
// The slice order is significant: when several triggers match the same text,
// the entry (and within it, the trigger) declared first wins. Downstream
// behavior depends on this tie-break, so entries must not be reordered.
type synonymEntry struct {
	// concepts are the names the matched category key is compared against.
	// Most entries carry one; "casa"/"hogar" are aliases of each other.
	concepts []string
	triggers []string
}

var synonymTable = []synonymEntry{
	{concepts: []string{"comida", "alimentación", "alimentacion"}, triggers: []string{"supermercado", "mercadona", "carrefour", "lidl", "aldi", "alimentacion", "alimentación", "comida", "fruta", "pan"}},
	{concepts: []string{"transporte"}, triggers: []string{"gasolina", "metro", "autobus", "autobús", "bus", "taxi", "uber", "cabify", "parking", "tren", "peaje"}},
	{concepts: []string{"restaurante"}, triggers: []string{"restaurante", "cena", "almuerzo", "menu", "menú", "bar", "cafeteria", "cafetería", "tapas"}},
	{concepts: []string{"ocio"}, triggers: []string{"cine", "concierto", "entradas", "netflix", "spotify", "videojuego", "fiesta", "ocio"}},
	{concepts: []string{"salud"}, triggers: []string{"farmacia", "medico", "médico", "dentista", "gimnasio", "fisio", "optica", "óptica"}},
	{concepts: []string{"ropa"}, triggers: []string{"ropa", "zara", "zapatos", "zapatillas", "camiseta", "pantalon", "pantalón", "abrigo"}},
	{concepts: []string{"casa", "hogar"}, triggers: []string{"alquiler", "hipoteca", "luz", "agua", "gas", "internet", "muebles", "limpieza"}},
	{concepts: []string{"educación", "educacion"}, triggers: []string{"curso", "libro", "universidad", "matricula", "matrícula", "academia", "clases"}},
	{concepts: []string{"tecnología", "tecnologia"}, triggers: []string{"movil", "móvil", "ordenador", "portatil", "portátil", "amazon", "auriculares", "cargador"}},
	{concepts: []string{"tabaco"}, triggers: []string{"tabaco", "cigarrillos", "vaper", "mechero"}},
}

// Resolver maps suggested names and descriptions onto canonical category
// keys. The synonym triggers are compiled once into an Aho-Corasick matcher
// so a description is scanned in a single pass regardless of table size.
type Resolver struct {
	matcher *ahocorasick.Matcher
	// entryFor maps matcher pattern index back to its synonym entry; trigger
	// patterns are registered in table order so the smallest matched index is
	// also the earliest entry in the table.
	entryFor []int
}

// NewResolver compiles the synonym table.
func NewResolver() *Resolver {
	var patterns [][]byte
	var entryFor []int
	for i, e := range synonymTable {
		for _, trig := range e.triggers {
			patterns = append(patterns, []byte(trig))
			entryFor = append(entryFor, i)
		}
	}
	return &Resolver{
		matcher:  ahocorasick.NewMatcher(patterns),
		entryFor: entryFor,
	}
}

// FindBestCategory resolves (suggested, description) against the category set
// and returns the canonical key. The boolean is false only when the set is
// empty; callers must surface that as "no categories configured" rather than
// defaulting. Resolution order: exact key match, substring either direction,
// synonym trigger, then the first key in the set. The last step intentionally
// assigns unrecognized expenses to whichever category sorts first so the add
// flow is never blocked; kept under test.
func (r *Resolver) FindBestCategory(suggested, description string, set *CategorySet) (string, bool) {
	if set == nil || set.Len() == 0 {
		return "", false
	}

	search := strings.ToLower(strings.TrimSpace(suggested))
	if search == "" {
		search = strings.ToLower(strings.TrimSpace(description))
	}
	if search == "" {
		return set.Keys()[0], true
	}

	// Exact case-insensitive key match.
	if key, ok := set.KeyFor(search); ok {
		return key, true
	}

	// Substring match either direction.
	for _, key := range set.Keys() {
		lower := strings.ToLower(key)
		if lower == "" {
			continue
		}
		if strings.Contains(lower, search) || strings.Contains(search, lower) {
			return key, true
		}
	}

	// Synonym triggers, earliest table entry wins.
	if key, ok := r.synonymMatch(search, set); ok {
		return key, true
	}

	return set.Keys()[0], true
}

// synonymMatch scans the search text for trigger words and maps the winning
// concept to a category whose key contains it or is contained by it.
func (r *Resolver) synonymMatch(search string, set *CategorySet) (string, bool) {
	hits := r.matcher.Match([]byte(search))
	if len(hits) == 0 {
		return "", false
	}

	best := hits[0]
	for _, h := range hits[1:] {
		if h < best {
			best = h
		}
	}

	entry := synonymTable[r.entryFor[best]]
	for _, concept := range entry.concepts {
		for _, key := range set.Keys() {
			lower := strings.ToLower(key)
			if lower == "" {
				continue
			}
			if strings.Contains(lower, concept) || strings.Contains(concept, lower) {
				return key, true
			}
		}
	}
	return "", false
}

// FindBestSubcategory returns the first subcategory matching the description
// by case-insensitive substring either direction, or "" when none does. There
// is no synonym table at this level.
func FindBestSubcategory(description string, subcategories []string) string {
	search := strings.ToLower(strings.TrimSpace(description))
	if search == "" {
		return ""
	}
	for _, sub := range subcategories {
		lower := strings.ToLower(sub)
		if lower == "" {
			continue
		}
		if strings.Contains(lower, search) || strings.Contains(search, lower) {
			return sub
		}
	}
	return ""
}
