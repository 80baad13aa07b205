package extraction

import (
	"regexp"
	"strconv"
	"strings"
)

// numberWord pairs a Spanish number word with its integer value. The slice is
// scanned in declaration order, which matters for the containment fallback
// below: a phrase holding several number words yields whichever entry appears
// first in this table, not the word that occurs first in the text. That quirk
// is long-standing observable behavior and is kept on purpose.
type numberWord struct {
	word  string
	value int
}

var numberWords = []numberWord{
	{"cero", 0},
	{"uno", 1}, {"una", 1},
	{"dos", 2},
	{"tres", 3},
	{"cuatro", 4},
	{"cinco", 5},
	{"seis", 6},
	{"siete", 7},
	{"ocho", 8},
	{"nueve", 9},
	{"diez", 10},
	{"once", 11},
	{"doce", 12},
	{"trece", 13},
	{"catorce", 14},
	{"quince", 15},
	{"dieciséis", 16}, {"dieciseis", 16},
	{"diecisiete", 17},
	{"dieciocho", 18},
	{"diecinueve", 19},
	{"veinte", 20},
	{"veintiuno", 21},
	{"veintidós", 22}, {"veintidos", 22},
	{"veintitrés", 23}, {"veintitres", 23},
	{"veinticuatro", 24},
	{"veinticinco", 25},
	{"veintiséis", 26}, {"veintiseis", 26},
	{"veintisiete", 27},
	{"veintiocho", 28},
	{"veintinueve", 29},
	{"treinta", 30},
	{"cuarenta", 40},
	{"cincuenta", 50},
	{"sesenta", 60},
	{"setenta", 70},
	{"ochenta", 80},
	{"noventa", 90},
	{"cien", 100}, {"ciento", 100},
	{"doscientos", 200},
	{"trescientos", 300},
	{"cuatrocientos", 400},
	{"quinientos", 500},
	{"seiscientos", 600},
	{"setecientos", 700},
	{"ochocientos", 800},
	{"novecientos", 900},
	{"mil", 1000},
}

var comaRe = regexp.MustCompile(`([\p{L}\d]+)\s+coma\s+([\p{L}\d]+)`)

// TextToNumber converts spoken Spanish numbers to a decimal value.
// "nueve coma treinta" resolves to 9.30, "veinte" to 20. The boolean is false
// when nothing in the text resolves to a number.
func TextToNumber(text string) (float64, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return 0, false
	}

	// "<word> coma <word>" is the decimal form: join both sides around a dot
	// so "treinta" keeps its trailing zero (9.30, not 9.3 + 0.3 drift).
	if m := comaRe.FindStringSubmatch(lower); m != nil {
		whole, okW := wordToInt(m[1])
		frac, okF := wordToInt(m[2])
		if okW && okF {
			if v, err := strconv.ParseFloat(strconv.Itoa(whole)+"."+strconv.Itoa(frac), 64); err == nil {
				return v, true
			}
		}
	}

	// Containment scan in table order.
	for _, nw := range numberWords {
		if strings.Contains(lower, nw.word) {
			return float64(nw.value), true
		}
	}

	return 0, false
}

// wordToInt resolves a single token through the word table, falling back to a
// literal digit parse ("nueve" and "9" are both accepted).
func wordToInt(token string) (int, bool) {
	for _, nw := range numberWords {
		if nw.word == token {
			return nw.value, true
		}
	}
	if v, err := strconv.Atoi(token); err == nil {
		return v, true
	}
	return 0, false
}
