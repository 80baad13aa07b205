package extraction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveDate(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("yesterday", func(t *testing.T) {
		assert.Equal(t, "2024-03-14", ResolveDate("cené fuera ayer", now))
	})

	t.Run("n days ago", func(t *testing.T) {
		assert.Equal(t, "2024-03-12", ResolveDate("gasté 20 en taxi hace 3 días", now))
		assert.Equal(t, "2024-03-14", ResolveDate("hace 1 día", now))
	})

	t.Run("n months ago", func(t *testing.T) {
		assert.Equal(t, "2024-01-15", ResolveDate("hace 2 meses", now))
	})

	t.Run("last month", func(t *testing.T) {
		assert.Equal(t, "2024-02-15", ResolveDate("la compra del mes pasado", now))
		assert.Equal(t, "2024-02-15", ResolveDate("el mes pasado", now))
	})

	t.Run("no phrase returns reference date", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", ResolveDate("gasté 50 en supermercado", now))
		assert.Equal(t, "2024-03-15", ResolveDate("", now))
	})

	t.Run("first rule wins when phrases overlap", func(t *testing.T) {
		// "mes pasado" sits earlier in the rule list than "ayer".
		assert.Equal(t, "2024-02-15", ResolveDate("ayer pensé en el gasto del mes pasado", now))
	})

	t.Run("case insensitive", func(t *testing.T) {
		assert.Equal(t, "2024-03-14", ResolveDate("AYER", now))
	})
}
