package schedule

import (
	"fmt"
	"time"
)

// Titles are rendered in Spanish regardless of the host locale, so the day and
// month names are fixed tables rather than anything locale-derived. weekdaysEs
// is indexed by time.Weekday (Sunday first).
var weekdaysEs = [...]string{"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"}

var monthsEs = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// BuildTitle renders the canonical title for a slot on the given date, e.g.
// "Misa 12h - Sábado 14 de febrero". Generated titles are also what dedupe
// matches against, so the format must stay stable across runs.
func BuildTitle(prefix string, date time.Time) string {
	return fmt.Sprintf("%s - %s %d de %s", prefix, weekdaysEs[date.Weekday()], date.Day(), monthsEs[date.Month()-1])
}
