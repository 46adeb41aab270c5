package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_BuildTitle(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		date   time.Time
		want   string
	}{
		{
			"saturday mass",
			"Misa 12h",
			time.Date(2026, 2, 14, 0, 0, 0, 0, time.UTC),
			"Misa 12h - Sábado 14 de febrero",
		},
		{
			"monday on new year's day",
			"Misa 10h",
			time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			"Misa 10h - Lunes 1 de enero",
		},
		{
			"accented weekday",
			"Vela 21h",
			time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC),
			"Vela 21h - Miércoles 31 de diciembre",
		},
		{
			"sunday in summer",
			"Misa 20h",
			time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC),
			"Misa 20h - Domingo 2 de agosto",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildTitle(tt.prefix, tt.date))
		})
	}
}
