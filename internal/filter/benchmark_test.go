package filter

import (
	"strconv"
	"testing"

	"github.com/JonMunkholm/csvcore/internal/core"
)

func benchTable(rows int) *core.Table {
	sites := make([]string, rows)
	temps := make([]float64, rows)
	for i := range rows {
		sites[i] = "site-" + strconv.Itoa(i%250)
		temps[i] = float64(i%97) / 3
	}
	return core.MustTable(
		core.NewTextColumn("site", sites),
		core.NewNumericColumn("temp", temps),
	)
}

func BenchmarkApply(b *testing.B) {
	t := benchTable(50000)

	spec := NewSpec()
	_ = spec.Set("site", StartsWith("site-1"))
	_ = spec.Set("temp", Between(5, 20))

	b.Run("filter", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			Apply(t, spec)
		}
	})

	sorted := NewSpec()
	_ = sorted.Set("temp", GreaterThan(10))
	sorted.SetSort("site", true)

	b.Run("filter_and_sort", func(b *testing.B) {
		b.ReportAllocs()
		for b.Loop() {
			Apply(t, sorted)
		}
	})
}

// BenchmarkCount skips materializing the filtered table.
func BenchmarkCount(b *testing.B) {
	t := benchTable(50000)
	spec := NewSpec()
	_ = spec.Set("site", InList("site-1", "site-2", "site-3"))

	for b.Loop() {
		Count(t, spec)
	}
}
