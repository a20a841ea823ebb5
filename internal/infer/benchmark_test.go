package infer

import (
	"strconv"
	"testing"

	"github.com/JonMunkholm/csvcore/internal/core"
)

func BenchmarkInfer(b *testing.B) {
	const rows = 10000
	ids := make([]string, rows)
	when := make([]string, rows)
	region := make([]string, rows)
	for i := range rows {
		ids[i] = strconv.Itoa(i)
		when[i] = "2024-01-16 13:44:" + strconv.Itoa(10+i%50)
		region[i] = [...]string{"north", "south", "east", "west"}[i%4]
	}
	t := core.MustTable(
		core.NewTextColumn("id", ids),
		core.NewTextColumn("when", when),
		core.NewTextColumn("region", region),
	)
	inf := New(Options{Logger: discard})

	b.ReportAllocs()
	for b.Loop() {
		inf.Infer(t)
	}
}

func BenchmarkClassifySample(b *testing.B) {
	values := []string{"1/16/2024 1:44:01 PM", "1/17/2024 8:00:00 AM", "", "1/18/2024 9:30:00 AM"}
	for b.Loop() {
		ClassifySample(values)
	}
}
