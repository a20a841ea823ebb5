package reader

import (
	"strconv"

	"github.com/JonMunkholm/csvcore/internal/core"
)

// excelColumnName converts a 0-based index to Excel-style column name.
// Examples: 0 -> A, 25 -> Z, 26 -> AA, 701 -> ZZ, 702 -> AAA
func excelColumnName(index int) string {
	result := ""
	index++

	for index > 0 {
		index--
		result = string(rune('A'+index%26)) + result
		index /= 26
	}

	return result
}

// NormalizeHeaders cleans header cells and makes every name unique.
//
// Rules:
//   - Cells are cleaned with core.CleanCell
//   - Empty names become Unnamed_A, Unnamed_B, ..., Unnamed_AA, ...
//   - Repeated names get a ".1", ".2", ... suffix in order of appearance
//
// Example:
//
//	Input:  ["name", "", "age", "name", "  "]
//	Output: ["name", "Unnamed_A", "age", "name.1", "Unnamed_B"]
func NormalizeHeaders(header []string) []string {
	normalized := make([]string, len(header))
	seen := make(map[string]int, len(header))
	emptyCount := 0

	for i, h := range header {
		name := core.CleanCell(h)
		if name == "" {
			name = "Unnamed_" + excelColumnName(emptyCount)
			emptyCount++
		}

		if n, dup := seen[name]; dup {
			candidate := name
			for {
				n++
				candidate = name + "." + strconv.Itoa(n)
				if _, taken := seen[candidate]; !taken {
					break
				}
			}
			seen[name] = n
			name = candidate
		}
		seen[name] = 0
		normalized[i] = name
	}

	return normalized
}
