package lifecycle

import (
	"fmt"
	"strconv"
	"strings"
)

const referencePrefix = "WA"

// ReferencePrefix is the LIKE prefix shared by every reference of year.
func ReferencePrefix(year int) string {
	return fmt.Sprintf("%s-%d-", referencePrefix, year)
}

// NextReference returns the reference following latest within year. An
// empty, foreign-year or malformed latest starts the sequence at 1.
func NextReference(latest string, year int) string {
	seq := 1
	prefix := ReferencePrefix(year)
	if rest, ok := strings.CutPrefix(latest, prefix); ok {
		if n, err := strconv.Atoi(rest); err == nil && n > 0 {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%06d", prefix, seq)
}
