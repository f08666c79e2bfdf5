package tools

import (
	"fmt"
	"strings"
)

func Join[T fmt.Stringer](arr []T, sep string) string {
	arrStr := make([]string, len(arr))
	for i, v := range arr {
		arrStr[i] = v.String()
	}
	return strings.Join(arrStr, sep)
}

// SplitList splits s on sep, trims every item and reports the position of
// the first empty item, if any.
func SplitList(s string, sep string) ([]string, int) {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
		if parts[i] == "" {
			return nil, i
		}
	}
	return parts, -1
}
