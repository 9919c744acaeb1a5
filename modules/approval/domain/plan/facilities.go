package plan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidateFacilities rejects facility entries that are themselves JSON
// encodings of a list. The legacy store ended up with double-encoded array
// columns that needed manual repair; refusing such input at write time keeps
// the persisted form single-encoded.
func ValidateFacilities(facilities []string) error {
	for _, f := range facilities {
		trimmed := strings.TrimSpace(f)
		if trimmed == "" {
			return fmt.Errorf("facility name must not be empty")
		}
		if strings.HasPrefix(trimmed, "[") {
			var nested []any
			if err := json.Unmarshal([]byte(trimmed), &nested); err == nil {
				return fmt.Errorf("facility %q looks like an already-encoded list", f)
			}
		}
	}
	return nil
}
