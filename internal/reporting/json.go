package reporting

import (
	"encoding/json"
	"fmt"
)

// RenderJSONReceipt renders the run receipt as indented JSON, the form the
// job layer consumes.
func RenderJSONReceipt(r *Report) ([]byte, error) {
	out, err := json.MarshalIndent(r.Receipt(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal receipt: %w", err)
	}
	return out, nil
}
