package executor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// canonicalKey produces an order-independent structural hash of a result
// value. The value is normalized through JSON so that map key ordering
// never causes false mismatches between structurally equal results.
func canonicalKey(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		// Non-serializable results fall back to their Go representation.
		return fmt.Sprintf("%#v", v)
	}

	var normalized interface{}
	if err := json.Unmarshal(b, &normalized); err != nil {
		return fmt.Sprintf("%#v", v)
	}

	// Re-marshalling the normalized form sorts all map keys.
	canonical, err := json.Marshal(normalized)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}

	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])
}
