package booking

import (
	"strings"

	"github.com/google/uuid"
)

// referenceCodePrefix marks human-readable appointment reference codes.
const referenceCodePrefix = "APP-"

// NewReferenceCode generates a reference code of the form APP-XXXXXXXXXXXX
// with twelve uppercase hex characters drawn from a random UUID. Collisions
// are negligible in practice; the scheduler still retries once on a unique
// constraint violation.
func NewReferenceCode() string {
	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return referenceCodePrefix + strings.ToUpper(token[:12])
}
