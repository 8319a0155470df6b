package termsession

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateID produces a session identifier of the form "sess_" followed
// by 8 alphanumeric characters, derived from a random UUID.
func GenerateID() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	var b strings.Builder
	b.WriteString("sess_")
	for _, r := range raw {
		if b.Len() >= 13 { // "sess_" + 8 chars
			break
		}
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') {
			b.WriteRune(r)
		}
	}
	for b.Len() < 13 {
		b.WriteByte('0')
	}
	return b.String()
}
