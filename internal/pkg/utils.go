package pkg

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewID returns "<prefix>_<unix millis>_<random>". IDs with the same prefix
// sort roughly by creation time.
func NewID(prefix string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UTC().UnixMilli(), random)
}

// NormalizeSymbol is the form token symbols are compared in.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
