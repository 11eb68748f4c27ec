package common

import (
	"github.com/google/uuid"
)

// NewAnalysisID generates a unique analysis ID.
// Format: an_<uuid>
func NewAnalysisID() string {
	return "an_" + uuid.New().String()
}
