package extract

import (
	"fmt"
	"strings"

	"github.com/lu4p/cat"
)

// extractCat reads OpenDocument text and RTF, detecting the format from content.
func extractCat(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	return strings.TrimSpace(text), nil
}
