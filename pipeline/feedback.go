package pipeline

import (
	"fmt"
	"os"
	"strings"

	"github.com/lexandro/bugreport-agent/language"
)

// ResolveFeedback returns the contents of value when it names a regular file,
// and value itself otherwise.
func ResolveFeedback(value string) (string, error) {
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("feedback is required")
	}
	info, err := os.Stat(value)
	if err != nil || !info.Mode().IsRegular() {
		return value, nil
	}
	return ReadFeedbackFile(value)
}

// ReadFeedbackFile reads and decodes a feedback file. A blank file is an error.
func ReadFeedbackFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading feedback file %s: %w", path, err)
	}
	text := language.DecodeText(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("feedback file %s is empty", path)
	}
	return text, nil
}
