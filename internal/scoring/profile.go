package scoring

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// NoProfile is sent to the model when no profile file is available.
const NoProfile = "Profile not provided."

// LoadProfile reads a YAML profile and renders it back as YAML text for the
// prompt. A missing file yields NoProfile.
func LoadProfile(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return NoProfile, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return NoProfile, nil
	}
	if err != nil {
		return "", fmt.Errorf("reading profile %q: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", fmt.Errorf("parsing profile %q: %w", path, err)
	}
	if doc.Kind == 0 {
		return NoProfile, nil
	}

	out, err := yaml.Marshal(&doc)
	if err != nil {
		return "", fmt.Errorf("rendering profile: %w", err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return NoProfile, nil
	}
	return text, nil
}
