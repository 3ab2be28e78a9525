package identity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const identityFile = "identity"

// Load returns the opaque per-user identity string. GAUNTLET_USER overrides
// everything; otherwise the identity is a UUID minted on first use and
// persisted under dir. A non-nil error means identity is not ready and runs
// must be refused.
func Load(dir string) (string, error) {
	if v := strings.TrimSpace(os.Getenv("GAUNTLET_USER")); v != "" {
		return v, nil
	}

	path := filepath.Join(dir, identityFile)
	data, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(data))
		if id != "" {
			return id, nil
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("reading identity file: %w", err)
	}

	id := uuid.NewString()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating identity directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing identity file: %w", err)
	}
	return id, nil
}
