package studio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrNoStorageState = errors.New("no storage state file configured")

// ResolveStorageStatePath turns the configured location into a concrete file:
// the path itself when it names a file, or the single .json file inside it
// when it names a directory. Anything ambiguous is an error rather than a
// guess, since creating broadcasts under the wrong session is hard to undo.
func ResolveStorageStatePath(path string) (string, error) {
	if path == "" {
		return "", ErrNoStorageState
	}
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to locate storage state %s: %w", path, err)
	}
	if !info.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("failed to read storage state directory %s: %w", path, err)
	}
	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		candidates = append(candidates, filepath.Join(path, entry.Name()))
	}
	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("no .json storage state file found in %s", path)
	case 1:
		return candidates[0], nil
	default:
		return "", fmt.Errorf("found %d .json files in %s; configure one explicitly", len(candidates), path)
	}
}

// LoadStorageState resolves and reads the configured storage state, requiring
// syntactically valid JSON before any broadcast work starts.
func LoadStorageState(path string) (json.RawMessage, error) {
	file, err := ResolveStorageStatePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read storage state %s: %w", file, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("storage state %s is not valid JSON", file)
	}
	return data, nil
}
