package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigInvalid  = errors.New("config file is not valid JSON")
)

// File is the key-value record read from the JSON config file.
type File map[string]any

// LoadFile reads the JSON config at path. A missing file and malformed JSON are
// reported as ErrConfigNotFound and ErrConfigInvalid respectively.
func LoadFile(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrConfigInvalid, path, err)
	}
	if file == nil {
		file = File{}
	}
	return file, nil
}

// String returns the trimmed string value stored under key, or "" when absent or not a string.
func (f File) String(key string) string {
	raw, ok := f[key]
	if !ok {
		return ""
	}
	value, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
