package util

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReadDict reads one structured action mapping from a JSON file.
func ReadDict(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	dict := make(map[string]any)
	if err := json.Unmarshal(data, &dict); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return dict, nil
}

// ReadDictList reads an ordered list of structured action mappings from a
// JSON file, one mapping per step.
func ReadDictList(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	list := make([]map[string]any, 0)
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return list, nil
}

// ReadVector reads a flat numeric vector from a JSON file.
func ReadVector(path string) ([]float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	vect := make([]float64, 0)
	if err := json.Unmarshal(data, &vect); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return vect, nil
}
