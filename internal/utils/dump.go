package utils

import (
	"os"

	"github.com/goccy/go-json"
)

// DumpToTmpFile writes v as indented JSON to a new temp file named after
// pattern and returns the file name.
func DumpToTmpFile(pattern string, v any) (string, error) {
	file, err := os.CreateTemp("", pattern)
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return file.Name(), nil
}
