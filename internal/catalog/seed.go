package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// LoadSeed reads a seed catalog JSON file.
func LoadSeed(path string) ([]models.Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed catalog: %w", err)
	}
	defer f.Close()
	return ReadSeed(f)
}

// ReadSeed decodes a JSON array of property records.
func ReadSeed(r io.Reader) ([]models.Property, error) {
	var records []models.Property
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode seed catalog: %w", err)
	}
	return records, nil
}

// WriteSeed encodes records as an indented JSON array.
func WriteSeed(w io.Writer, records []models.Property) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode seed catalog: %w", err)
	}
	return nil
}
