package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jalai-llc/bundongsan/internal/models"
)

// Index maps postal codes to coordinates. The zero value is an empty index.
type Index struct {
	coords map[string]models.Coordinate
}

// NewIndex builds an index from an in-memory table.
func NewIndex(coords map[string]models.Coordinate) *Index {
	idx := &Index{coords: make(map[string]models.Coordinate, len(coords))}
	for zip, c := range coords {
		idx.coords[normalizeZip(zip)] = c
	}
	return idx
}

// LoadIndex reads a CSV file with zipcode,lat,lng rows. A header row is skipped.
func LoadIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coordinates file: %w", err)
	}
	defer f.Close()
	return ReadIndex(f)
}

// ReadIndex parses zipcode,lat,lng rows. Rows that do not parse are skipped.
func ReadIndex(r io.Reader) (*Index, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	idx := &Index{coords: make(map[string]models.Coordinate)}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read coordinates: %w", err)
		}
		if len(rec) < 3 {
			continue
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
		lng, errLng := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if errLat != nil || errLng != nil {
			continue
		}
		idx.coords[normalizeZip(rec[0])] = models.Coordinate{Lat: lat, Lng: lng}
	}
	return idx, nil
}

// Lookup returns the coordinate for a postal code. An empty code never resolves.
func (i *Index) Lookup(zip string) (models.Coordinate, bool) {
	zip = normalizeZip(zip)
	if i == nil || i.coords == nil || zip == "" {
		return models.Coordinate{}, false
	}
	c, ok := i.coords[zip]
	return c, ok
}

// Resolve prefers the record's own coordinate and falls back to its zipcode.
func (i *Index) Resolve(p models.Property) (models.Coordinate, bool) {
	if p.Coordinate != nil {
		return *p.Coordinate, true
	}
	if p.Zipcode == "" {
		return models.Coordinate{}, false
	}
	return i.Lookup(p.Zipcode)
}

// Len returns the number of indexed postal codes.
func (i *Index) Len() int {
	if i == nil {
		return 0
	}
	return len(i.coords)
}

// normalizeZip trims whitespace and ZIP+4 suffixes.
func normalizeZip(zip string) string {
	zip = strings.TrimSpace(zip)
	if n := strings.IndexByte(zip, '-'); n > 0 {
		zip = zip[:n]
	}
	return zip
}
