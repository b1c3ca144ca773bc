// Command ingest builds the seed catalog from Zillow home value (ZHVI) and
// observed rent (ZORI) zipcode exports.
package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/jalai-llc/bundongsan/internal/catalog"
)

func main() {
	valuesPath := flag.String("values", "data/zhvi_zip.csv", "ZHVI zipcode CSV")
	rentsPath := flag.String("rents", "data/zori_zip.csv", "ZORI zipcode CSV")
	countiesPath := flag.String("counties", "", "optional YAML file overriding the county defaults")
	outPath := flag.String("out", "data/seed.json", "seed catalog output path")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	defaults := catalog.DefaultCountyDefaults()
	if *countiesPath != "" {
		data, err := os.ReadFile(*countiesPath)
		if err != nil {
			logger.Fatalf("Failed to read county defaults: %v", err)
		}
		if err := yaml.Unmarshal(data, &defaults); err != nil {
			logger.Fatalf("Failed to parse county defaults: %v", err)
		}
	}

	values, err := os.Open(*valuesPath)
	if err != nil {
		logger.Fatalf("Failed to open values file: %v", err)
	}
	defer values.Close()
	rents, err := os.Open(*rentsPath)
	if err != nil {
		logger.Fatalf("Failed to open rents file: %v", err)
	}
	defer rents.Close()

	records, err := catalog.Ingest(values, rents, defaults)
	if err != nil {
		logger.Fatalf("Failed to ingest: %v", err)
	}

	// Write to a temp file next to the output and rename, so a failed run never
	// leaves a truncated catalog.
	tmp, err := os.CreateTemp(filepath.Dir(*outPath), ".seed-*.json")
	if err != nil {
		logger.Fatalf("Failed to create temp file: %v", err)
	}
	if err := catalog.WriteSeed(tmp, records); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		logger.Fatalf("Failed to write seed catalog: %v", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		logger.Fatalf("Failed to close seed catalog: %v", err)
	}
	if err := os.Rename(tmp.Name(), *outPath); err != nil {
		os.Remove(tmp.Name())
		logger.Fatalf("Failed to move seed catalog into place: %v", err)
	}

	logger.WithFields(logrus.Fields{
		"records": len(records),
		"out":     *outPath,
	}).Info("Seed catalog written")
}
