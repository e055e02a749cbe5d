package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/shopspring/decimal"
)

// columnCount is the number of positional fields in a catalog row.
const columnCount = 15

// DefaultPaths returns the candidate catalog locations in lookup order. A
// non-empty override is tried first.
func DefaultPaths(override string) []string {
	var paths []string
	if override != "" {
		paths = append(paths, override)
	}
	if wd, err := os.Getwd(); err == nil {
		paths = append(paths,
			filepath.Join(wd, "data", "products.csv"),
			filepath.Join(wd, "apps", "api", "data", "products.csv"),
		)
	}
	if exe, err := os.Executable(); err == nil {
		paths = append(paths, filepath.Join(filepath.Dir(exe), "..", "data", "products.csv"))
	}
	return paths
}

// firstExisting returns the first path that points at a regular file.
func firstExisting(paths []string) (string, bool) {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, true
		}
	}
	return "", false
}

// readFile opens and parses the catalog at path.
func readFile(path string) ([]model.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a comma-delimited catalog whose first row is a header. Quoted
// fields may embed the delimiter. Missing columns become empty strings and
// unparsable prices become 0.
func Parse(r io.Reader) ([]model.Product, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var products []model.Product
	header := true
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse catalog: %w", err)
		}
		if header {
			header = false
			continue
		}
		if isBlank(rec) {
			continue
		}
		products = append(products, rowToProduct(rec))
	}
	return products, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func rowToProduct(rec []string) model.Product {
	if len(rec) < columnCount {
		rec = append(rec, make([]string, columnCount-len(rec))...)
	}
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	return model.Product{
		ProductName:       rec[0],
		GenericName:       rec[1],
		DrugClass:         rec[2],
		SizeVariant:       rec[3],
		RegularPrice:      parsePrice(rec[4]),
		PWDSeniorPrice:    parsePrice(rec[5]),
		Category:          rec[6],
		Description:       rec[7],
		MechanismOfAction: rec[8],
		Indications:       rec[9],
		DosageInfo:        rec[10],
		ActiveIngredients: rec[11],
		ImportantInfo:     rec[12],
		Contraindications: rec[13],
		Warnings:          rec[14],
	}
}

// parsePrice tolerates currency noise such as "₱1,250.50" and falls back to 0.
func parsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "₱")
	s = strings.ReplaceAll(s, ",", "")
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return v
}
