// Package catalog loads the pharmacy product list and answers the lookups the
// voice agent needs.
package catalog

import (
	"strings"
	"sync"

	"github.com/lapu-lapu-poc/server/internal/model"
	logx "github.com/lapu-lapu-poc/server/pkg/logger"
)

// Store lazily loads the catalog on first access and is read-only afterwards.
type Store struct {
	paths []string

	once     sync.Once
	products []model.Product
	index    []string // lower-cased searchable text, parallel to products
	source   string
}

// NewStore returns a Store that loads from the first existing path.
func NewStore(paths ...string) *Store {
	return &Store{paths: paths}
}

// NewStoreFromProducts builds an already-loaded Store, mostly for tests.
func NewStoreFromProducts(products []model.Product) *Store {
	s := &Store{}
	s.once.Do(func() { s.setProducts(products, "memory") })
	return s
}

func (s *Store) load() {
	s.once.Do(func() {
		path, ok := firstExisting(s.paths)
		if !ok {
			logx.Warn().
				Str("component", "catalog").
				Strs("paths", s.paths).
				Msg("products CSV not found, using empty catalog")
			s.setProducts(nil, "")
			return
		}

		products, err := readFile(path)
		if err != nil {
			logx.Error().Err(err).Str("component", "catalog").Str("path", path).Msg("failed to load products")
			s.setProducts(nil, "")
			return
		}

		s.setProducts(products, path)
		logx.Info().
			Str("component", "catalog").
			Str("path", path).
			Int("count", len(products)).
			Msg("loaded products")
	})
}

func (s *Store) setProducts(products []model.Product, source string) {
	s.products = products
	s.source = source
	s.index = make([]string, len(products))
	for i, p := range products {
		s.index[i] = strings.ToLower(strings.Join([]string{
			p.ProductName,
			p.GenericName,
			p.DrugClass,
			p.Category,
			p.Description,
			p.Indications,
		}, " "))
	}
}

// All returns every product in catalog order.
func (s *Store) All() []model.Product {
	s.load()
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out
}

// Len returns the number of loaded products.
func (s *Store) Len() int {
	s.load()
	return len(s.products)
}

// Source returns the file the catalog was loaded from, or "" if none was found.
func (s *Store) Source() string {
	s.load()
	return s.source
}

// Search returns every product whose searchable text contains all whitespace
// separated query terms, case-insensitively. An empty query matches everything.
func (s *Store) Search(query string) []model.Product {
	s.load()
	terms := strings.Fields(strings.ToLower(query))

	var matches []model.Product
	for i, text := range s.index {
		if containsAll(text, terms) {
			matches = append(matches, s.products[i])
		}
	}
	return matches
}

func containsAll(text string, terms []string) bool {
	for _, t := range terms {
		if !strings.Contains(text, t) {
			return false
		}
	}
	return true
}

// GetByName looks up a product by exact name, ignoring case.
func (s *Store) GetByName(name string) (model.Product, bool) {
	s.load()
	for _, p := range s.products {
		if strings.EqualFold(p.ProductName, name) {
			return p, true
		}
	}
	return model.Product{}, false
}

// GetByCategory returns every product in the category, ignoring case.
func (s *Store) GetByCategory(category string) []model.Product {
	s.load()
	var out []model.Product
	for _, p := range s.products {
		if strings.EqualFold(p.Category, category) {
			out = append(out, p)
		}
	}
	return out
}

// ListCategories returns the distinct categories in first-seen order.
func (s *Store) ListCategories() []string {
	s.load()
	seen := make(map[string]struct{})
	var out []string
	for _, p := range s.products {
		if _, ok := seen[p.Category]; ok {
			continue
		}
		seen[p.Category] = struct{}{}
		out = append(out, p.Category)
	}
	return out
}
