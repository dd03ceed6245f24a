// Package catalog загружает справочник препаратов, классифицирует препараты
// по H-фразам и выполняет поиск по названию и номеру AMM.
package catalog

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/phytocheck/internal/lib/textnorm"
	"github.com/magabrotheeeer/phytocheck/internal/models"
)

const (
	// DefaultLimit - число результатов поиска по умолчанию.
	DefaultLimit = 50
	// MinQueryLength - минимальная длина запроса после обрезки пробелов.
	MinQueryLength = 2
	// BundledUpdateDate - дата выгрузки встроенного справочника.
	BundledUpdateDate = "21/01/2026"
)

//go:embed data/products.json data/risk-phrases.json
var bundled embed.FS

type entry struct {
	record    models.ProductRecord
	name      string
	id        string
	secondary string
}

// Catalog - неизменяемый справочник в памяти. Безопасен для конкурентного чтения.
type Catalog struct {
	entries   []entry
	byID      map[string]int
	phrases   map[string][]models.RiskPhrase
	updatedAt string
}

// Load читает справочник из JSON-потоков препаратов и H-фраз.
func Load(products, phrases io.Reader, updatedAt string) (*Catalog, error) {
	const op = "catalog.Load"

	var records []models.ProductRecord
	if err := json.NewDecoder(products).Decode(&records); err != nil {
		return nil, fmt.Errorf("%s: decode products: %w", op, err)
	}
	riskPhrases := make(map[string][]models.RiskPhrase)
	if err := json.NewDecoder(phrases).Decode(&riskPhrases); err != nil {
		return nil, fmt.Errorf("%s: decode risk phrases: %w", op, err)
	}

	return New(records, riskPhrases, updatedAt), nil
}

// New строит справочник из уже разобранных данных. Порядок records сохраняется
// и определяет порядок результатов поиска.
func New(records []models.ProductRecord, phrases map[string][]models.RiskPhrase, updatedAt string) *Catalog {
	c := &Catalog{
		entries:   make([]entry, 0, len(records)),
		byID:      make(map[string]int, len(records)),
		phrases:   phrases,
		updatedAt: updatedAt,
	}
	if c.phrases == nil {
		c.phrases = map[string][]models.RiskPhrase{}
	}
	for _, r := range records {
		if _, dup := c.byID[r.ID]; !dup {
			c.byID[r.ID] = len(c.entries)
		}
		c.entries = append(c.entries, entry{
			record:    r,
			name:      textnorm.Fold(r.Name),
			id:        textnorm.Fold(r.ID),
			secondary: textnorm.Fold(r.SecondaryNames),
		})
	}
	return c
}

// LoadBundled загружает справочник, встроенный в бинарный файл.
func LoadBundled() (*Catalog, error) {
	const op = "catalog.LoadBundled"

	products, err := bundled.ReadFile("data/products.json")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	phrases, err := bundled.ReadFile("data/risk-phrases.json")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return Load(bytes.NewReader(products), bytes.NewReader(phrases), BundledUpdateDate)
}

// LoadFiles параллельно читает файлы справочника с диска.
func LoadFiles(ctx context.Context, productsPath, phrasesPath, updatedAt string) (*Catalog, error) {
	const op = "catalog.LoadFiles"

	var products, phrases []byte
	g, gctx := errgroup.WithContext(ctx)
	read := func(path string, dst *[]byte) func() error {
		return func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			*dst = data
			return gctx.Err()
		}
	}
	g.Go(read(productsPath, &products))
	g.Go(read(phrasesPath, &phrases))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return Load(bytes.NewReader(products), bytes.NewReader(phrases), updatedAt)
}

// Total возвращает количество препаратов в справочнике.
func (c *Catalog) Total() int {
	return len(c.entries)
}

// UpdatedAt возвращает дату выгрузки справочника.
func (c *Catalog) UpdatedAt() string {
	return c.updatedAt
}

// RiskPhrases возвращает H-фразы препарата.
func (c *Catalog) RiskPhrases(id string) []models.RiskPhrase {
	return c.phrases[id]
}

// ProductByID возвращает классифицированный препарат по точному номеру AMM.
func (c *Catalog) ProductByID(id string) (models.ClassifiedProduct, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return models.ClassifiedProduct{}, false
	}
	r := c.entries[idx].record
	return Classify(r, c.phrases[r.ID]), true
}

// Search ищет препараты по подстроке в названии, дополнительных названиях
// или номере AMM без учёта регистра и диакритики. Результаты идут в порядке
// справочника, просмотр останавливается после limit совпадений.
// Запрос короче MinQueryLength символов даёт пустой результат.
func (c *Catalog) Search(query string, limit int) []models.ClassifiedProduct {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < MinQueryLength {
		return []models.ClassifiedProduct{}
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	q := textnorm.Fold(query)
	results := make([]models.ClassifiedProduct, 0, min(limit, 16))
	for _, e := range c.entries {
		if len(results) >= limit {
			break
		}
		if strings.Contains(e.name, q) || strings.Contains(e.id, q) || strings.Contains(e.secondary, q) {
			results = append(results, Classify(e.record, c.phrases[e.record.ID]))
		}
	}
	return results
}
