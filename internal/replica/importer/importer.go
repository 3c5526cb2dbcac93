// Package importer loads catalog exports into the replica database. The
// expected CSV has one product per row with pipe-separated image URLs.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"pharmacy-storefront/internal/domain"
	productrepo "pharmacy-storefront/internal/replica/repository/product"
)

type ProductWriter interface {
	Create(ctx context.Context, in productrepo.Input) (*domain.Product, error)
}

// CSVImporter reads catalog CSV exports and creates products.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
}

func NewCSVImporter(r io.Reader, products ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{reader: csvr, products: products}
}

// Run parses CSV rows and creates one product per row. Rows whose slug
// already exists are skipped, so re-running an import is safe.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		in, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if in == nil {
			continue
		}

		if _, err := i.products.Create(ctx, *in); err != nil {
			if errors.Is(err, domain.ErrAlreadyExists) {
				continue
			}
			return imported, fmt.Errorf("create product %q: %w", in.Slug, err)
		}
		imported++
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.ToLower(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (*productrepo.Input, error) {
	slug := pick(record, index, "slug")
	name := pick(record, index, "name")
	if slug == "" && name == "" {
		return nil, nil
	}
	if slug == "" || name == "" {
		return nil, fmt.Errorf("row missing slug or name (slug=%q name=%q)", slug, name)
	}

	priceStr := pick(record, index, "price")
	price, err := strconv.ParseFloat(priceStr, 64)
	if err != nil || price <= 0 {
		return nil, fmt.Errorf("invalid price %q for slug %q", priceStr, slug)
	}

	in := &productrepo.Input{
		Slug:        slug,
		SKU:         pick(record, index, "sku"),
		Name:        name,
		Description: pick(record, index, "description"),
		Price:       price,
		Unit:        pick(record, index, "unit"),
		IsActive:    true,
	}

	if s := pick(record, index, "sale_price"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid sale_price %q for slug %q", s, slug)
		}
		in.SalePrice = &v
	}
	if s := pick(record, index, "stock_quantity"); s != "" {
		in.StockQuantity, _ = strconv.Atoi(s)
	}
	if s := pick(record, index, "requires_prescription"); s != "" {
		in.RequiresPrescription, _ = strconv.ParseBool(s)
	}
	if s := pick(record, index, "is_featured"); s != "" {
		in.IsFeatured, _ = strconv.ParseBool(s)
	}
	in.CategoryID = pick(record, index, "category_id")
	in.ManufacturerID = pick(record, index, "manufacturer_id")

	for pos, u := range splitURLs(pick(record, index, "images")) {
		in.Images = append(in.Images, productrepo.ImageInput{URL: u, IsPrimary: pos == 0, Position: pos})
	}
	return in, nil
}

func splitURLs(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}

func pick(record []string, index map[string]int, key string) string {
	i, ok := index[key]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
