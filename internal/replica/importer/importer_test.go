package importer

import (
	"context"
	"strings"
	"testing"

	"pharmacy-storefront/internal/domain"
	productrepo "pharmacy-storefront/internal/replica/repository/product"
)

type recordingWriter struct {
	created  []productrepo.Input
	existing map[string]bool
}

func (w *recordingWriter) Create(_ context.Context, in productrepo.Input) (*domain.Product, error) {
	if w.existing[in.Slug] {
		return nil, domain.ErrAlreadyExists
	}
	w.created = append(w.created, in)
	return &domain.Product{ID: "p1", Slug: in.Slug, Name: in.Name}, nil
}

func TestRunImportsRows(t *testing.T) {
	csv := strings.Join([]string{
		"Slug,Name,Price,Sale_Price,Stock_Quantity,Requires_Prescription,Is_Featured,Images",
		"paracetamol-500mg,Paracetamol 500mg,45000,39000,120,false,true,https://cdn.example.com/a.jpg|https://cdn.example.com/b.jpg",
		"amoxicillin-250mg,Amoxicillin 250mg,80000,,40,true,false,",
	}, "\n")

	writer := &recordingWriter{}
	n, err := NewCSVImporter(strings.NewReader(csv), writer).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 2 || len(writer.created) != 2 {
		t.Fatalf("imported = %d, created = %d", n, len(writer.created))
	}

	first := writer.created[0]
	if first.Slug != "paracetamol-500mg" || first.Price != 45000 {
		t.Fatalf("first = %+v", first)
	}
	if first.SalePrice == nil || *first.SalePrice != 39000 {
		t.Fatalf("sale price = %v", first.SalePrice)
	}
	if first.StockQuantity != 120 || !first.IsFeatured || first.RequiresPrescription {
		t.Fatalf("first flags = %+v", first)
	}
	if len(first.Images) != 2 || !first.Images[0].IsPrimary || first.Images[1].IsPrimary {
		t.Fatalf("images = %+v", first.Images)
	}

	second := writer.created[1]
	if second.SalePrice != nil || !second.RequiresPrescription {
		t.Fatalf("second = %+v", second)
	}
}

func TestRunSkipsExistingSlugs(t *testing.T) {
	csv := strings.Join([]string{
		"slug,name,price",
		"paracetamol-500mg,Paracetamol 500mg,45000",
		"new-product,New Product,10000",
	}, "\n")

	writer := &recordingWriter{existing: map[string]bool{"paracetamol-500mg": true}}
	n, err := NewCSVImporter(strings.NewReader(csv), writer).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported = %d, want existing slug skipped", n)
	}
}

func TestRunSkipsBlankRows(t *testing.T) {
	csv := "slug,name,price\n,,\nvitamin-c,Vitamin C,30000\n"

	writer := &recordingWriter{}
	n, err := NewCSVImporter(strings.NewReader(csv), writer).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if n != 1 {
		t.Fatalf("imported = %d", n)
	}
}

func TestRunRejectsBadPrice(t *testing.T) {
	csv := "slug,name,price\nfree-sample,Free Sample,0\n"

	writer := &recordingWriter{}
	if _, err := NewCSVImporter(strings.NewReader(csv), writer).Run(context.Background()); err == nil {
		t.Fatal("expected price validation error")
	}
}
