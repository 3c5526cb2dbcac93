package domain

import "time"

type Product struct {
	ID                   string         `json:"id"`
	Slug                 string         `json:"slug"`
	SKU                  string         `json:"sku"`
	Name                 string         `json:"name"`
	Description          string         `json:"description,omitempty"`
	Price                float64        `json:"price"`
	SalePrice            *float64       `json:"salePrice,omitempty"`
	StockQuantity        int            `json:"stockQuantity"`
	Unit                 string         `json:"unit,omitempty"`
	Category             Ref            `json:"category"`
	Manufacturer         Ref            `json:"manufacturer"`
	RequiresPrescription bool           `json:"requiresPrescription"`
	IsFeatured           bool           `json:"isFeatured"`
	Status               string         `json:"status,omitempty"`
	Images               []ProductImage `json:"images,omitempty"`
	IsLiked              bool           `json:"isLiked"`
	LikesCount           int            `json:"likesCount"`
	RatingAvg            float64        `json:"ratingAvg"`
	RatingCount          int            `json:"ratingCount"`
	CreatedAt            time.Time      `json:"createdAt"`
}

// Ref is a lightweight reference to a related entity (category, manufacturer).
type Ref struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

type ProductImage struct {
	URL       string `json:"url"`
	Alt       string `json:"alt,omitempty"`
	IsPrimary bool   `json:"isPrimary"`
}

// EffectivePrice returns the sale price when one is set, the list price
// otherwise. Display-only; the server remains authoritative for charged
// amounts.
func (p Product) EffectivePrice() float64 {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// DiscountPercent derives the displayed discount badge from price and sale
// price. Returns 0 when there is no sale price or the prices are inconsistent.
func (p Product) DiscountPercent() int {
	if p.SalePrice == nil || p.Price <= 0 || *p.SalePrice >= p.Price {
		return 0
	}
	return int((p.Price - *p.SalePrice) / p.Price * 100)
}

// PrimaryImage returns the image flagged as primary, falling back to the
// first image in order.
func (p Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.URL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].URL
	}
	return ""
}
