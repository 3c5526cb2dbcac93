package normalize

import "pharmacy-storefront/internal/domain"

// Product normalizes one product record. Missing optional fields get
// explicit defaults (false booleans, zero counters) rather than being left
// to whatever the server omitted.
func Product(v any) domain.Product {
	r := AsRecord(v)
	return domain.Product{
		ID:                   r.id("id"),
		Slug:                 r.str("slug"),
		SKU:                  r.str("sku"),
		Name:                 r.str("name"),
		Description:          r.str("description"),
		Price:                r.num("price"),
		SalePrice:            r.numPtr("sale_price"),
		StockQuantity:        r.integer("stock_quantity"),
		Unit:                 r.str("unit"),
		Category:             ref(r.record("category")),
		Manufacturer:         ref(r.record("manufacturer")),
		RequiresPrescription: r.boolean("requires_prescription"),
		IsFeatured:           r.boolean("is_featured"),
		Status:               r.str("status"),
		Images:               productImages(r.list("images")),
		IsLiked:              r.boolean("is_liked"),
		LikesCount:           r.integer("likes_count"),
		RatingAvg:            r.num("rating_avg"),
		RatingCount:          r.integer("rating_count"),
		CreatedAt:            r.timeAt("created_at"),
	}
}

// ProductPage tolerates both server list shapes: a bare array and a
// paginated envelope. Callers never branch on which one arrived.
func ProductPage(v any) Page[domain.Product] {
	return mapPage(v, func(r Record) domain.Product { return Product(r) })
}

func ref(r Record) domain.Ref {
	return domain.Ref{
		ID:   r.id("id"),
		Name: r.str("name"),
		Slug: r.str("slug"),
	}
}

func productImages(items []any) []domain.ProductImage {
	if len(items) == 0 {
		return nil
	}
	images := make([]domain.ProductImage, 0, len(items))
	for _, item := range items {
		r := AsRecord(item)
		if r == nil {
			// Some endpoints return images as plain URL strings.
			if s, ok := item.(string); ok && s != "" {
				images = append(images, domain.ProductImage{URL: s})
			}
			continue
		}
		images = append(images, domain.ProductImage{
			URL:       firstNonEmpty(r.str("image_url"), r.str("url"), r.str("image")),
			Alt:       firstNonEmpty(r.str("alt_text"), r.str("alt")),
			IsPrimary: r.boolean("is_primary"),
		})
	}
	return images
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
