package normalize

import "pharmacy-storefront/internal/domain"

// Category normalizes one node and recurses into children, so the whole
// tree from /categories/tree/ goes through a single entry point.
func Category(v any) domain.Category {
	r := AsRecord(v)
	cat := domain.Category{
		ID:           r.id("id"),
		Slug:         r.str("slug"),
		Name:         r.str("name"),
		Description:  r.str("description"),
		ParentID:     r.id("parent_id"),
		IsActive:     r.boolean("is_active"),
		ProductCount: r.integer("product_count"),
	}
	for _, child := range r.list("children") {
		cat.Children = append(cat.Children, Category(child))
	}
	return cat
}

func CategoryPage(v any) Page[domain.Category] {
	return mapPage(v, func(r Record) domain.Category { return Category(r) })
}

func Manufacturer(v any) domain.Manufacturer {
	r := AsRecord(v)
	return domain.Manufacturer{
		ID:           r.id("id"),
		Slug:         r.str("slug"),
		Name:         r.str("name"),
		Country:      r.str("country"),
		LogoURL:      firstNonEmpty(r.str("logo_url"), r.str("logo")),
		ProductCount: r.integer("product_count"),
	}
}

func ManufacturerPage(v any) Page[domain.Manufacturer] {
	return mapPage(v, func(r Record) domain.Manufacturer { return Manufacturer(r) })
}
