package normalize

import "pharmacy-storefront/internal/domain"

// Cart normalizes the whole-cart payload returned by every cart mutation.
// Totals are taken from the server verbatim.
func Cart(v any) domain.Cart {
	r := AsRecord(v)
	items := r.list("items")
	cart := domain.Cart{
		ID:         r.id("id"),
		Items:      make([]domain.CartItem, 0, len(items)),
		TotalPrice: r.num("total_price"),
		TotalItems: r.integer("total_items"),
		UpdatedAt:  r.timeAt("updated_at"),
	}
	for _, item := range items {
		cart.Items = append(cart.Items, cartItem(AsRecord(item)))
	}
	return cart
}

func cartItem(r Record) domain.CartItem {
	item := domain.CartItem{
		ID:         r.id("id"),
		ProductID:  r.id("product_id"),
		CategoryID: r.id("category_id"),
		Name:       r.str("name"),
		Slug:       r.str("slug"),
		ImageURL:   firstNonEmpty(r.str("image_url"), r.str("image")),
		UnitPrice:  r.num("unit_price"),
		Quantity:   r.integer("quantity"),
		TotalPrice: r.num("total_price"),
	}
	// Older cart payloads nest the snapshot under "product".
	if p := r.record("product"); p != nil {
		if item.ProductID == "" {
			item.ProductID = p.id("id")
		}
		if item.Name == "" {
			item.Name = p.str("name")
		}
		if item.Slug == "" {
			item.Slug = p.str("slug")
		}
		if item.UnitPrice == 0 {
			item.UnitPrice = p.num("price")
		}
		if item.CategoryID == "" {
			item.CategoryID = p.record("category").id("id")
		}
	}
	return item
}
