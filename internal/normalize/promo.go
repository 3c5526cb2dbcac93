package normalize

import "pharmacy-storefront/internal/domain"

func Voucher(v any) domain.Voucher {
	r := AsRecord(v)
	return domain.Voucher{
		ID:            r.id("id"),
		Code:          r.str("code"),
		Description:   r.str("description"),
		DiscountType:  r.str("discount_type"),
		DiscountValue: r.num("discount_value"),
		MinOrderTotal: r.num("min_order_total"),
		MaxDiscount:   r.num("max_discount"),
		UsageLimit:    r.integer("usage_limit"),
		UsedCount:     r.integer("used_count"),
		IsActive:      r.boolean("is_active"),
		StartsAt:      r.timeAt("starts_at"),
		EndsAt:        r.timeAt("ends_at"),
	}
}

func VoucherPage(v any) Page[domain.Voucher] {
	return mapPage(v, func(r Record) domain.Voucher { return Voucher(r) })
}

// VoucherResult passes the server verdict through; error_code and
// error_message are surfaced verbatim.
func VoucherResult(v any) domain.VoucherResult {
	r := AsRecord(v)
	res := domain.VoucherResult{
		Valid:          r.boolean("valid"),
		ErrorCode:      r.str("error_code"),
		ErrorMessage:   r.str("error_message"),
		DiscountAmount: r.num("discount_amount"),
		OrderTotal:     r.num("order_total"),
		FinalTotal:     r.num("final_total"),
	}
	if info := r.record("voucher_info"); info != nil {
		voucher := Voucher(info)
		res.Voucher = &voucher
	} else if info := r.record("voucher"); info != nil {
		voucher := Voucher(info)
		res.Voucher = &voucher
	}
	return res
}

func FlashSaleSession(v any) domain.FlashSaleSession {
	r := AsRecord(v)
	session := domain.FlashSaleSession{
		ID:       r.id("id"),
		Slug:     r.str("slug"),
		Name:     r.str("name"),
		StartsAt: firstTime(r.timeAt("starts_at"), r.timeAt("start_time")),
		EndsAt:   firstTime(r.timeAt("ends_at"), r.timeAt("end_time")),
		IsActive: r.boolean("is_active"),
	}
	for _, item := range r.list("items") {
		session.Items = append(session.Items, flashSaleItem(AsRecord(item)))
	}
	return session
}

func FlashSaleSessionPage(v any) Page[domain.FlashSaleSession] {
	return mapPage(v, func(r Record) domain.FlashSaleSession { return FlashSaleSession(r) })
}

func flashSaleItem(r Record) domain.FlashSaleItem {
	item := domain.FlashSaleItem{
		ID:                r.id("id"),
		Product:           Product(r.record("product")),
		SalePrice:         r.num("sale_price"),
		TotalQuantity:     r.integer("total_quantity"),
		RemainingQuantity: r.integer("remaining_quantity"),
		SoldQuantity:      r.integer("sold_quantity"),
	}
	// Some payloads omit one side of the quantity pair; derive it from the
	// invariant remaining + sold == total.
	if item.RemainingQuantity == 0 && item.TotalQuantity > 0 && item.SoldQuantity <= item.TotalQuantity {
		item.RemainingQuantity = item.TotalQuantity - item.SoldQuantity
	}
	return item
}

// FlashSaleCheck interprets the /flash-sale/check/ response. Nil means the
// product is not part of the active session.
func FlashSaleCheck(v any) *domain.FlashSaleItem {
	r := AsRecord(v)
	if r == nil || !r.boolean("in_flash_sale") {
		return nil
	}
	itemRec := r.record("item")
	if itemRec == nil {
		// Some server versions inline the item fields next to the flag.
		itemRec = r
	}
	item := flashSaleItem(itemRec)
	return &item
}

func Banner(v any) domain.Banner {
	r := AsRecord(v)
	return domain.Banner{
		ID:       r.id("id"),
		Title:    r.str("title"),
		ImageURL: firstNonEmpty(r.str("image_url"), r.str("image")),
		LinkURL:  firstNonEmpty(r.str("link_url"), r.str("link")),
		Position: r.integer("position"),
		IsActive: r.boolean("is_active"),
	}
}

func BannerPage(v any) Page[domain.Banner] {
	return mapPage(v, func(r Record) domain.Banner { return Banner(r) })
}

func Customer(v any) domain.Customer {
	r := AsRecord(v)
	return domain.Customer{
		ID:        r.id("id"),
		Email:     r.str("email"),
		FullName:  firstNonEmpty(r.str("full_name"), r.str("name")),
		Phone:     r.str("phone"),
		Address:   r.str("address"),
		IsActive:  r.boolean("is_active"),
		IsStaff:   r.boolean("is_staff"),
		CreatedAt: r.timeAt("created_at"),
	}
}

func CustomerPage(v any) Page[domain.Customer] {
	return mapPage(v, func(r Record) domain.Customer { return Customer(r) })
}
