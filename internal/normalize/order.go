package normalize

import "pharmacy-storefront/internal/domain"

func Order(v any) domain.Order {
	r := AsRecord(v)
	items := r.list("items")
	order := domain.Order{
		ID:             r.id("id"),
		OrderNumber:    r.str("order_number"),
		Status:         r.str("status"),
		Items:          make([]domain.OrderItem, 0, len(items)),
		Subtotal:       r.num("subtotal"),
		ShippingFee:    r.num("shipping_fee"),
		DiscountAmount: r.num("discount_amount"),
		TotalAmount:    r.num("total_amount"),
		VoucherCode:    r.str("voucher_code"),
		PaymentMethod:  r.str("payment_method"),
		ReceiverName:   r.str("receiver_name"),
		ReceiverPhone:  r.str("receiver_phone"),
		ShippingAddr:   r.str("shipping_address"),
		Note:           r.str("note"),
		CreatedAt:      r.timeAt("created_at"),
	}
	for _, item := range items {
		ir := AsRecord(item)
		order.Items = append(order.Items, domain.OrderItem{
			ID:          ir.id("id"),
			ProductID:   ir.id("product_id"),
			ProductName: firstNonEmpty(ir.str("product_name"), ir.str("name")),
			UnitPrice:   firstNonZero(ir.num("unit_price"), ir.num("price")),
			Quantity:    ir.integer("quantity"),
			TotalPrice:  ir.num("total_price"),
		})
	}
	return order
}

func OrderPage(v any) Page[domain.Order] {
	return mapPage(v, func(r Record) domain.Order { return Order(r) })
}

func firstNonZero(values ...float64) float64 {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
