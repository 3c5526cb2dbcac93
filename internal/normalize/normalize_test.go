package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmacy-storefront/internal/domain"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

const serverProduct = `{
	"id": 12,
	"slug": "paracetamol-500",
	"sku": "PARA-500",
	"name": "Paracetamol 500mg",
	"price": "45000.00",
	"sale_price": "39000.00",
	"stock_quantity": 120,
	"category": {"id": 3, "name": "Pain relief", "slug": "pain-relief"},
	"manufacturer": {"id": 7, "name": "Traphaco", "slug": "traphaco"},
	"requires_prescription": false,
	"is_featured": true,
	"images": [
		{"image_url": "https://cdn.example.com/para-1.jpg", "is_primary": true},
		{"image_url": "https://cdn.example.com/para-2.jpg", "is_primary": false}
	],
	"is_liked": true,
	"likes_count": 4,
	"rating_avg": 4.5,
	"rating_count": 11,
	"created_at": "2025-03-01T10:00:00Z"
}`

func TestProductNormalizesServerShape(t *testing.T) {
	p := Product(decode(t, serverProduct))

	assert.Equal(t, "12", p.ID)
	assert.Equal(t, "paracetamol-500", p.Slug)
	assert.Equal(t, 45000.0, p.Price)
	require.NotNil(t, p.SalePrice)
	assert.Equal(t, 39000.0, *p.SalePrice)
	assert.Equal(t, 120, p.StockQuantity)
	assert.Equal(t, domain.Ref{ID: "3", Name: "Pain relief", Slug: "pain-relief"}, p.Category)
	assert.True(t, p.IsFeatured)
	assert.True(t, p.IsLiked)
	require.Len(t, p.Images, 2)
	assert.Equal(t, "https://cdn.example.com/para-1.jpg", p.PrimaryImage())
	assert.Equal(t, 13, p.DiscountPercent())
}

func TestProductIdempotence(t *testing.T) {
	once := Product(decode(t, serverProduct))

	// Re-normalizing the already-normalized entity must be a no-op.
	raw, err := json.Marshal(once)
	require.NoError(t, err)
	twice := Product(decode(t, string(raw)))

	assert.Equal(t, once, twice)
}

func TestProductConventionTolerance(t *testing.T) {
	snake := Product(decode(t, `{"id": 1, "name": "A", "price": 100, "sale_price": 80, "stock_quantity": 5}`))
	camel := Product(decode(t, `{"id": 1, "name": "A", "price": 100, "salePrice": 80, "stockQuantity": 5}`))

	assert.Equal(t, snake, camel)
}

func TestProductDefaults(t *testing.T) {
	p := Product(decode(t, `{"id": 9, "name": "Bare"}`))

	assert.False(t, p.IsLiked)
	assert.False(t, p.IsFeatured)
	assert.False(t, p.RequiresPrescription)
	assert.Zero(t, p.LikesCount)
	assert.Zero(t, p.RatingCount)
	assert.Nil(t, p.SalePrice)
	assert.Empty(t, p.Images)
}

func TestProductMalformedInput(t *testing.T) {
	assert.Equal(t, domain.Product{}, Product(nil))
	assert.Equal(t, domain.Product{}, Product("not an object"))
	assert.Equal(t, domain.Product{}, Product(42.0))
}

func TestProductPageEnvelopeAndBareArray(t *testing.T) {
	envelope := ProductPage(decode(t, `{"count": 2, "next": "/api/products/?page=2", "previous": null, "results": [{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]}`))
	bare := ProductPage(decode(t, `[{"id": 1, "name": "A"}, {"id": 2, "name": "B"}]`))

	assert.Equal(t, envelope.Results, bare.Results)
	assert.Equal(t, 2, bare.Count)
	assert.Equal(t, "/api/products/?page=2", envelope.Next)
	assert.Empty(t, bare.Next)
}

func TestCartTotalsComeFromServer(t *testing.T) {
	cart := Cart(decode(t, `{
		"id": 5,
		"items": [
			{"id": 1, "product_id": 10, "name": "A", "unit_price": 100, "quantity": 1, "total_price": 100},
			{"id": 2, "product_id": 11, "name": "B", "unit_price": 200, "quantity": 2, "total_price": 400}
		],
		"total_price": 450,
		"total_items": 3
	}`))

	require.Len(t, cart.Items, 2)
	assert.Equal(t, 450.0, cart.TotalPrice)
	assert.Equal(t, 3, cart.TotalItems)
	// Display delta: recomputed subtotal 500 against server total 450.
	assert.Equal(t, 500.0, cart.Subtotal())
	assert.Equal(t, 50.0, cart.Discount())
}

func TestCartNestedProductSnapshot(t *testing.T) {
	cart := Cart(decode(t, `{
		"id": 7,
		"items": [{"id": 1, "quantity": 2, "total_price": 90, "product": {"id": 33, "name": "Vitamin C", "slug": "vitamin-c", "price": 45}}],
		"total_price": 90,
		"total_items": 2
	}`))

	require.Len(t, cart.Items, 1)
	item := cart.Items[0]
	assert.Equal(t, "33", item.ProductID)
	assert.Equal(t, "Vitamin C", item.Name)
	assert.Equal(t, 45.0, item.UnitPrice)
}

func TestCategoryTreeRecursion(t *testing.T) {
	tree := Category(decode(t, `{
		"id": 1, "slug": "medicine", "name": "Medicine", "is_active": true, "product_count": 40,
		"children": [
			{"id": 2, "slug": "pain-relief", "name": "Pain relief", "parent_id": 1, "is_active": true, "product_count": 12,
			 "children": [{"id": 4, "slug": "nsaid", "name": "NSAID", "parent_id": 2, "is_active": false, "product_count": 3}]},
			{"id": 3, "slug": "antibiotics", "name": "Antibiotics", "parent_id": 1, "is_active": true, "product_count": 9}
		]
	}`))

	require.Len(t, tree.Children, 2)
	require.Len(t, tree.Children[0].Children, 1)
	assert.Equal(t, "1", tree.Children[0].ParentID)
	assert.False(t, tree.Children[0].Children[0].IsActive)
	assert.Equal(t, 3, tree.Children[0].Children[0].ProductCount)
}

func TestVoucherResultPassthrough(t *testing.T) {
	res := VoucherResult(decode(t, `{
		"valid": true,
		"discount_amount": 50,
		"order_total": 500,
		"final_total": 450,
		"voucher_info": {"id": 1, "code": "SALE10", "discount_type": "percent", "discount_value": 10}
	}`))

	assert.True(t, res.Valid)
	assert.Equal(t, 450.0, res.FinalTotal)
	assert.Equal(t, 500.0, res.OrderTotal)
	assert.Equal(t, 50.0, res.DiscountAmount)
	require.NotNil(t, res.Voucher)
	assert.Equal(t, "SALE10", res.Voucher.Code)

	rejected := VoucherResult(decode(t, `{"valid": false, "error_code": "EXPIRED", "error_message": "Voucher has expired", "order_total": 500, "final_total": 500}`))
	assert.False(t, rejected.Valid)
	assert.Equal(t, "EXPIRED", rejected.ErrorCode)
	assert.Equal(t, "Voucher has expired", rejected.ErrorMessage)
}

func TestFlashSaleItemQuantityInvariant(t *testing.T) {
	session := FlashSaleSession(decode(t, `{
		"id": 1, "slug": "morning-deal", "name": "Morning deal", "is_active": true,
		"items": [
			{"id": 10, "sale_price": 29000, "total_quantity": 100, "remaining_quantity": 60, "sold_quantity": 40, "product": {"id": 2, "name": "A"}},
			{"id": 11, "sale_price": 15000, "total_quantity": 50, "sold_quantity": 20, "product": {"id": 3, "name": "B"}}
		]
	}`))

	require.Len(t, session.Items, 2)
	for _, item := range session.Items {
		assert.Equal(t, item.TotalQuantity, item.RemainingQuantity+item.SoldQuantity)
	}
}

func TestOrderFrozenLineItems(t *testing.T) {
	order := Order(decode(t, `{
		"id": 8, "order_number": "ORD-2025-0008", "status": "PENDING",
		"subtotal": 500, "shipping_fee": 20, "discount_amount": 50, "total_amount": 470,
		"payment_method": "COD", "receiver_name": "Nguyen Van A", "receiver_phone": "0900000000",
		"shipping_address": "1 Le Loi, HCMC",
		"items": [{"id": 1, "product_id": 10, "product_name": "A", "unit_price": 100, "quantity": 1, "total_price": 100}]
	}`))

	assert.Equal(t, "ORD-2025-0008", order.OrderNumber)
	assert.Equal(t, 470.0, order.TotalAmount)
	require.Len(t, order.Items, 1)
	assert.Equal(t, "A", order.Items[0].ProductName)
	assert.Equal(t, 100.0, order.Items[0].UnitPrice)
}

func TestRecordAccessorTolerance(t *testing.T) {
	r := AsRecord(map[string]any{
		"price":    "12.50",
		"quantity": 3.0,
		"active":   "true",
	})

	assert.Equal(t, 12.5, r.num("price"))
	assert.Equal(t, 3, r.integer("quantity"))
	assert.True(t, r.boolean("active"))
	assert.Equal(t, 0.0, r.num("missing"))
}
