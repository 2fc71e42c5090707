package cart

import (
	"sort"
	"strings"
)

// Item is one cart line. Its identity is the product id plus the
// normalized attribute combination; two adds with the same identity
// collapse into a single line.
type Item struct {
	ProductID     string            `json:"product_id"`
	Name          string            `json:"name"`
	Quantity      int               `json:"quantity"`
	UnitPrice     float64           `json:"unit_price"`
	OriginalPrice float64           `json:"original_price"`
	Category      string            `json:"category,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
}

// Key returns the stable line identity.
func (i Item) Key() string {
	return i.ProductID + "|" + AttributeKey(i.Attributes)
}

func (i Item) LineTotal() float64 {
	return i.UnitPrice * float64(i.Quantity)
}

// AttributeKey normalizes an attribute map into a deterministic
// string, so that {size: M, color: blue} and {color: blue, size: M}
// produce the same cart line.
func AttributeKey(attrs map[string]string) string {
	if len(attrs) == 0 {
		return ""
	}

	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, strings.ToLower(strings.TrimSpace(k))+"="+strings.ToLower(strings.TrimSpace(attrs[k])))
	}
	return strings.Join(parts, ";")
}

// Cart is the aggregate the sync manager owns. ExternalID stays empty
// until the first successful remote write.
type Cart struct {
	StoreID    string
	ExternalID string
	DisplayID  int64
	Items      []Item
}

func NewCart(storeID string) *Cart {
	return &Cart{
		StoreID: storeID,
		Items:   make([]Item, 0),
	}
}

// Add merges the item into an existing line when the identity matches,
// otherwise appends a new line. maxStock caps the resulting quantity
// for that exact attribute combination; a negative maxStock means the
// available stock is unknown and no clamp is applied.
func (c *Cart) Add(item Item, maxStock int) {
	if item.Quantity < 1 {
		item.Quantity = 1
	}

	key := item.Key()
	for idx := range c.Items {
		if c.Items[idx].Key() == key {
			c.Items[idx].Quantity += item.Quantity
			if maxStock >= 0 && c.Items[idx].Quantity > maxStock {
				c.Items[idx].Quantity = maxStock
			}
			return
		}
	}

	if maxStock >= 0 && item.Quantity > maxStock {
		item.Quantity = maxStock
	}
	if item.Quantity > 0 {
		c.Items = append(c.Items, item)
	}
}

// SetQuantity updates the line matching key. Zero or below removes the
// line. It reports whether the line existed.
func (c *Cart) SetQuantity(key string, quantity int) bool {
	for idx := range c.Items {
		if c.Items[idx].Key() == key {
			if quantity <= 0 {
				c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
			} else {
				c.Items[idx].Quantity = quantity
			}
			return true
		}
	}
	return false
}

// Remove deletes the line matching key and reports whether it existed.
func (c *Cart) Remove(key string) bool {
	return c.SetQuantity(key, 0)
}

func (c *Cart) Clear() {
	c.Items = c.Items[:0]
}

func (c *Cart) Subtotal() float64 {
	var total float64
	for _, item := range c.Items {
		total += item.LineTotal()
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}
