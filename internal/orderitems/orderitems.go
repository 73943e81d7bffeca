// Package orderitems extracts purchased line items from the free-text
// "Бараанууд" cell of an order export, e.g.
//
//	ID: 373821 Нэр: Cappuccino SKU: 13 Сонголт: x1 ширхэг | ID: 761746 Нэр: Caffe Latte SKU: 32 Сонголт: x1 ширхэг
package orderitems

import (
	"regexp"
	"strconv"
	"strings"
)

// FormatVersion identifies the export convention itemPattern understands.
// Bump it together with the pattern when the upstream format changes.
const FormatVersion = 1

var itemPattern = regexp.MustCompile(`Нэр:\s*(.+?)\s+SKU:.*?Сонголт:\s*x(\d+)`)

type Item struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Parse returns the items in the order they appear. Segments without a name
// or with an unreadable quantity are dropped.
func Parse(raw string) []Item {
	items := []Item{}
	if raw == "" {
		return items
	}

	for _, m := range itemPattern.FindAllStringSubmatch(raw, -1) {
		name := strings.TrimSpace(m[1])
		qty, err := strconv.Atoi(m[2])
		if name == "" || err != nil {
			continue
		}
		items = append(items, Item{Name: name, Quantity: qty})
	}
	return items
}
