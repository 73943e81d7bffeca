package orderitems

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Item
	}{
		{
			name: "single item",
			raw:  "ID: 1 Нэр: Coffee SKU: 9 Сонголт: x2 ширхэг",
			want: []Item{{Name: "Coffee", Quantity: 2}},
		},
		{
			name: "multiple items keep source order",
			raw:  "ID: 373821 Нэр: Cappuccino SKU: 13 Сонголт: x1 ширхэг | ID: 761746 Нэр: Caffe Latte SKU: 32 Сонголт: x3 ширхэг",
			want: []Item{{Name: "Cappuccino", Quantity: 1}, {Name: "Caffe Latte", Quantity: 3}},
		},
		{
			name: "name containing capital S and symbols",
			raw:  "ID: 761746 Нэр: Caffe Latte STARBUCKS® SKU: 32 Сонголт: x1 ширхэг",
			want: []Item{{Name: "Caffe Latte STARBUCKS®", Quantity: 1}},
		},
		{
			name: "multi digit quantity",
			raw:  "Нэр:Americano  SKU: 4 Сонголт: x12 ширхэг",
			want: []Item{{Name: "Americano", Quantity: 12}},
		},
		{
			name: "segment without quantity is dropped",
			raw:  "ID: 1 Нэр: Mocha SKU: 2 Сонголт: том",
			want: []Item{},
		},
		{
			name: "overflowing quantity is dropped",
			raw:  "Нэр: Tea SKU: 1 Сонголт: x99999999999999999999999 ширхэг",
			want: []Item{},
		},
		{name: "empty", raw: "", want: []Item{}},
		{name: "garbage", raw: "garbage text", want: []Item{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}
