package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sales-dashboard/internal/domain"
	"sales-dashboard/internal/mocks"
	"sales-dashboard/internal/repository"
)

func TestPageRequest_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   PageRequest
		want PageRequest
	}{
		{name: "defaults", in: PageRequest{}, want: PageRequest{Page: 1, Limit: DefaultPageSize}},
		{name: "negative", in: PageRequest{Page: -2, Limit: -1}, want: PageRequest{Page: 1, Limit: DefaultPageSize}},
		{name: "capped", in: PageRequest{Page: 3, Limit: 1000}, want: PageRequest{Page: 3, Limit: MaxPageSize}},
		{name: "kept", in: PageRequest{Page: 2, Limit: 50}, want: PageRequest{Page: 2, Limit: 50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.normalize())
		})
	}
}

func TestPageRequest_Pagination(t *testing.T) {
	p := PageRequest{Page: 2, Limit: 20}
	assert.Equal(t, repository.Page{Offset: 20, Limit: 20}, p.window())
	assert.Equal(t, Pagination{Page: 2, Limit: 20, Total: 41, TotalPages: 3}, p.pagination(41))
	assert.Equal(t, int64(0), p.pagination(0).TotalPages)
}

func TestCatalogService_ListProducts(t *testing.T) {
	products := new(mocks.MockProductRepository)
	filter := repository.ProductFilter{Page: repository.Page{Offset: 0, Limit: 20}, Search: "lat", Category: "Coffee"}

	products.On("List", mock.Anything, filter).Return(nil, nil)
	products.On("Count", mock.Anything, filter).Return(int64(0), nil)

	svc := NewCatalogService(new(mocks.MockOrderRepository), products, new(mocks.MockImportHistoryRepository))
	got, err := svc.ListProducts(context.Background(), PageRequest{}, "lat", "Coffee")
	require.NoError(t, err)

	assert.Equal(t, []domain.Product{}, got.Products)
	assert.Equal(t, Pagination{Page: 1, Limit: 20}, got.Pagination)
	products.AssertExpectations(t)
}

func TestCatalogService_ListOrdersError(t *testing.T) {
	orders := new(mocks.MockOrderRepository)
	orders.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("list failed"))
	orders.On("Count", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	svc := NewCatalogService(orders, new(mocks.MockProductRepository), new(mocks.MockImportHistoryRepository))
	_, err := svc.ListOrders(context.Background(), PageRequest{}, "")
	assert.ErrorContains(t, err, "list failed")
}
