package service

import (
	"context"

	"studiodesk/internal/domain"
	"studiodesk/internal/models"
)

type CustomerService struct {
	store domain.CustomerStore
}

func NewCustomerService(store domain.CustomerStore) *CustomerService {
	return &CustomerService{store: store}
}

func (s *CustomerService) ListCustomers(ctx context.Context) ([]*models.Customer, error) {
	return s.store.ListCustomers(ctx)
}

func (s *CustomerService) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	return s.store.GetCustomer(ctx, id)
}
