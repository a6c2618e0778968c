// Package seed resets the storefront to its starting catalog.
package seed

import (
	"context"
	"fmt"

	"github.com/artvoid/artvoid-api/models"
	"github.com/artvoid/artvoid-api/repository"
	"go.uber.org/zap"
)

// Products is the starting catalog. Catalog items without a creator belong
// to the main studio.
var Products = []models.Product{
	{Name: "Lotus Pond Madhubani", Description: "Hand-painted Madhubani on handmade paper, 12x16 in.", Price: 2499},
	{Name: "Monsoon Abstract", Description: "Acrylic on stretched canvas in deep blues, 18x24 in.", Price: 3999},
	{Name: "Warli Village Life", Description: "Traditional Warli scene in white on terracotta, 16x20 in.", Price: 1899},
	{Name: "Peacock Mandala", Description: "Ink and gold leaf mandala, framed, 14x14 in.", Price: 2999},
	{Name: "Himalayan Dawn", Description: "Oil landscape of sunrise over the peaks, 20x30 in.", Price: 5499},
}

// Store is what Reset clears and refills
type Store struct {
	Products repository.ProductRepository
	Messages repository.MessageRepository
	Orders   repository.OrderRepository
}

// Reset clears products, messages and orders, then inserts the starting
// catalog. It returns the created products.
func Reset(ctx context.Context, store Store, logger *zap.Logger) ([]models.Product, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// orders reference products, so they go first
	if err := store.Orders.DeleteAll(ctx); err != nil {
		return nil, err
	}
	logger.Info("cleared orders")

	if err := store.Messages.DeleteAll(ctx); err != nil {
		return nil, err
	}
	logger.Info("cleared messages")

	if err := store.Products.DeleteAll(ctx); err != nil {
		return nil, err
	}
	logger.Info("cleared products")

	created := make([]models.Product, 0, len(Products))
	for _, p := range Products {
		product := p
		if err := store.Products.Create(ctx, &product); err != nil {
			return nil, fmt.Errorf("failed to seed product %q: %w", product.Name, err)
		}
		logger.Info("seeded product", zap.Uint("id", product.ID), zap.String("name", product.Name))
		created = append(created, product)
	}

	logger.Info("reset complete", zap.Int("products", len(created)))
	return created, nil
}
