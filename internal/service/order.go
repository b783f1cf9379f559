package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mayacreations/boutique/internal/models"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

type OrderService struct {
	DB *gorm.DB
}

// UpdateStatus moves an order to the target status. A cancellation goes
// through Cancel so reserved stock is returned; every other transition is
// a plain status write.
func (svc *OrderService) UpdateStatus(ctx context.Context, id uint, target string) (*models.Order, error) {
	if !models.ValidOrderStatus(target) {
		return nil, fmt.Errorf("%w: invalid status value", ErrValidation)
	}
	if target == models.OrderStatusCancelled {
		return svc.Cancel(ctx, id)
	}

	var order models.Order
	if err := svc.DB.WithContext(ctx).First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: order %d", ErrNotFound, id)
		}
		return nil, err
	}

	if err := svc.DB.WithContext(ctx).Model(&order).Update("status", target).Error; err != nil {
		return nil, err
	}
	order.Status = target
	return &order, nil
}

// Cancel marks the order cancelled and, when the order had not yet left
// the warehouse, returns each line item's quantity to the product stock.
// The status write and every stock increment run in one transaction, and
// the status predicate on the write makes the whole operation idempotent:
// a second cancel of the same order is a no-op, so compensation is
// applied at most once.
func (svc *OrderService) Cancel(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order

	txErr := svc.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: order %d", ErrNotFound, id)
			}
			return err
		}

		if order.Status == models.OrderStatusCancelled {
			return nil
		}

		prior := order.Status
		res := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", id, prior).
			Update("status", models.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Lost the race against a concurrent transition.
			return fmt.Errorf("%w: order %d changed concurrently", ErrConflict, id)
		}
		order.Status = models.OrderStatusCancelled

		if !models.CompensableStatus(prior) {
			return nil
		}

		for _, it := range order.Items {
			if err := tx.Model(&models.Product{}).
				Where("id = ?", it.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", it.Quantity)).Error; err != nil {
				return err
			}
		}
		return nil
	})

	if txErr != nil {
		return nil, txErr
	}
	return &order, nil
}
