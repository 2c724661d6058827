package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dealership/internal/lifecycle"
	"dealership/internal/models"
	"dealership/internal/repository"
)

// AssignCar reserves an available car for the order. Car and order change
// in one database transaction; the order moves to bought.
func (s *orderService) AssignCar(ctx context.Context, orderID, carID uint) (*models.Order, error) {
	var order *models.Order
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		order, err = tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.AssignedCarID != nil {
			return ErrOrderHasCar
		}
		car, err := tx.Cars.GetByID(ctx, carID)
		if err != nil {
			return err
		}
		if car.Status != string(models.CarAvailable) || car.AssignedToOrder != nil {
			return ErrCarNotAvailable
		}

		if err := tx.Cars.UpdateFields(ctx, car.ID, map[string]any{
			"status":            string(models.CarReserved),
			"assigned_to_order": order.ID,
		}); err != nil {
			return err
		}

		data, err := order.Data()
		if err != nil {
			return err
		}
		data = data.Record(lifecycle.Bought, "Car assigned: "+carLabel(car), timeNow())
		if err := order.SetData(data); err != nil {
			return err
		}
		order.AssignedCarID = &car.ID
		return tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
			"assigned_car_id": car.ID,
			"status":          order.Status,
			"order_data":      order.OrderData,
		})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Uint("order_id", orderID).Uint("car_id", carID).Msg("Car assigned")
	return order, nil
}

// UnassignCar frees the order's car after explicit confirmation. The car
// returns to available and the order to confirmed.
func (s *orderService) UnassignCar(ctx context.Context, orderID uint, confirmed bool) (*models.Order, error) {
	if !confirmed {
		return nil, ErrConfirmationRequired
	}

	var order *models.Order
	var carID uint
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		var err error
		order, err = tx.Orders.GetByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.AssignedCarID == nil {
			return ErrNoCarAssigned
		}
		carID = *order.AssignedCarID
		if err := releaseCar(ctx, tx, carID, order.ID); err != nil {
			return err
		}

		data, err := order.Data()
		if err != nil {
			return err
		}
		data = data.Record(lifecycle.Confirmed, "Car unassigned", timeNow())
		if err := order.SetData(data); err != nil {
			return err
		}
		order.AssignedCarID = nil
		return tx.Orders.UpdateFields(ctx, order.ID, map[string]any{
			"assigned_car_id": nil,
			"status":          order.Status,
			"order_data":      order.OrderData,
		})
	})
	if err != nil {
		return nil, err
	}

	s.deletePairTransaction(ctx, carID, orderID)
	s.log.Info().Uint("order_id", orderID).Uint("car_id", carID).Msg("Car unassigned")
	return order, nil
}

// releaseCar makes the car available again if it is still held by orderID.
// A car that no longer exists is ignored.
func releaseCar(ctx context.Context, tx *repository.Repositories, carID, orderID uint) error {
	car, err := tx.Cars.GetByID(ctx, carID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if car.AssignedToOrder == nil || *car.AssignedToOrder != orderID {
		return nil
	}
	return tx.Cars.UpdateFields(ctx, carID, map[string]any{
		"status":            string(models.CarAvailable),
		"assigned_to_order": nil,
	})
}

// deletePairTransaction removes the transaction recorded for exactly this
// car/order pairing. Failures are logged and never reach the caller.
func (s *orderService) deletePairTransaction(ctx context.Context, carID, orderID uint) {
	n, err := s.repos.Transactions.DeleteByCarAndOrder(ctx, carID, orderID)
	if err != nil {
		s.log.Warn().Err(err).Uint("car_id", carID).Uint("order_id", orderID).Msg("Failed to delete linked transaction")
		return
	}
	if n > 0 {
		s.log.Info().Int64("deleted", n).Uint("car_id", carID).Uint("order_id", orderID).Msg("Linked transaction deleted")
	}
}

func carLabel(car *models.Car) string {
	label := strings.TrimSpace(fmt.Sprintf("%s %s", car.Brand, car.Model))
	if car.Year > 0 {
		label = fmt.Sprintf("%s %d", label, car.Year)
	}
	if car.VIN != "" {
		label += " (" + car.VIN + ")"
	}
	return label
}
