package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dealership/internal/lifecycle"
	"dealership/internal/logger"
	"dealership/internal/models"
	"dealership/internal/redis"
	"dealership/internal/repository"
	"dealership/internal/validation"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// OrderInput is the intake and edit form of an order.
type OrderInput struct {
	CustomerName    string `json:"customer_name" validate:"required"`
	CustomerPhone   string `json:"customer_phone" validate:"required,phone"`
	CustomerEmail   string `json:"customer_email" validate:"omitempty,email"`
	CustomerCity    string `json:"customer_city"`
	CustomerAddress string `json:"customer_address"`
	CarBrand        string `json:"car_brand"`
	CarModel        string `json:"car_model"`
	CarYear         string `json:"car_year"`
	Budget          string `json:"budget" validate:"omitempty,oneof=under_2m 2m_3m 3m_4m 4m_5m 5m_7m over_7m custom"`
	CustomBudget    string `json:"custom_budget"`
	Notes           string `json:"notes"`
}

func (in OrderInput) customer() *lifecycle.CustomerSnapshot {
	return &lifecycle.CustomerSnapshot{
		Name:    in.CustomerName,
		Phone:   in.CustomerPhone,
		Email:   in.CustomerEmail,
		City:    in.CustomerCity,
		Address: in.CustomerAddress,
	}
}

func (in OrderInput) car() *lifecycle.CarSnapshot {
	return &lifecycle.CarSnapshot{
		Brand:        in.CarBrand,
		Model:        in.CarModel,
		Year:         in.CarYear,
		Budget:       in.Budget,
		CustomBudget: in.CustomBudget,
	}
}

func (in OrderInput) apply(o *models.Order) {
	o.CustomerName = strings.TrimSpace(in.CustomerName)
	o.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	o.CustomerEmail = strings.TrimSpace(in.CustomerEmail)
	o.CustomerCity = in.CustomerCity
	o.CustomerAddress = in.CustomerAddress
	o.CarBrand = in.CarBrand
	o.CarModel = in.CarModel
	o.CarYear = in.CarYear
	o.Budget = in.Budget
	o.CustomBudget = in.CustomBudget
	if in.Budget != "custom" {
		o.CustomBudget = ""
	}
	o.Notes = in.Notes
}

// ShippingDraft is an open shipping-detail collection step. The order stays
// in its current status until the draft is committed.
type ShippingDraft struct {
	OrderID   uint                      `json:"order_id"`
	Request   lifecycle.ShippingRequest `json:"request"`
	ExpiresAt time.Time                 `json:"expires_at"`
}

type OrderService interface {
	CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, id uint) (*models.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error)
	UpdateOrder(ctx context.Context, id uint, in OrderInput) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) error

	UpdateStatus(ctx context.Context, id uint, target string) (*models.Order, error)
	BeginShipping(ctx context.Context, id uint, req lifecycle.ShippingRequest) (*ShippingDraft, error)
	CommitShipping(ctx context.Context, id uint, req *lifecycle.ShippingRequest) (*models.Order, error)
	UpdateTracking(ctx context.Context, id uint, tracking string) (*models.Order, error)
	AwaitingTracking(ctx context.Context) ([]models.Order, error)

	AssignCar(ctx context.Context, orderID, carID uint) (*models.Order, error)
	UnassignCar(ctx context.Context, orderID uint, confirmed bool) (*models.Order, error)

	ContactLink(ctx context.Context, id uint, message string) (string, error)
}

type orderService struct {
	repos    *repository.Repositories
	drafts   redis.Cache
	draftTTL time.Duration
	whatsapp WhatsAppService
	log      zerolog.Logger
}

func NewOrderService(repos *repository.Repositories, drafts redis.Cache, draftTTL time.Duration, whatsapp WhatsAppService) OrderService {
	return &orderService{
		repos:    repos,
		drafts:   drafts,
		draftTTL: draftTTL,
		whatsapp: whatsapp,
		log:      logger.WithComponent("orders"),
	}
}

const referenceAttempts = 3

func (s *orderService) CreateOrder(ctx context.Context, in OrderInput) (*models.Order, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var order *models.Order
	var err error
	// Two concurrent intakes can read the same latest reference; the unique
	// index rejects the loser, which retries with a fresh read.
	for attempt := 0; attempt < referenceAttempts; attempt++ {
		order, err = s.createWithReference(ctx, in)
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	s.log.Info().Str("reference", order.ReferenceNumber).Uint("order_id", order.ID).Msg("Order created")
	return order, nil
}

func (s *orderService) createWithReference(ctx context.Context, in OrderInput) (*models.Order, error) {
	now := timeNow()
	order := &models.Order{}
	in.apply(order)

	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		latest, err := tx.Orders.LatestReference(ctx, lifecycle.ReferencePrefix(now.Year()))
		if err != nil {
			return err
		}
		order.ReferenceNumber = lifecycle.NextReference(latest, now.Year())
		if err := order.SetData(lifecycle.Seed(in.customer(), in.car(), now)); err != nil {
			return err
		}
		return tx.Orders.Create(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	return s.repos.Orders.GetByID(ctx, id)
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]models.Order, error) {
	if filter.Status != "" {
		status, err := lifecycle.ParseStatus(filter.Status)
		if err != nil {
			return nil, err
		}
		filter.Status = string(status)
	}
	return s.repos.Orders.List(ctx, filter)
}

// UpdateOrder applies the edit form. Status and history are untouched; the
// snapshots in order_data follow the edited fields.
func (s *orderService) UpdateOrder(ctx context.Context, id uint, in OrderInput) (*models.Order, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	order, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := order.Data()
	if err != nil {
		return nil, err
	}

	in.apply(order)
	data.Customer = in.customer()
	data.Car = in.car()
	if err := order.SetData(data); err != nil {
		return nil, err
	}
	if err := s.repos.Orders.Update(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// DeleteOrder removes the order and releases the car it held.
func (s *orderService) DeleteOrder(ctx context.Context, id uint) error {
	var releasedCar *uint
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		order, err := tx.Orders.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if order.AssignedCarID != nil {
			if err := releaseCar(ctx, tx, *order.AssignedCarID, order.ID); err != nil {
				return err
			}
			releasedCar = order.AssignedCarID
		}
		return tx.Orders.Delete(ctx, id)
	})
	if err != nil {
		return err
	}

	if releasedCar != nil {
		s.deletePairTransaction(ctx, *releasedCar, id)
	}
	s.log.Info().Uint("order_id", id).Msg("Order deleted")
	return nil
}

// UpdateStatus moves the order to any status except shipped, which goes
// through BeginShipping and CommitShipping.
func (s *orderService) UpdateStatus(ctx context.Context, id uint, target string) (*models.Order, error) {
	status, err := lifecycle.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, func(d lifecycle.OrderData, now time.Time) (lifecycle.OrderData, error) {
		return lifecycle.Transition(d, status, now)
	})
}

func draftKey(orderID uint) string {
	return fmt.Sprintf("shipping_draft:%d", orderID)
}

func (s *orderService) BeginShipping(ctx context.Context, id uint, req lifecycle.ShippingRequest) (*ShippingDraft, error) {
	if _, err := s.repos.Orders.GetByID(ctx, id); err != nil {
		return nil, err
	}
	draft := &ShippingDraft{
		OrderID:   id,
		Request:   req,
		ExpiresAt: timeNow().Add(s.draftTTL),
	}
	if err := s.drafts.SetJSON(ctx, draftKey(id), draft, s.draftTTL); err != nil {
		return nil, fmt.Errorf("failed to store shipping draft: %w", err)
	}
	return draft, nil
}

// CommitShipping marks the order shipped. A nil req commits the open draft.
func (s *orderService) CommitShipping(ctx context.Context, id uint, req *lifecycle.ShippingRequest) (*models.Order, error) {
	if req == nil {
		var draft ShippingDraft
		if err := s.drafts.GetJSON(ctx, draftKey(id), &draft); err != nil {
			if errors.Is(err, redis.ErrCacheMiss) {
				return nil, ErrNoShippingDraft
			}
			return nil, err
		}
		req = &draft.Request
	}

	order, err := s.mutate(ctx, id, func(d lifecycle.OrderData, now time.Time) (lifecycle.OrderData, error) {
		return lifecycle.Ship(d, *req, now)
	})
	if err != nil {
		return nil, err
	}

	if err := s.drafts.Delete(ctx, draftKey(id)); err != nil {
		s.log.Warn().Err(err).Uint("order_id", id).Msg("Failed to drop shipping draft")
	}
	s.log.Info().Uint("order_id", id).Str("carrier", req.Carrier).Bool("awaiting_tracking", req.AwaitingTracking).Msg("Order shipped")
	return order, nil
}

func (s *orderService) UpdateTracking(ctx context.Context, id uint, tracking string) (*models.Order, error) {
	return s.mutate(ctx, id, func(d lifecycle.OrderData, now time.Time) (lifecycle.OrderData, error) {
		return lifecycle.UpdateTracking(d, tracking, now)
	})
}

// AwaitingTracking lists shipped orders whose tracking number is still
// the placeholder.
func (s *orderService) AwaitingTracking(ctx context.Context) ([]models.Order, error) {
	shipped, err := s.repos.Orders.List(ctx, repository.OrderFilter{Status: string(lifecycle.Shipped)})
	if err != nil {
		return nil, err
	}
	var out []models.Order
	for _, o := range shipped {
		data, err := o.Data()
		if err != nil {
			s.log.Warn().Err(err).Uint("order_id", o.ID).Msg("Unreadable order_data")
			continue
		}
		if data.Shipping.AwaitingTracking() {
			out = append(out, o)
		}
	}
	return out, nil
}

// mutate applies fn to the order timeline and persists status and
// order_data in one row update.
func (s *orderService) mutate(ctx context.Context, id uint, fn func(lifecycle.OrderData, time.Time) (lifecycle.OrderData, error)) (*models.Order, error) {
	order, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := order.Data()
	if err != nil {
		return nil, err
	}
	if data.Status == "" {
		data.Status = lifecycle.Status(order.Status)
	}
	data, err = fn(data, timeNow())
	if err != nil {
		return nil, err
	}
	if err := order.SetData(data); err != nil {
		return nil, err
	}
	fields := map[string]any{"status": order.Status, "order_data": order.OrderData}
	if err := s.repos.Orders.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *orderService) ContactLink(ctx context.Context, id uint, message string) (string, error) {
	order, err := s.repos.Orders.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(message) == "" {
		message = fmt.Sprintf("Hello %s, this is about your order %s.", order.CustomerName, order.ReferenceNumber)
	}
	return s.whatsapp.Link(order.CustomerPhone, message), nil
}
