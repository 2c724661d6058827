package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dealership/internal/lifecycle"
	"dealership/internal/logger"
	"dealership/internal/models"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type ReminderService interface {
	Start(schedule string) error
	Stop()
	CheckAwaitingTracking(ctx context.Context) (int, error)
}

type reminderService struct {
	orders     OrderService
	whatsapp   WhatsAppService
	staffPhone string
	scheduler  *cron.Cron
	jobID      cron.EntryID
	log        zerolog.Logger
}

// NewReminderService reminds staff about shipped orders still waiting for
// a tracking number.
func NewReminderService(orders OrderService, whatsapp WhatsAppService, staffPhone string) ReminderService {
	return &reminderService{
		orders:     orders,
		whatsapp:   whatsapp,
		staffPhone: staffPhone,
		scheduler:  cron.New(),
		log:        logger.WithComponent("reminders"),
	}
}

// Start schedules the check with a standard five-field cron expression.
func (s *reminderService) Start(schedule string) error {
	var err error
	s.jobID, err = s.scheduler.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.CheckAwaitingTracking(ctx); err != nil {
			s.log.Error().Err(err).Msg("Tracking reminder failed")
		}
	})
	if err != nil {
		return fmt.Errorf("error scheduling reminder job: %w", err)
	}
	s.scheduler.Start()
	s.log.Info().Str("schedule", schedule).Msg("Reminder scheduler started")
	return nil
}

func (s *reminderService) Stop() {
	ctx := s.scheduler.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Reminder scheduler stopped")
}

// CheckAwaitingTracking sends one reminder listing every order still
// awaiting tracking and returns how many were listed.
func (s *reminderService) CheckAwaitingTracking(ctx context.Context) (int, error) {
	orders, err := s.orders.AwaitingTracking(ctx)
	if err != nil {
		return 0, err
	}
	if len(orders) == 0 {
		return 0, nil
	}

	message := TrackingReminder(orders)
	if s.staffPhone == "" || !s.whatsapp.Enabled() {
		s.log.Warn().Int("orders", len(orders)).Msg("Orders awaiting tracking, no staff WhatsApp configured")
		return len(orders), nil
	}
	if err := s.whatsapp.SendMessage(ctx, s.staffPhone, message); err != nil {
		return len(orders), err
	}
	s.log.Info().Int("orders", len(orders)).Msg("Tracking reminder sent")
	return len(orders), nil
}

// TrackingReminder renders the staff reminder text.
func TrackingReminder(orders []models.Order) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🔔 *Tracking reminder*\n%d shipped order(s) still awaiting a tracking number:\n", len(orders))
	for _, o := range orders {
		fmt.Fprintf(&b, "\n- %s (%s)", o.ReferenceNumber, o.CustomerName)
		data, err := o.Data()
		if err != nil || data.Shipping == nil {
			continue
		}
		if data.Shipping.Carrier != "" {
			fmt.Fprintf(&b, " via %s", lifecycle.CarrierName(data.Shipping.Carrier))
		}
		if t, err := time.Parse(time.RFC3339Nano, data.Shipping.CreatedAt); err == nil {
			fmt.Fprintf(&b, " since %s", t.Format(lifecycle.DateLayout))
		}
	}
	return b.String()
}
