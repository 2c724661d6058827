package services

import (
	"context"

	"dealership/internal/logger"
	"dealership/pkg/whatsapp"

	"github.com/rs/zerolog"
)

type WhatsAppService interface {
	Enabled() bool
	SendMessage(ctx context.Context, phone, message string) error
	Link(phone, message string) string
}

type whatsappService struct {
	client *whatsapp.Client
	log    zerolog.Logger
}

// NewWhatsAppService wraps the gateway client. A nil client leaves only the
// wa.me link hand-off available.
func NewWhatsAppService(client *whatsapp.Client) WhatsAppService {
	return &whatsappService{client: client, log: logger.WithComponent("whatsapp")}
}

func (s *whatsappService) Enabled() bool {
	return s.client != nil && s.client.BaseURL != ""
}

func (s *whatsappService) SendMessage(ctx context.Context, phone, message string) error {
	if !s.Enabled() {
		return whatsapp.ErrNotConfigured
	}
	resp, err := s.client.SendMessage(ctx, phone, message)
	if err != nil {
		s.log.Error().Err(err).Str("phone", whatsapp.NormalizePhone(phone)).Msg("Failed to send message")
		return err
	}
	s.log.Info().Str("phone", whatsapp.NormalizePhone(phone)).Str("message_id", resp.Results.MessageID).Msg("Message sent")
	return nil
}

func (s *whatsappService) Link(phone, message string) string {
	return whatsapp.DeepLink(phone, message)
}
