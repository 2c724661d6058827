package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"dealership/internal/logger"
	"dealership/internal/models"
	"dealership/internal/repository"
	"dealership/internal/shipping"
	"dealership/internal/storage"
	"dealership/internal/validation"

	"github.com/rs/zerolog"
)

// PDFRenderer turns a shipping form into a printable document.
type PDFRenderer interface {
	Render(form *models.ShippingForm) ([]byte, error)
}

type ShippingFormInput struct {
	CustomerName    string           `json:"customer_name" validate:"required"`
	CustomerPhone   string           `json:"customer_phone" validate:"phone"`
	CustomerAddress string           `json:"customer_address"`
	PassportNumber  string           `json:"passport_number"`
	IDCardNumber    string           `json:"id_card_number"`
	VehicleModel    string           `json:"vehicle_model"`
	VIN             string           `json:"vin"`
	Notes           string           `json:"notes"`
	VehiclePhotos   models.PhotoList `json:"vehicle_photos_urls"`
	Status          string           `json:"status" validate:"omitempty,oneof=pending completed"`
	TransactionID   *uint            `json:"transaction_id"`
	OrderID         *uint            `json:"order_id"`
}

func (in ShippingFormInput) apply(f *models.ShippingForm) {
	f.CustomerName = strings.TrimSpace(in.CustomerName)
	f.CustomerPhone = strings.TrimSpace(in.CustomerPhone)
	f.CustomerAddress = in.CustomerAddress
	f.PassportNumber = in.PassportNumber
	f.IDCardNumber = in.IDCardNumber
	f.VehicleModel = in.VehicleModel
	f.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	f.Notes = in.Notes
	if in.VehiclePhotos != nil {
		f.VehiclePhotosURLs = models.PhotoList(models.ParsePhotoList(in.VehiclePhotos))
	}
	if in.Status != "" {
		f.Status = in.Status
	}
	if in.TransactionID != nil {
		f.TransactionID = in.TransactionID
	}
	if in.OrderID != nil {
		f.OrderID = in.OrderID
	}
}

// Document kinds accepted by UploadDocument.
const (
	DocPassport     = "passport"
	DocIDFront      = "id_front"
	DocIDBack       = "id_back"
	DocVehiclePhoto = "vehicle_photo"
)

// ShareResult is the text of a shipping form and its wa.me hand-off link.
type ShareResult struct {
	Phone   string `json:"phone"`
	Message string `json:"message"`
	Link    string `json:"link"`
}

type ShippingFormService interface {
	CreateForm(ctx context.Context, in ShippingFormInput) (*models.ShippingForm, error)
	GetForm(ctx context.Context, id uint) (*models.ShippingForm, error)
	ListForms(ctx context.Context, filter repository.ShippingFormFilter) ([]models.ShippingForm, error)
	UpdateForm(ctx context.Context, id uint, in ShippingFormInput) (*models.ShippingForm, error)
	DeleteForm(ctx context.Context, id uint) error
	UploadDocument(ctx context.Context, id uint, kind, filename string, r io.Reader) (*models.ShippingForm, error)
	RegeneratePDF(ctx context.Context, id uint) (*models.ShippingForm, error)
	Share(ctx context.Context, id uint, phone string) (*ShareResult, error)
	Send(ctx context.Context, id uint, phone string) (*ShareResult, error)
}

type shippingFormService struct {
	repos    *repository.Repositories
	store    storage.Store
	pdf      PDFRenderer
	whatsapp WhatsAppService
	log      zerolog.Logger
}

func NewShippingFormService(repos *repository.Repositories, store storage.Store, pdf PDFRenderer, whatsapp WhatsAppService) ShippingFormService {
	return &shippingFormService{
		repos:    repos,
		store:    store,
		pdf:      pdf,
		whatsapp: whatsapp,
		log:      logger.WithComponent("shipping_forms"),
	}
}

func (s *shippingFormService) CreateForm(ctx context.Context, in ShippingFormInput) (*models.ShippingForm, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	form := &models.ShippingForm{Status: models.FormPending}
	in.apply(form)
	if err := s.repos.ShippingForms.Create(ctx, form); err != nil {
		return nil, err
	}
	s.refreshPDF(ctx, form)
	return form, nil
}

func (s *shippingFormService) GetForm(ctx context.Context, id uint) (*models.ShippingForm, error) {
	return s.repos.ShippingForms.GetByID(ctx, id)
}

func (s *shippingFormService) ListForms(ctx context.Context, filter repository.ShippingFormFilter) ([]models.ShippingForm, error) {
	return s.repos.ShippingForms.List(ctx, filter)
}

// UpdateForm saves the edited fields and regenerates the PDF.
func (s *shippingFormService) UpdateForm(ctx context.Context, id uint, in ShippingFormInput) (*models.ShippingForm, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	form, err := s.repos.ShippingForms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(form)
	if err := s.repos.ShippingForms.Update(ctx, form); err != nil {
		return nil, err
	}
	s.refreshPDF(ctx, form)
	return form, nil
}

func (s *shippingFormService) DeleteForm(ctx context.Context, id uint) error {
	form, err := s.repos.ShippingForms.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repos.ShippingForms.Delete(ctx, id); err != nil {
		return err
	}
	blobs := append([]string{form.PDFURL, form.PassportPhotoURL, form.IDCardFrontURL, form.IDCardBackURL},
		models.ParsePhotoList(form.VehiclePhotosURLs)...)
	for _, url := range blobs {
		s.deleteBlob(ctx, url)
	}
	return nil
}

func (s *shippingFormService) RegeneratePDF(ctx context.Context, id uint) (*models.ShippingForm, error) {
	form, err := s.repos.ShippingForms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.regeneratePDF(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// refreshPDF regenerates the PDF after a save. The saved row stands even
// when rendering fails.
func (s *shippingFormService) refreshPDF(ctx context.Context, form *models.ShippingForm) {
	if err := s.regeneratePDF(ctx, form); err != nil {
		s.log.Error().Err(err).Uint("form_id", form.ID).Msg("PDF regeneration failed")
	}
}

// regeneratePDF renders and uploads a fresh PDF, points the form at it and
// deletes the previous blob.
func (s *shippingFormService) regeneratePDF(ctx context.Context, form *models.ShippingForm) error {
	if s.pdf == nil {
		return nil
	}
	doc, err := s.pdf.Render(form)
	if err != nil {
		return err
	}
	url, err := s.store.Upload(ctx, storage.NewObjectPath(fmt.Sprintf("shipping-forms/%d", form.ID), ".pdf"), bytes.NewReader(doc))
	if err != nil {
		return fmt.Errorf("failed to upload PDF: %w", err)
	}
	previous := form.PDFURL
	if err := s.repos.ShippingForms.UpdateFields(ctx, form.ID, map[string]any{"pdf_url": url}); err != nil {
		s.deleteBlob(ctx, url)
		return err
	}
	form.PDFURL = url
	if previous != url {
		s.deleteBlob(ctx, previous)
	}
	return nil
}

func (s *shippingFormService) UploadDocument(ctx context.Context, id uint, kind, filename string, r io.Reader) (*models.ShippingForm, error) {
	var column string
	switch kind {
	case DocPassport:
		column = "passport_photo_url"
	case DocIDFront:
		column = "id_card_front_url"
	case DocIDBack:
		column = "id_card_back_url"
	case DocVehiclePhoto:
		column = "vehicle_photos_urls"
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDocument, kind)
	}

	form, err := s.repos.ShippingForms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.store.Upload(ctx, storage.NewObjectPath(fmt.Sprintf("shipping-forms/%d/%s", form.ID, kind), filepath.Ext(filename)), r)
	if err != nil {
		return nil, err
	}

	var previous string
	var value any = url
	switch kind {
	case DocPassport:
		previous, form.PassportPhotoURL = form.PassportPhotoURL, url
	case DocIDFront:
		previous, form.IDCardFrontURL = form.IDCardFrontURL, url
	case DocIDBack:
		previous, form.IDCardBackURL = form.IDCardBackURL, url
	case DocVehiclePhoto:
		form.VehiclePhotosURLs = models.PhotoList(append(models.ParsePhotoList(form.VehiclePhotosURLs), url))
		value = form.VehiclePhotosURLs
	}

	if err := s.repos.ShippingForms.UpdateFields(ctx, form.ID, map[string]any{column: value}); err != nil {
		s.deleteBlob(ctx, url)
		return nil, err
	}
	s.deleteBlob(ctx, previous)
	return form, nil
}

// Share builds the message for phone, defaulting to the customer's number.
func (s *shippingFormService) Share(ctx context.Context, id uint, phone string) (*ShareResult, error) {
	form, err := s.repos.ShippingForms.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(phone) == "" {
		phone = form.CustomerPhone
	}
	if strings.TrimSpace(phone) == "" {
		return nil, validation.New("phone", "is required")
	}
	message := shipping.BuildShareMessage(form)
	return &ShareResult{
		Phone:   phone,
		Message: message,
		Link:    s.whatsapp.Link(phone, message),
	}, nil
}

// Send pushes the share message through the configured gateway.
func (s *shippingFormService) Send(ctx context.Context, id uint, phone string) (*ShareResult, error) {
	result, err := s.Share(ctx, id, phone)
	if err != nil {
		return nil, err
	}
	if err := s.whatsapp.SendMessage(ctx, result.Phone, result.Message); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *shippingFormService) deleteBlob(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("Failed to delete blob")
	}
}
