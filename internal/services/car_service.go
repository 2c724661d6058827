package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"dealership/internal/currency"
	"dealership/internal/logger"
	"dealership/internal/media"
	"dealership/internal/models"
	"dealership/internal/repository"
	"dealership/internal/storage"
	"dealership/internal/validation"

	"github.com/rs/zerolog"
)

type CarInput struct {
	Brand          string           `json:"brand" validate:"required"`
	Model          string           `json:"model" validate:"required"`
	Year           int              `json:"year" validate:"omitempty,gte=1950"`
	Mileage        int              `json:"mileage" validate:"gte=0"`
	Color          string           `json:"color"`
	VIN            string           `json:"vin"`
	SellingPrice   float64          `json:"selling_price" validate:"gte=0"`
	Currency       string           `json:"currency" validate:"omitempty,oneof=DZD USDT KRW"`
	PurchasePrice  float64          `json:"purchase_price" validate:"gte=0"`
	BuyingPriceKRW float64          `json:"buying_price_krw" validate:"gte=0"`
	PhotosURLs     models.PhotoList `json:"photos_urls"`
	Status         string           `json:"status" validate:"omitempty,oneof=available reserved sold"`
	Notes          string           `json:"notes"`
}

func (in CarInput) apply(c *models.Car) {
	c.Brand = strings.TrimSpace(in.Brand)
	c.Model = strings.TrimSpace(in.Model)
	c.Year = in.Year
	c.Mileage = in.Mileage
	c.Color = in.Color
	c.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	c.SellingPrice = in.SellingPrice
	c.Currency = in.Currency
	if c.Currency == "" {
		c.Currency = currency.DZD
	}
	c.PurchasePrice = in.PurchasePrice
	c.BuyingPriceKRW = in.BuyingPriceKRW
	if in.PhotosURLs != nil {
		c.PhotosURLs = models.PhotoList(models.ParsePhotoList(in.PhotosURLs))
	}
	if in.Status != "" {
		c.Status = in.Status
	}
	c.Notes = in.Notes
}

// UploadedPhoto is the result of a car photo upload.
type UploadedPhoto struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
}

type CarService interface {
	CreateCar(ctx context.Context, in CarInput) (*models.Car, error)
	GetCar(ctx context.Context, id uint) (*models.Car, error)
	ListCars(ctx context.Context, filter repository.CarFilter) ([]models.Car, error)
	UpdateCar(ctx context.Context, id uint, in CarInput) (*models.Car, error)
	DeleteCar(ctx context.Context, id uint) error
	UploadPhoto(ctx context.Context, id uint, filename string, r io.Reader) (*UploadedPhoto, error)
	RemovePhoto(ctx context.Context, id uint, url string) (*models.Car, error)
	UploadVideo(ctx context.Context, id uint, filename string, r io.Reader) (*models.Car, error)
	BroadcastLink(ctx context.Context, id uint, phone string) (string, error)
}

type carService struct {
	repos    *repository.Repositories
	store    storage.Store
	whatsapp WhatsAppService
	log      zerolog.Logger
}

func NewCarService(repos *repository.Repositories, store storage.Store, whatsapp WhatsAppService) CarService {
	return &carService{
		repos:    repos,
		store:    store,
		whatsapp: whatsapp,
		log:      logger.WithComponent("cars"),
	}
}

func (s *carService) CreateCar(ctx context.Context, in CarInput) (*models.Car, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	car := &models.Car{Status: string(models.CarAvailable)}
	in.apply(car)
	if err := s.repos.Cars.Create(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *carService) GetCar(ctx context.Context, id uint) (*models.Car, error) {
	return s.repos.Cars.GetByID(ctx, id)
}

func (s *carService) ListCars(ctx context.Context, filter repository.CarFilter) ([]models.Car, error) {
	return s.repos.Cars.List(ctx, filter)
}

// UpdateCar applies the edit form. Assignment fields only change through
// the order assign/unassign flow.
func (s *carService) UpdateCar(ctx context.Context, id uint, in CarInput) (*models.Car, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	car, err := s.repos.Cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if car.AssignedToOrder != nil && in.Status == string(models.CarAvailable) {
		return nil, validation.New("status", "cannot be available while assigned to an order")
	}
	in.apply(car)
	if err := s.repos.Cars.Update(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

// DeleteCar removes the car and clears the pointer of the order holding it.
func (s *carService) DeleteCar(ctx context.Context, id uint) error {
	var blobs []string
	err := s.repos.Transaction(ctx, func(tx *repository.Repositories) error {
		car, err := tx.Cars.GetByID(ctx, id)
		if err != nil {
			return err
		}
		blobs = blobs[:0]
		for _, url := range models.ParsePhotoList(car.PhotosURLs) {
			blobs = append(blobs, photoBlobs(url)...)
		}
		blobs = append(blobs, car.VideoURL)
		if car.AssignedToOrder != nil {
			err := tx.Orders.UpdateFields(ctx, *car.AssignedToOrder, map[string]any{"assigned_car_id": nil})
			if err != nil && !errors.Is(err, repository.ErrNotFound) {
				return err
			}
		}
		return tx.Cars.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	for _, url := range blobs {
		s.deleteBlob(ctx, url)
	}
	return nil
}

func (s *carService) UploadPhoto(ctx context.Context, id uint, filename string, r io.Reader) (*UploadedPhoto, error) {
	car, err := s.repos.Cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	ext := filepath.Ext(filename)
	folder := fmt.Sprintf("cars/%d", car.ID)
	objectPath := storage.NewObjectPath(folder, ext)
	url, err := s.store.Upload(ctx, objectPath, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	out := &UploadedPhoto{URL: url}

	if media.IsImage(ext) {
		thumb, err := media.Thumbnail(bytes.NewReader(data), media.ThumbnailWidth)
		if err != nil {
			s.log.Warn().Err(err).Uint("car_id", car.ID).Msg("Thumbnail generation failed")
		} else {
			thumbURL, err := s.store.Upload(ctx, thumbnailOf(objectPath), bytes.NewReader(thumb))
			if err != nil {
				s.log.Warn().Err(err).Uint("car_id", car.ID).Msg("Thumbnail upload failed")
			} else {
				out.ThumbnailURL = thumbURL
			}
		}
	}

	photos := append(models.ParsePhotoList(car.PhotosURLs), url)
	if err := s.repos.Cars.UpdateFields(ctx, car.ID, map[string]any{"photos_urls": models.PhotoList(photos)}); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *carService) RemovePhoto(ctx context.Context, id uint, url string) (*models.Car, error) {
	car, err := s.repos.Cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	kept := make([]string, 0, len(car.PhotosURLs))
	for _, p := range models.ParsePhotoList(car.PhotosURLs) {
		if p != url {
			kept = append(kept, p)
		}
	}
	car.PhotosURLs = models.PhotoList(kept)
	if err := s.repos.Cars.UpdateFields(ctx, car.ID, map[string]any{"photos_urls": car.PhotosURLs}); err != nil {
		return nil, err
	}
	for _, blob := range photoBlobs(url) {
		s.deleteBlob(ctx, blob)
	}
	return car, nil
}

// thumbnailOf maps a photo path or URL to its thumbnail: a JPEG with the
// same base name in the sibling thumbs/ folder.
func thumbnailOf(photo string) string {
	dir, file := "", photo
	if i := strings.LastIndex(photo, "/"); i >= 0 {
		dir, file = photo[:i+1], photo[i+1:]
	}
	return dir + "thumbs/" + strings.TrimSuffix(file, path.Ext(file)) + ".jpg"
}

// photoBlobs lists the blobs stored for one photo.
func photoBlobs(url string) []string {
	if media.IsImage(path.Ext(url)) {
		return []string{url, thumbnailOf(url)}
	}
	return []string{url}
}

func (s *carService) UploadVideo(ctx context.Context, id uint, filename string, r io.Reader) (*models.Car, error) {
	car, err := s.repos.Cars.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	url, err := s.store.Upload(ctx, storage.NewObjectPath(fmt.Sprintf("cars/%d/video", car.ID), filepath.Ext(filename)), r)
	if err != nil {
		return nil, err
	}
	previous := car.VideoURL
	car.VideoURL = url
	if err := s.repos.Cars.UpdateFields(ctx, car.ID, map[string]any{"video_url": url}); err != nil {
		return nil, err
	}
	s.deleteBlob(ctx, previous)
	return car, nil
}

// BroadcastLink builds a wa.me link sharing the car with a prospect.
func (s *carService) BroadcastLink(ctx context.Context, id uint, phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", validation.New("phone", "is required")
	}
	car, err := s.repos.Cars.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return s.whatsapp.Link(phone, CarAnnouncement(car)), nil
}

// CarAnnouncement is the inventory message sent to prospects.
func CarAnnouncement(car *models.Car) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚗 *%s*\n", carLabel(&models.Car{Brand: car.Brand, Model: car.Model, Year: car.Year}))
	if car.Mileage > 0 {
		fmt.Fprintf(&b, "Mileage: %s km\n", strings.TrimSuffix(currency.Format(float64(car.Mileage)), ".00"))
	}
	if car.Color != "" {
		fmt.Fprintf(&b, "Color: %s\n", car.Color)
	}
	if car.SellingPrice > 0 {
		fmt.Fprintf(&b, "Price: %s\n", currency.FormatAmount(car.SellingPrice, car.Currency))
	}
	photos := models.ParsePhotoList(car.PhotosURLs)
	if len(photos) > 0 {
		b.WriteString("Photos:\n")
		for i, url := range photos {
			fmt.Fprintf(&b, "%d. %s\n", i+1, url)
		}
	}
	if car.VideoURL != "" {
		fmt.Fprintf(&b, "Video: %s\n", car.VideoURL)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *carService) deleteBlob(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := s.store.Delete(ctx, url); err != nil {
		s.log.Warn().Err(err).Str("url", url).Msg("Failed to delete blob")
	}
}
