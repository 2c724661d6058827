package shipping

import (
	"fmt"
	"strings"

	"dealership/internal/models"
)

// BuildShareMessage renders the WhatsApp text for a shipping form: a
// customer block, a vehicle block and the document links. Links appear in a
// fixed order (PDF, passport, ID card front, ID card back) followed by the
// numbered vehicle photos. Missing values are skipped.
func BuildShareMessage(form *models.ShippingForm) string {
	var b strings.Builder

	b.WriteString("📦 *Shipping Form*\n\n")

	b.WriteString("👤 *Customer*\n")
	line(&b, "Name", form.CustomerName)
	line(&b, "Phone", form.CustomerPhone)
	line(&b, "Address", form.CustomerAddress)
	line(&b, "Passport No", form.PassportNumber)
	line(&b, "ID Card No", form.IDCardNumber)

	b.WriteString("\n🚗 *Vehicle*\n")
	line(&b, "Model", form.VehicleModel)
	line(&b, "VIN", form.VIN)
	line(&b, "Notes", form.Notes)

	photos := models.ParsePhotoList(form.VehiclePhotosURLs)
	if !hasDocuments(form) && len(photos) == 0 {
		return strings.TrimRight(b.String(), "\n")
	}

	b.WriteString("\n📎 *Documents*\n")
	line(&b, "PDF", form.PDFURL)
	line(&b, "Passport", form.PassportPhotoURL)
	line(&b, "ID Card (front)", form.IDCardFrontURL)
	line(&b, "ID Card (back)", form.IDCardBackURL)
	if len(photos) > 0 {
		b.WriteString("Vehicle photos:\n")
		for i, url := range photos {
			fmt.Fprintf(&b, "%d. %s\n", i+1, url)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}

func hasDocuments(form *models.ShippingForm) bool {
	return form.PDFURL != "" || form.PassportPhotoURL != "" ||
		form.IDCardFrontURL != "" || form.IDCardBackURL != ""
}

func line(b *strings.Builder, label, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		return
	}
	fmt.Fprintf(b, "%s: %s\n", label, value)
}
