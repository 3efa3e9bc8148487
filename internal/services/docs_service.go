package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"connection-travels/internal/domain"
	"connection-travels/internal/domain/models"
	"connection-travels/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders the booking confirmation PDF.
type DocsService struct {
	Bookings  BookingStore
	Buses     BusStore
	RequestID string
	Loader    func(ctx context.Context, userID, bookingID string) (confirmationData, error)
}

type confirmationData struct {
	Booking models.Booking
	Bus     models.BusSummary
}

func (s DocsService) WithRequestID(id string) DocsService {
	s.RequestID = id
	return s
}

// RenderConfirmation returns the PDF and a download filename for a customer's
// own CONFIRMED or COMPLETED booking.
func (s DocsService) RenderConfirmation(ctx context.Context, userID, bookingID string) ([]byte, string, error) {
	data, err := s.load(ctx, userID, bookingID)
	if err != nil {
		return nil, "", err
	}
	switch data.Booking.Status {
	case models.StatusConfirmed, models.StatusCompleted:
	default:
		return nil, "", domain.ConflictError{Resource: "booking", Msg: "confirmation is available once the booking is confirmed"}
	}
	utils.LogEvent(s.RequestID, "docs", "render_confirmation", fmt.Sprintf("booking_id=%s", data.Booking.ID))
	pdf, name, err := buildConfirmationPDF(data)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "render confirmation", Err: err}
	}
	return pdf, name, nil
}

func (s DocsService) load(ctx context.Context, userID, bookingID string) (confirmationData, error) {
	if s.Loader != nil {
		return s.Loader(ctx, userID, bookingID)
	}
	b, err := s.Bookings.GetForUser(ctx, userID, bookingID)
	if err != nil {
		return confirmationData{}, lookupErr("booking", err)
	}
	out := confirmationData{Booking: b, Bus: models.BusSummary{ID: b.BusID}}
	if s.Buses != nil {
		if bus, err := s.Buses.GetByID(ctx, b.BusID); err == nil {
			out.Bus = bus.Summary()
		}
	}
	return out, nil
}

func buildConfirmationPDF(d confirmationData) ([]byte, string, error) {
	b, td := d.Booking, d.Booking.TravelDetails

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Booking Confirmation", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BOOKING CONFIRMATION")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	end := td.EndDate
	if strings.TrimSpace(end) == "" {
		end = td.StartDate
	}
	lines := []string{
		fmt.Sprintf("Booking ID     : %s", b.ID),
		fmt.Sprintf("Status         : %s", b.Status),
		fmt.Sprintf("Bus            : %s (%s)", safe(d.Bus.Title, "-"), safe(d.Bus.RegistrationNo, "-")),
		fmt.Sprintf("Capacity       : %d seats", d.Bus.Capacity),
		fmt.Sprintf("Pickup         : %s", safe(td.PickupLocation, "-")),
		fmt.Sprintf("Drops          : %s", safe(strings.Join(td.DropLocations, ", "), "-")),
		fmt.Sprintf("Travel dates   : %s to %s", safe(td.StartDate, "-"), safe(end, "-")),
		fmt.Sprintf("Passengers     : %d", td.Passengers),
		fmt.Sprintf("Event          : %s", safe(td.EventType, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, "Total: "+utils.FormatRupees(b.UserFinalPrice))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Price locked at : "+utils.FormatDateTime(b.UserPriceLockedAt))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Owner confirmed : "+utils.FormatDateTime(b.OwnerConfirmationAt))
	pdf.Ln(6)
	pdf.Cell(0, 6, "You confirmed   : "+utils.FormatDateTime(b.UserConfirmationAt))
	pdf.Ln(10)

	if note := strings.TrimSpace(td.SpecialInstructions); note != "" {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "Instructions: "+note, "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("CONFIRMATION_%s.pdf", safeFilenamePart(b.ID)), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
