// Package ticketpdf renders e-tickets of a reservation, one page per ticket.
package ticketpdf

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// Ticket is everything printed on one e-ticket page.
type Ticket struct {
	ID        string
	PlayTitle string
	HallName  string
	ShowTime  time.Time
	Row       int
	Seat      int
}

// Reservation is the document input.
type Reservation struct {
	ID        string
	CreatedAt time.Time
	Holder    string
	Tickets   []Ticket
}

var ErrNoTickets = errors.New("reservation has no tickets")

// QRPNG encodes text as a PNG QR code.
func QRPNG(text string, size int) ([]byte, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("generate qr: %w", err)
	}
	png, err := qr.PNG(size)
	if err != nil {
		return nil, fmt.Errorf("encode qr png: %w", err)
	}
	return png, nil
}

// Render builds the PDF. The QR code of each page carries the ticket id.
func Render(res Reservation) ([]byte, error) {
	if len(res.Tickets) == 0 {
		return nil, ErrNoTickets
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Reservation "+res.ID, true)

	for i, t := range res.Tickets {
		png, err := QRPNG(t.ID, qrSize)
		if err != nil {
			return nil, err
		}
		imgName := fmt.Sprintf("qr-%d", i)
		pdf.RegisterImageOptionsReader(imgName, gofpdf.ImageOptions{ImageType: "png"}, bytes.NewReader(png))

		pdf.AddPage()
		drawTicket(pdf, res, t, imgName, i+1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func drawTicket(pdf *gofpdf.Fpdf, res Reservation, t Ticket, qrImage string, n int) {
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, "THEATRE E-TICKET", "", 1, "L", false, 0, "")

	pdf.SetDrawColor(220, 220, 220)
	pdf.Line(12, pdf.GetY()+2, 136, pdf.GetY()+2)
	pdf.Ln(6)

	sectionTitle(pdf, t.PlayTitle)
	pdf.SetFont("Helvetica", "", 11)
	line(pdf, "Hall", t.HallName)
	line(pdf, "Show time", t.ShowTime.Format("Mon 02 Jan 2006 15:04"))
	line(pdf, "Row", fmt.Sprintf("%d", t.Row))
	line(pdf, "Seat", fmt.Sprintf("%d", t.Seat))
	pdf.Ln(4)

	y := pdf.GetY()
	pdf.ImageOptions(qrImage, 44, y, 60, 0, false, gofpdf.ImageOptions{ImageType: "png"}, 0, "")
	pdf.SetY(y + 64)

	pdf.SetFont("Helvetica", "I", 9)
	pdf.CellFormat(0, 5, "Ticket "+t.ID, "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Reservation %s, ticket %d of %d", res.ID, n, len(res.Tickets)), "", 1, "C", false, 0, "")
	if res.Holder != "" {
		pdf.CellFormat(0, 5, "Holder: "+res.Holder, "", 1, "C", false, 0, "")
	}

	pdf.SetY(196)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Booked "+res.CreatedAt.Format(time.RFC822)+". Present this code at the entrance.", "", 0, "C", false, 0, "")
}

func sectionTitle(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(0, 9, title, "", 1, "L", true, 0, "")
	pdf.Ln(2)
}

func line(pdf *gofpdf.Fpdf, label, value string) {
	pdf.CellFormat(30, 7, label+":", "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}
