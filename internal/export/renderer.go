package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"mentorlink/pkg/protocol"
)

// Lines renders a room log as notes, one "name: text" line per entry in
// append order.
func Lines(entries []protocol.ChatEntry) []string {
	lines := make([]string, len(entries))
	for i, entry := range entries {
		lines[i] = fmt.Sprintf("%s: %s", entry.Name, entry.Text)
	}
	return lines
}

// RenderText writes the plain-text notes document.
func RenderText(w io.Writer, code string, entries []protocol.ChatEntry) error {
	if _, err := fmt.Fprintf(w, "Chat Notes - Room %s\n\n", code); err != nil {
		return err
	}
	for _, line := range Lines(entries) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderPDF writes the notes as a PDF document: a title line, then one
// paragraph per entry.
func RenderPDF(w io.Writer, code string, entries []protocol.ChatEntry) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, fmt.Sprintf("Chat Notes - Room %s", code), "", "L", false)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 12)
	for _, line := range Lines(entries) {
		pdf.MultiCell(0, 6, line, "", "L", false)
		pdf.Ln(2)
	}

	return pdf.Output(w)
}
