package infra

// pdf.go renders sale receipts with go-pdf/fpdf on 80mm receipt-roll pages.
// The page grows with the number of lines so a receipt is always one page.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Safwa9amar/safwanPos-sub000/internal/model"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"
)

const (
	receiptWidth     = 80.0
	receiptMargin    = 4.0
	receiptBaseH     = 70.0
	receiptLineH     = 5.0
	receiptMaxNameLn = 28
)

// ReceiptPath is where the worker stores the rendered receipt of a sale.
func ReceiptPath(storagePath string, saleID uuid.UUID) string {
	return filepath.Join(storagePath, fmt.Sprintf("receipt_%s.pdf", saleID))
}

// GenerateReceiptPDF renders the receipt of sale into storagePath (created if needed)
// and returns the file path.
func GenerateReceiptPDF(sale *model.Sale, businessName, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0o755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}
	path := ReceiptPath(storagePath, sale.ID)
	tmp := path + ".tmp"

	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("pdf: create file: %w", err)
	}
	if err := RenderReceipt(f, sale, businessName); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("pdf: close file: %w", err)
	}
	// Readers never see a half-written receipt.
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("pdf: rename: %w", err)
	}
	return path, nil
}

// RenderReceipt writes the PDF receipt of sale to w.
// Lines are expected to have Product preloaded; missing names print as the product id.
func RenderReceipt(w io.Writer, sale *model.Sale, businessName string) error {
	height := receiptBaseH + float64(len(sale.Lines))*receiptLineH
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: receiptWidth, Ht: height},
	})
	pdf.SetMargins(receiptMargin, receiptMargin, receiptMargin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	contentW := receiptWidth - 2*receiptMargin

	// Header
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, businessName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Sales receipt", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, "Sale "+sale.ID.String(), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, sale.SaleDate.Format("2006-01-02  15:04"), "", 1, "L", false, 0, "")
	pdf.Ln(2)
	pdf.Line(receiptMargin, pdf.GetY(), receiptWidth-receiptMargin, pdf.GetY())
	pdf.Ln(2)

	col1 := contentW * 0.50
	col2 := contentW * 0.14
	col3 := contentW * 0.36

	pdf.SetFont("Helvetica", "B", 7)
	pdf.CellFormat(col1, 5, "Product", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 5, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(col3, 5, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	for _, line := range sale.Lines {
		name := line.ProductID.String()
		if line.Product != nil {
			name = line.Product.Name
		}
		if r := []rune(name); len(r) > receiptMaxNameLn {
			name = string(r[:receiptMaxNameLn-1]) + "."
		}
		pdf.CellFormat(col1, receiptLineH, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, receiptLineH, fmt.Sprintf("x%d", line.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(col3, receiptLineH, line.LineTotal().StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(receiptMargin, pdf.GetY(), receiptWidth-receiptMargin, pdf.GetY())
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(col1+col2, 6, "TOTAL", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 6, sale.TotalAmount.StringFixed(2), "", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(col1+col2, 4, "Payment", "", 0, "L", false, 0, "")
	pdf.CellFormat(col3, 4, sale.PaymentType, "", 1, "R", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, "Thank you for your purchase", "", 1, "C", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("pdf: render: %w", err)
	}
	return nil
}
