package worker

// receipt_worker.go
// Renders the PDF receipt of a committed sale into the receipt storage directory.
// The HTTP receipt endpoint serves the stored file when present.

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Safwa9amar/safwanPos-sub000/internal/infra"
	"github.com/Safwa9amar/safwanPos-sub000/internal/model"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// SaleFinder loads a sale with its lines and product names.
type SaleFinder interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Sale, error)
}

type ReceiptWorker struct {
	sales        SaleFinder
	businessName string
	storagePath  string
}

func NewReceiptWorker(sales SaleFinder, businessName, storagePath string) *ReceiptWorker {
	return &ReceiptWorker{sales: sales, businessName: businessName, storagePath: storagePath}
}

func (w *ReceiptWorker) Process(ctx context.Context, raw json.RawMessage) error {
	var payload ReceiptJobPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("receipt_worker: invalid payload: %w", err)
	}
	tenantID, err := uuid.Parse(payload.TenantID)
	if err != nil {
		return fmt.Errorf("receipt_worker: invalid tenant_id: %w", err)
	}
	saleID, err := uuid.Parse(payload.SaleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: invalid sale_id: %w", err)
	}

	sale, err := w.sales.FindByID(ctx, tenantID, saleID)
	if err != nil {
		return fmt.Errorf("receipt_worker: load sale %s: %w", saleID, err)
	}

	path, err := infra.GenerateReceiptPDF(sale, w.businessName, w.storagePath)
	if err != nil {
		return err
	}
	log.Info().Str("pdf", path).Str("sale_id", payload.SaleID).Msg("receipt_worker: receipt generated")
	return nil
}
