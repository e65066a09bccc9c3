package model

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/shopspring/decimal"

	"github.com/Djamyahia/pharmarecon/model"
)

// ImportRowPayload is one supplier stock row as submitted by the client.
// Textual fields are opaque to the engine and may be empty; quantity and
// unit price are validated here, before rows reach the engine, which never
// fails on row content.
type ImportRowPayload struct {
	Name         string          `json:"name"`
	Form         string          `json:"form"`
	Dosage       string          `json:"dosage"`
	Packaging    string          `json:"packaging"`
	Manufacturer string          `json:"manufacturer"`
	Quantity     int64           `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	ExpiryDate   *time.Time      `json:"expiry_date"`
}

func (p ImportRowPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Quantity, validation.Min(int64(0)).Error("quantity must be non-negative")),
		validation.Field(&p.UnitPrice, validation.By(nonNegativeDecimal)),
	)
}

func nonNegativeDecimal(value interface{}) error {
	price, ok := value.(decimal.Decimal)
	if !ok {
		return validation.NewError("validation_unit_price", "unit price must be a decimal")
	}
	if price.IsNegative() {
		return validation.NewError("validation_unit_price", "unit price must be non-negative")
	}
	return nil
}

// CreateSessionRequest starts a reconciliation session from parsed rows.
type CreateSessionRequest struct {
	Rows []ImportRowPayload `json:"rows"`
}

func (r CreateSessionRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Rows, validation.Required.Error("at least one row is required")),
	)
}

// ToImportRows converts the payload into engine rows, preserving order.
func (r CreateSessionRequest) ToImportRows() []model.ImportRow {
	rows := make([]model.ImportRow, len(r.Rows))
	for i, p := range r.Rows {
		rows[i] = model.ImportRow{
			Name:         p.Name,
			Form:         p.Form,
			Dosage:       p.Dosage,
			Packaging:    p.Packaging,
			Manufacturer: p.Manufacturer,
			Quantity:     p.Quantity,
			UnitPrice:    p.UnitPrice,
			ExpiryDate:   p.ExpiryDate,
		}
	}
	return rows
}

// ResolveRequest binds an ambiguous row to a chosen catalog entry. RowIndex
// is a pointer so index 0 is distinguishable from an absent field.
type ResolveRequest struct {
	RowIndex *int   `json:"row_index"`
	EntryID  string `json:"entry_id"`
}

func (r ResolveRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RowIndex, validation.NotNil.Error("row_index is required")),
		validation.Field(&r.EntryID, validation.Required.Error("entry_id is required")),
	)
}
