package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/mayacreations/boutique/internal/models"
)

const sheet = "Commandes"

// OrdersWorkbook builds a spreadsheet with one row per order. The caller
// owns the returned file and must Close it.
func OrdersWorkbook(orders []models.Order, customers map[uint]models.User) (*excelize.File, error) {
	f := excelize.NewFile()

	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("creating sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("dropping default sheet: %w", err)
	}

	headers := []string{"Reference", "Date", "Customer", "Email", "Status", "Items", "Total"}
	for i, hdr := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, hdr); err != nil {
			return nil, err
		}
	}

	for row, order := range orders {
		var itemCount uint
		for _, it := range order.Items {
			itemCount += it.Quantity
		}

		customer := customers[order.UserID]
		values := []any{
			order.Reference,
			order.CreatedAt.Format("2006-01-02 15:04"),
			customer.Name,
			customer.Email,
			order.Status,
			itemCount,
			order.Total,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	return f, nil
}
