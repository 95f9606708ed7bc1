package report

import (
	"time"

	"github.com/google/uuid"
)

// ProductRecord is one cleaned row of a bulletin.
type ProductRecord struct {
	ProductName  string  `json:"product_name" csv:"product_name"`
	AveragePrice float64 `json:"average_price" csv:"average_price"`
}

// DailyReport is the stored result of one successful extraction.
type DailyReport struct {
	ID        uuid.UUID       `json:"id"`
	Date      time.Time       `json:"date"`
	Category  string          `json:"category"`
	Source    string          `json:"source"`
	Products  []ProductRecord `json:"products"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}
