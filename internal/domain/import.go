package domain

import "time"

type FileType string

const (
	FileTypeOrders   FileType = "orders"
	FileTypeProducts FileType = "products"
	FileTypeUnknown  FileType = "unknown"
)

// MaxReportedErrors caps ImportResult.Errors. Rows past the cap are still
// counted in Skipped.
const MaxReportedErrors = 20

// ImportResult is the summary returned for one uploaded file. Updated is only
// set for products and DuplicatesInDB only for orders.
type ImportResult struct {
	Message          string   `json:"message"`
	Type             FileType `json:"type"`
	Imported         int      `json:"imported"`
	Updated          *int     `json:"updated,omitempty"`
	Skipped          int      `json:"skipped"`
	DuplicatesInFile int      `json:"duplicatesInFile"`
	DuplicatesInDB   *int     `json:"duplicatesInDb,omitempty"`
	Total            int      `json:"total"`
	Errors           []string `json:"errors,omitempty"`
}

type ImportHistory struct {
	ID               uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	BatchID          string    `json:"batchId" gorm:"size:36;not null;uniqueIndex"`
	FileName         string    `json:"fileName" gorm:"size:255"`
	FileType         FileType  `json:"fileType" gorm:"size:16;not null;index"`
	Imported         int       `json:"imported"`
	Updated          int       `json:"updated"`
	Skipped          int       `json:"skipped"`
	DuplicatesInFile int       `json:"duplicatesInFile"`
	DuplicatesInDB   int       `json:"duplicatesInDb"`
	Total            int       `json:"total"`
	ErrorCount       int       `json:"errorCount"`
	CreatedAt        time.Time `json:"createdAt" gorm:"autoCreateTime;index"`
}

func (ImportHistory) TableName() string {
	return "import_histories"
}
