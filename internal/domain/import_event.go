package domain

import "time"

type ImportCompletedEvent struct {
	BatchID          string    `json:"batchId"`
	FileName         string    `json:"fileName"`
	FileType         FileType  `json:"fileType"`
	Imported         int       `json:"imported"`
	Updated          int       `json:"updated"`
	Skipped          int       `json:"skipped"`
	DuplicatesInFile int       `json:"duplicatesInFile"`
	DuplicatesInDB   int       `json:"duplicatesInDb"`
	Total            int       `json:"total"`
	CompletedAt      time.Time `json:"completedAt"`
}
