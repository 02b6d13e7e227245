package fieldindex

import (
	"time"

	"github.com/starford/dagaz/internal/extract"
	"github.com/starford/dagaz/internal/models"
	"github.com/starford/dagaz/internal/vault"
)

// ScanPage derives the index record for one journal file.
func ScanPage(path string, data []byte) models.PageRecord {
	content := string(data)
	return models.PageRecord{
		Path:        path,
		Title:       extract.Title(content),
		Checksum:    vault.Checksum(data),
		Fields:      extract.InlineFields(content),
		Completed:   extract.CountCompleted(content),
		Uncompleted: extract.CountUncompleted(content),
		Words:       extract.CountWords(content),
		UpdatedAt:   time.Now().UTC(),
	}
}
