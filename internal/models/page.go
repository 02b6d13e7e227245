package models

import "time"

// PageRecord is the indexed view of one journal file. Records are what
// scripts receive as their current-page binding.
type PageRecord struct {
	Path        string            `json:"path"`
	Title       string            `json:"title"`
	Checksum    string            `json:"checksum"`
	Fields      map[string]string `json:"fields"`
	Completed   int               `json:"completed"`
	Uncompleted int               `json:"uncompleted"`
	Words       int               `json:"words"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FileMeta describes one vault file during a listing pass.
type FileMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FileRef is a resolved handle to an existing vault file.
type FileRef struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"mod_time"`
}
