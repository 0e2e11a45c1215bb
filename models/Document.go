package models

// Document describes one uploaded file kept on local disk. FilePath is the
// public-servable relative path (/files/<category>/<name>), never an absolute
// disk path.
type Document struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	FileType string `json:"fileType"`
	FileSize int64  `json:"fileSize,omitempty"`
}
