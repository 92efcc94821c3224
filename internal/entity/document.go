package entity

// Document is an opaque, immutable statement payload handed to one pipeline
// invocation and discarded afterwards.
type Document struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// Empty reports whether the document carries no payload.
func (d Document) Empty() bool {
	return len(d.Data) == 0
}

// FileInfo describes a file discovered in the storage input folder.
type FileInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MIMEType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	CreatedTime string `json:"created_time"`
}

// UploadResult identifies an uploaded artifact in storage.
type UploadResult struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}
