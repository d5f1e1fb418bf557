package domain

// UnknownUploader is recorded when the upload provider passes no name.
const UnknownUploader = "Unknown User"

// UploadedFile is what the upload provider reports once a file is stored.
type UploadedFile struct {
	URL       string
	Name      string
	MIMEType  string
	Size      int64
	Thumbnail string
	Duration  float64
}
