package forms

// UploadInput is the statement upload form.
type UploadInput struct {
	ClientID       string `json:"clientId"`
	AccessCode     string `json:"accessCode"`
	ClientName     string `json:"clientName"`
	MonthReference string `json:"monthReference"`
	FileName       string `json:"fileName"`
	FileSize       int    `json:"fileSize"`
}

var uploadSchema = []byte(`{
  "type": "object",
  "required": ["clientId", "accessCode", "clientName", "monthReference", "fileName"],
  "properties": {
    "clientId":       {"type": "string", "minLength": 1},
    "accessCode":     {"type": "string", "minLength": 1},
    "clientName":     {"type": "string", "minLength": 1},
    "monthReference": {"type": "string", "pattern": "^[0-9]{4}-(0[1-9]|1[0-2])$"},
    "fileName":       {"type": "string", "pattern": "(?i)\\.pdf$"},
    "fileSize":       {"type": "integer", "exclusiveMinimum": 0}
  }
}`)

// Upload validates the statement upload form.
var Upload = MustCompile("upload", uploadSchema,
	map[string]string{
		"clientId":       "Client",
		"accessCode":     "Access Code",
		"clientName":     "Client Name",
		"monthReference": "Month/Year",
		"fileName":       "Statement file",
		"fileSize":       "Statement file",
	},
	map[string]string{
		"clientId":       "Please select a client!",
		"accessCode":     "Please select a client!",
		"clientName":     "Please select a client!",
		"monthReference": "Please select month and year!",
		"fileName":       "Please upload a PDF statement!",
		"fileSize":       "Please upload a PDF statement!",
	},
)

func CheckUpload(in UploadInput) error {
	return Upload.Check(in)
}
