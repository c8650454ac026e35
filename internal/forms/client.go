package forms

import "github.com/insightdelivered/statement-desk/internal/models"

var clientSchema = []byte(`{
  "type": "object",
  "required": ["accessCode", "clientName", "contactName", "contactPhone", "clientType"],
  "properties": {
    "accessCode":   {"type": "string", "pattern": "\\S"},
    "clientName":   {"type": "string", "pattern": "\\S"},
    "contactName":  {"type": "string", "pattern": "\\S"},
    "contactPhone": {"type": "string", "pattern": "^[0-9+()\\-\\s]*[0-9][0-9+()\\-\\s]*$"},
    "clientType":   {"enum": ["Business", "Individual"]}
  }
}`)

// Client validates the client registry form.
var Client = MustCompile("client", clientSchema,
	map[string]string{
		"accessCode":   "Access Code",
		"clientName":   "Client Name",
		"contactName":  "Contact Name",
		"contactPhone": "Contact Phone",
		"clientType":   "Client Type",
	},
	map[string]string{
		"contactPhone": "Please enter a valid phone number!",
		"clientType":   "Please select a client type!",
	},
)

// CheckClient validates a client before it is created or updated.
func CheckClient(c models.Client) error {
	return Client.Check(c)
}
