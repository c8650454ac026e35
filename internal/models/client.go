package models

// Client types accepted by the registry form.
const (
	ClientBusiness   = "Business"
	ClientIndividual = "Individual"
)

// Client is an entry of the client registry.
type Client struct {
	ID           ID     `json:"id,omitempty"`
	ClientName   string `json:"clientName"`
	AccessCode   string `json:"accessCode"`
	ContactName  string `json:"contactName"`
	ContactPhone string `json:"contactPhone"`
	ClientType   string `json:"clientType"`
}

// ClientRef is the client summary embedded in statement listings.
type ClientRef struct {
	ClientName string `json:"clientName"`
	AccessCode string `json:"accessCode"`
}
