package model

import "net/mail"

// Client is a customer business. ClientID is the business name and is
// matched case-insensitively by storage.
type Client struct {
	ClientID      string `json:"client_id"`
	Name          string `json:"name"`
	Email         string `json:"email,omitempty"`
	Phone         string `json:"phone,omitempty"`
	ContactPerson string `json:"contact_person,omitempty"`
	ABN           string `json:"abn,omitempty"`

	StreetAddress    string `json:"street_address,omitempty"`
	Suburb           string `json:"suburb,omitempty"`
	State            string `json:"state,omitempty"`
	Postcode         string `json:"postcode,omitempty"`
	FormattedAddress string `json:"formatted_address,omitempty"`

	BillingStreetAddress    string `json:"billing_street_address,omitempty"`
	BillingSuburb           string `json:"billing_suburb,omitempty"`
	BillingState            string `json:"billing_state,omitempty"`
	BillingPostcode         string `json:"billing_postcode,omitempty"`
	BillingFormattedAddress string `json:"billing_formatted_address,omitempty"`

	Notes string `json:"notes,omitempty"`
}

// Validate requires an id and a name; the email is checked only when set.
func (c Client) Validate() error {
	v := newValidator("client")
	if c.ClientID == "" {
		v.addf("client_id", "must not be empty")
	}
	if c.Name == "" {
		v.addf("name", "must not be empty")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			v.addf("email", "%q is not a valid address", c.Email)
		}
	}
	return v.err()
}

// BillingAddress returns the billing address, falling back to the physical one.
func (c Client) BillingAddress() string {
	if c.BillingFormattedAddress != "" {
		return c.BillingFormattedAddress
	}
	return c.FormattedAddress
}
