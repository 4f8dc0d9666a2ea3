package domain

// Client is a person receiving treatments. Identity is the numeric id;
// the name is display-only and not unique.
type Client struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}
