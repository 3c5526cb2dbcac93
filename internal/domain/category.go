package domain

// Category forms a tree via Children. Cycle prevention is the server's
// responsibility; the client treats the tree as arbitrarily deep.
type Category struct {
	ID           string     `json:"id"`
	Slug         string     `json:"slug"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	ParentID     string     `json:"parentId,omitempty"`
	IsActive     bool       `json:"isActive"`
	ProductCount int        `json:"productCount"`
	Children     []Category `json:"children,omitempty"`
}

type Manufacturer struct {
	ID           string `json:"id"`
	Slug         string `json:"slug"`
	Name         string `json:"name"`
	Country      string `json:"country,omitempty"`
	LogoURL      string `json:"logoUrl,omitempty"`
	ProductCount int    `json:"productCount"`
}
