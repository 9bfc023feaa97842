package domain

// CartLine is a (product, quantity) pair, the atomic unit of cart state
type CartLine struct {
	ProductID Nat `json:"productId"`
	Quantity  Nat `json:"quantity"`
}

// Product is a read-only catalog snapshot entry
type Product struct {
	ID          Nat      `json:"id"`
	Title       string   `json:"title"`
	Price       Nat      `json:"price"`
	Stock       Nat      `json:"stock"`
	Category    string   `json:"category"`
	Rating      Nat      `json:"rating"`
	ImageURLs   []string `json:"imageUrls"`
	Description string   `json:"description"`
}

// InStock reports whether at least one unit is available
func (p Product) InStock() bool {
	return !p.Stock.IsZero()
}

// Order is created by the backend on a successful placement
type Order struct {
	ID              Nat        `json:"id"`
	Status          string     `json:"status"`
	Total           Nat        `json:"total"`
	ContactInfo     string     `json:"contactInfo"`
	ShippingAddress string     `json:"shippingAddress"`
	UserID          string     `json:"userId"`
	Items           []CartLine `json:"items"`
}

// UserProfile is the caller's saved contact details
type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// CheckoutForm holds the raw shipping/contact input
type CheckoutForm struct {
	Name         string `json:"name" validate:"notblank"`
	Email        string `json:"email" validate:"notblank,contactemail"`
	Phone        string `json:"phone" validate:"notblank,phone10"`
	AddressLine1 string `json:"addressLine1" validate:"notblank"`
	AddressLine2 string `json:"addressLine2,omitempty"`
	City         string `json:"city" validate:"notblank"`
	PostalCode   string `json:"postalCode" validate:"notblank,postal6"`
}
