// Package backendtest provides an in-memory ledger backend speaking the same
// GraphQL surface as the real service, for tests.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/jafarshop/storefront/internal/domain"
)

// Server is a fake ledger. Carts are keyed by the bearer credential.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	products []domain.Product
	carts    map[string][]domain.CartLine
	orders   []domain.Order
	profiles map[string]domain.UserProfile
	calls    map[string]int
	failures map[string]string
	nextID   uint64

	// BeforeOperation, when set, runs before an operation is handled. Tests
	// use it to block or observe in-flight calls.
	BeforeOperation func(operation string)
}

// NewServer starts a fake ledger seeded with products
func NewServer(products ...domain.Product) *Server {
	s := &Server{
		products: products,
		carts:    make(map[string][]domain.CartLine),
		profiles: make(map[string]domain.UserProfile),
		calls:    make(map[string]int),
		failures: make(map[string]string),
		nextID:   1,
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	return s
}

// Calls returns how many times operation was invoked
func (s *Server) Calls(operation string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[operation]
}

// Fail makes every call of operation return a GraphQL error with message
// until Recover is called
func (s *Server) Fail(operation, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[operation] = message
}

// Recover undoes Fail
func (s *Server) Recover(operation string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, operation)
}

// Cart returns a copy of the cart held for principal
func (s *Server) Cart(principal string) []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartLine(nil), s.carts[principal]...)
}

// SetCart replaces the cart held for principal
func (s *Server) SetCart(principal string, lines []domain.CartLine) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.carts[principal] = append([]domain.CartLine(nil), lines...)
}

// SetProfile stores a caller profile
func (s *Server) SetProfile(principal string, profile domain.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[principal] = profile
}

type request struct {
	Query     string                     `json:"query"`
	Variables map[string]json.RawMessage `json:"variables"`
}

type gqlError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	var req request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	operation := operationName(req.Query)
	principal := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	if s.BeforeOperation != nil {
		s.BeforeOperation(operation)
	}

	s.mu.Lock()
	s.calls[operation]++
	failure, failing := s.failures[operation]
	s.mu.Unlock()

	if failing {
		writeJSON(w, map[string]any{"data": nil, "errors": []gqlError{{Message: failure}}})
		return
	}

	data, gerr := s.dispatch(operation, principal, req.Variables)
	if gerr != nil {
		writeJSON(w, map[string]any{"data": nil, "errors": []gqlError{*gerr}})
		return
	}
	writeJSON(w, map[string]any{"data": data})
}

func (s *Server) dispatch(operation, principal string, vars map[string]json.RawMessage) (map[string]any, *gqlError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	requiresAuth := map[string]bool{
		"getCart": true, "addToCart": true, "updateCartItem": true, "removeFromCart": true,
		"clearCart": true, "mergeCart": true, "placeOrder": true, "getOrder": true,
		"getUserOrders": true, "getCallerUserProfile": true,
	}
	if requiresAuth[operation] && principal == "" {
		return nil, &gqlError{Message: "Unauthorized: sign in required", Extensions: map[string]any{"code": "UNAUTHENTICATED"}}
	}

	switch operation {
	case "getAllProducts":
		return map[string]any{"products": s.products}, nil
	case "getProduct":
		id := natVar(vars, "id")
		for _, p := range s.products {
			if p.ID.Equal(id) {
				return map[string]any{"product": p}, nil
			}
		}
		return map[string]any{"product": nil}, nil
	case "searchProducts":
		var term string
		json.Unmarshal(vars["term"], &term)
		out := []domain.Product{}
		for _, p := range s.products {
			if strings.Contains(strings.ToLower(p.Title), strings.ToLower(term)) {
				out = append(out, p)
			}
		}
		return map[string]any{"searchProducts": out}, nil
	case "filterByCategory":
		var category string
		json.Unmarshal(vars["category"], &category)
		out := []domain.Product{}
		for _, p := range s.products {
			if p.Category == category {
				out = append(out, p)
			}
		}
		return map[string]any{"productsByCategory": out}, nil
	case "sortProductsByPrice":
		var ascending bool
		json.Unmarshal(vars["ascending"], &ascending)
		out := append([]domain.Product(nil), s.products...)
		sort.SliceStable(out, func(i, j int) bool {
			if ascending {
				return out[i].Price.Cmp(out[j].Price) < 0
			}
			return out[i].Price.Cmp(out[j].Price) > 0
		})
		return map[string]any{"productsByPrice": out}, nil
	case "getCart":
		cart := s.carts[principal]
		if cart == nil {
			cart = []domain.CartLine{}
		}
		return map[string]any{"cart": cart}, nil
	case "addToCart":
		line := domain.CartLine{ProductID: natVar(vars, "productId"), Quantity: natVar(vars, "quantity")}
		s.carts[principal] = domain.MergeLines(s.carts[principal], []domain.CartLine{line})
		return map[string]any{"addToCart": nil}, nil
	case "updateCartItem":
		id, qty := natVar(vars, "productId"), natVar(vars, "quantity")
		if p, ok := s.product(id); ok && qty.Cmp(p.Stock) > 0 {
			return nil, &gqlError{Message: "Insufficient stock"}
		}
		lines := s.withoutLine(principal, id)
		if !qty.IsZero() {
			lines = append(lines, domain.CartLine{ProductID: id, Quantity: qty})
		}
		s.carts[principal] = lines
		return map[string]any{"updateCartItem": nil}, nil
	case "removeFromCart":
		s.carts[principal] = s.withoutLine(principal, natVar(vars, "productId"))
		return map[string]any{"removeFromCart": nil}, nil
	case "clearCart":
		delete(s.carts, principal)
		return map[string]any{"clearCart": nil}, nil
	case "mergeCart":
		var items []domain.CartLine
		if err := json.Unmarshal(vars["items"], &items); err != nil {
			return nil, &gqlError{Message: err.Error()}
		}
		s.carts[principal] = domain.MergeLines(s.carts[principal], items)
		return map[string]any{"mergeCart": nil}, nil
	case "placeOrder":
		return s.placeOrder(principal, vars)
	case "getOrder":
		id := natVar(vars, "id")
		for _, o := range s.orders {
			if o.ID.Equal(id) && o.UserID == principal {
				return map[string]any{"order": o}, nil
			}
		}
		return map[string]any{"order": nil}, nil
	case "getUserOrders":
		out := []domain.Order{}
		for _, o := range s.orders {
			if o.UserID == principal {
				out = append(out, o)
			}
		}
		return map[string]any{"userOrders": out}, nil
	case "getCallerUserProfile":
		if p, ok := s.profiles[principal]; ok {
			return map[string]any{"callerUserProfile": p}, nil
		}
		return map[string]any{"callerUserProfile": nil}, nil
	}
	return nil, &gqlError{Message: fmt.Sprintf("unknown operation %q", operation)}
}

func (s *Server) placeOrder(principal string, vars map[string]json.RawMessage) (map[string]any, *gqlError) {
	cart := s.carts[principal]
	if len(cart) == 0 {
		return nil, &gqlError{Message: "Cart is empty"}
	}

	total := domain.Nat{}
	for _, line := range cart {
		p, ok := s.product(line.ProductID)
		if !ok {
			return nil, &gqlError{Message: "Product not found"}
		}
		if line.Quantity.Cmp(p.Stock) > 0 {
			return nil, &gqlError{Message: "Insufficient stock for " + p.Title}
		}
		total = total.Add(p.Price.Mul(line.Quantity))
	}

	var shipping, contact string
	json.Unmarshal(vars["shippingAddress"], &shipping)
	json.Unmarshal(vars["contactInfo"], &contact)

	order := domain.Order{
		ID:              domain.NewNat(s.nextID),
		Status:          "pending",
		Total:           total,
		ContactInfo:     contact,
		ShippingAddress: shipping,
		UserID:          principal,
		Items:           append([]domain.CartLine(nil), cart...),
	}
	s.nextID++
	s.orders = append(s.orders, order)
	return map[string]any{"placeOrder": order}, nil
}

func (s *Server) product(id domain.Nat) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID.Equal(id) {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *Server) withoutLine(principal string, id domain.Nat) []domain.CartLine {
	out := []domain.CartLine{}
	for _, line := range s.carts[principal] {
		if !line.ProductID.Equal(id) {
			out = append(out, line)
		}
	}
	return out
}

func natVar(vars map[string]json.RawMessage, key string) domain.Nat {
	var n domain.Nat
	json.Unmarshal(vars[key], &n)
	return n
}

func operationName(query string) string {
	fields := strings.Fields(query)
	if len(fields) < 2 {
		return ""
	}
	return strings.SplitN(fields[1], "(", 2)[0]
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
