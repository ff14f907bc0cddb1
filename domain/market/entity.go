// Package market holds the marketplace entities shared by every module.
package market

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Role selects which dashboard a session belongs to.
type Role string

const (
	RoleNone     Role = ""
	RoleFarmer   Role = "farmer"
	RoleCustomer Role = "customer"
)

// Valid reports whether r names a selectable role.
func (r Role) Valid() bool {
	return r == RoleFarmer || r == RoleCustomer
}

// Farmer is a producer account. Products is append-only.
type Farmer struct {
	ID           string     `json:"id"`
	FullName     string     `json:"full_name"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	FarmName     string     `json:"farm_name"`
	FarmLocation string     `json:"farm_location"`
	Password     string     `json:"-"`
	Products     []*Product `json:"products"`
}

// NewFarmer creates a farmer with a generated ID.
func NewFarmer(fullName, username, email, phone, farmName, farmLocation, password string) *Farmer {
	return &Farmer{
		ID:           uuid.New().String(),
		FullName:     fullName,
		Username:     username,
		Email:        email,
		Phone:        phone,
		FarmName:     farmName,
		FarmLocation: farmLocation,
		Password:     password,
		Products:     make([]*Product, 0),
	}
}

// Customer is a buyer account.
type Customer struct {
	ID       string    `json:"id"`
	FullName string    `json:"full_name"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Phone    string    `json:"phone"`
	Location string    `json:"location"`
	JoinDate time.Time `json:"join_date"`
	Password string    `json:"-"`
}

// NewCustomer creates a customer with a generated ID, joined now.
func NewCustomer(fullName, username, email, phone, location, password string) *Customer {
	return &Customer{
		ID:       uuid.New().String(),
		FullName: fullName,
		Username: username,
		Email:    email,
		Phone:    phone,
		Location: location,
		JoinDate: time.Now(),
		Password: password,
	}
}

// Product is a listing owned by a farmer.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Unit        string          `json:"unit"`
	Quantity    int             `json:"quantity"`
	FarmerID    string          `json:"farmer_id"`
	ImagePath   string          `json:"image_path"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewProduct creates a product with a generated ID.
func NewProduct(name string, price decimal.Decimal, description, unit string, quantity int, farmerID, imagePath string) *Product {
	return &Product{
		ID:          uuid.New().String(),
		Name:        name,
		Price:       price,
		Description: description,
		Unit:        unit,
		Quantity:    quantity,
		FarmerID:    farmerID,
		ImagePath:   imagePath,
		CreatedAt:   time.Now(),
	}
}

// CartItem is one line of a customer's cart.
type CartItem struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Unit     string          `json:"unit"`
	Quantity int             `json:"quantity"`
}

// Subtotal returns price times quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Order is a display row on the farmer's orders page.
type Order struct {
	CustomerName string `json:"customer_name"`
	Location     string `json:"location"`
	ProductName  string `json:"product_name"`
	Quantity     int    `json:"quantity"`
	Status       string `json:"status"`
}

// FormatMoney renders an amount as "$0.00".
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
