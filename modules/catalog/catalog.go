// Package catalog holds the global product list and the farmer registry.
package catalog

import (
	"errors"
	"io/fs"
	"log"
	"strconv"
	"strings"
	"sync"

	"github.com/example/farm-market/domain/market"
	"github.com/shopspring/decimal"
)

// PlaceholderImage is used when a product image is missing.
const PlaceholderImage = "/images/placeholder.png"

// MsgNameAndUnitRequired is shown when the add-product form lacks a name or unit.
const MsgNameAndUnitRequired = "Name and unit cannot be empty"

var (
	// ErrProductNotFound is returned when a product ID is unknown.
	ErrProductNotFound = errors.New("product not found")
	// ErrNoFarmer is returned when a product is added without an owner.
	ErrNoFarmer = errors.New("no farmer for product")
)

// ProductForm is the add-product dialog. Price and quantity are raw text.
type ProductForm struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Unit        string `json:"unit"`
	Quantity    string `json:"quantity"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path"`
}

// ProductView is a product as shown on a dashboard card.
type ProductView struct {
	market.Product
	DisplayPrice string `json:"display_price"`
	FarmName     string `json:"farm_name"`
	ImageURL     string `json:"image_url"`
}

// Catalog is safe for concurrent use.
type Catalog struct {
	mu         sync.RWMutex
	products   []*market.Product
	farmers    []*market.Farmer
	demoFarmer *market.Farmer
	images     fs.FS
	seeded     bool
}

// New creates an empty catalog. images may be nil, in which case image paths
// are not checked.
func New(images fs.FS) *Catalog {
	return &Catalog{
		products: make([]*market.Product, 0),
		farmers:  make([]*market.Farmer, 0),
		images:   images,
	}
}

// Seed loads the demo farmer and its products. Only the first call has any
// effect.
func (c *Catalog) Seed(data SeedData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seeded {
		return nil
	}

	f := data.Farmer
	farmer := market.NewFarmer(f.FullName, f.Username, f.Email, f.Phone, f.FarmName, f.FarmLocation, f.Password)
	for _, p := range data.Products {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return &market.NumberFormatError{Field: "price", Input: p.Price, Err: err}
		}
		product := market.NewProduct(p.Name, price, p.Description, p.Unit, p.Quantity, farmer.ID, p.ImagePath)
		farmer.Products = append(farmer.Products, product)
		c.products = append(c.products, product)
	}

	c.farmers = append(c.farmers, farmer)
	c.demoFarmer = farmer
	c.seeded = true
	log.Printf("[catalog] Seeded farmer %q with %d product(s)", farmer.FarmName, len(data.Products))
	return nil
}

// DemoFarmer returns the seeded farmer, or nil before seeding.
func (c *Catalog) DemoFarmer() *market.Farmer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.demoFarmer
}

// RegisterFarmer makes a farmer resolvable by FindFarmerByID.
func (c *Catalog) RegisterFarmer(farmer *market.Farmer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.farmers = append(c.farmers, farmer)
}

// FindFarmerByID searches the registry linearly and falls back to the demo
// farmer when no farmer matches.
func (c *Catalog) FindFarmerByID(id string) *market.Farmer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.findFarmerLocked(id)
}

func (c *Catalog) findFarmerLocked(id string) *market.Farmer {
	for _, f := range c.farmers {
		if f.ID == id {
			return f
		}
	}
	return c.demoFarmer
}

// FarmName returns the farm name of the farmer FindFarmerByID resolves, read
// under the catalog lock. It is empty when no farmer resolves.
func (c *Catalog) FarmName(farmerID string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f := c.findFarmerLocked(farmerID); f != nil {
		return f.FarmName
	}
	return ""
}

// Count returns the size of the global product list.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}

// UpdateFarmer applies fn to farmer under the catalog lock.
func (c *Catalog) UpdateFarmer(farmer *market.Farmer, fn func(*market.Farmer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(farmer)
}

// AddProduct validates form and appends the product to both the global list
// and the farmer's own list.
func (c *Catalog) AddProduct(farmer *market.Farmer, form ProductForm) (*market.Product, error) {
	if farmer == nil {
		return nil, ErrNoFarmer
	}
	if form.Name == "" || form.Unit == "" {
		return nil, market.NewValidationError(market.ReasonMissingField, MsgNameAndUnitRequired)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(form.Price))
	if err != nil {
		return nil, &market.NumberFormatError{Field: "price", Input: form.Price, Err: err}
	}
	quantity, err := strconv.Atoi(strings.TrimSpace(form.Quantity))
	if err != nil {
		return nil, &market.NumberFormatError{Field: "quantity", Input: form.Quantity, Err: err}
	}

	product := market.NewProduct(form.Name, price, form.Description, form.Unit, quantity, farmer.ID, form.ImagePath)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.products = append(c.products, product)
	farmer.Products = append(farmer.Products, product)

	log.Printf("[catalog] Product added: %s (%s) by farmer %s", product.Name, product.ID, farmer.ID)
	return product, nil
}

// Product returns a copy of the product with the given ID.
func (c *Catalog) Product(id string) (market.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, p := range c.products {
		if p.ID == id {
			return *p, nil
		}
	}
	return market.Product{}, ErrProductNotFound
}

// Products returns every product in insertion order.
func (c *Catalog) Products() []ProductView {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewsLocked(c.products)
}

// FarmerProducts returns the products owned by farmer.
func (c *Catalog) FarmerProducts(farmer *market.Farmer) []ProductView {
	if farmer == nil {
		return []ProductView{}
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.viewsLocked(farmer.Products)
}

func (c *Catalog) viewsLocked(products []*market.Product) []ProductView {
	result := make([]ProductView, 0, len(products))
	for _, p := range products {
		view := ProductView{
			Product:      *p,
			DisplayPrice: market.FormatMoney(p.Price),
			ImageURL:     c.imageURL(p.ImagePath),
		}
		if owner := c.findFarmerLocked(p.FarmerID); owner != nil {
			view.FarmName = owner.FarmName
		}
		result = append(result, view)
	}
	return result
}

// imageURL swallows load failures and returns the placeholder instead.
func (c *Catalog) imageURL(path string) string {
	if path == "" {
		return PlaceholderImage
	}
	resolved, err := resolveImage(c.images, path)
	if err != nil {
		log.Printf("[catalog] %v, using placeholder", err)
		return PlaceholderImage
	}
	return resolved
}

func resolveImage(images fs.FS, path string) (string, error) {
	if path == "" {
		return "", &market.ResourceLoadError{Path: path, Err: fs.ErrNotExist}
	}
	if images == nil {
		return path, nil
	}
	if _, err := fs.Stat(images, strings.TrimPrefix(path, "/")); err != nil {
		return "", &market.ResourceLoadError{Path: path, Err: err}
	}
	return path, nil
}
