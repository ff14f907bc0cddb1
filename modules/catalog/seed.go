package catalog

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedData describes the farmer and products loaded at startup.
type SeedData struct {
	Farmer   FarmerSeed    `yaml:"farmer"`
	Products []ProductSeed `yaml:"products"`
}

// FarmerSeed is the seeded farmer account.
type FarmerSeed struct {
	FullName     string `yaml:"full_name"`
	Username     string `yaml:"username"`
	Email        string `yaml:"email"`
	Phone        string `yaml:"phone"`
	FarmName     string `yaml:"farm_name"`
	FarmLocation string `yaml:"farm_location"`
	Password     string `yaml:"password"`
}

// ProductSeed is one seeded product. Price is decimal text.
type ProductSeed struct {
	Name        string `yaml:"name"`
	Price       string `yaml:"price"`
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`
	Quantity    int    `yaml:"quantity"`
	ImagePath   string `yaml:"image_path"`
}

// DefaultSeed returns the built-in demo farmer and product.
func DefaultSeed() SeedData {
	return SeedData{
		Farmer: FarmerSeed{
			FullName:     "John Smith",
			Username:     "johnsmith",
			Email:        "john@organicfarm.com",
			Phone:        "555-0123",
			FarmName:     "Green Valley Organic Farm",
			FarmLocation: "123 Farm Road, Green Valley, CA 90210",
			Password:     "password",
		},
		Products: []ProductSeed{
			{
				Name:        "Organic Tomatoes",
				Price:       "4.99",
				Description: "Fresh organic tomatoes grown with care. Perfect for salads and cooking.",
				Unit:        "kg",
				Quantity:    50,
				ImagePath:   "/images/organic-tomatoes.jpeg",
			},
		},
	}
}

// LoadSeedFile reads seed data from a YAML file.
func LoadSeedFile(path string) (SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return SeedData{}, fmt.Errorf("failed to read seed file: %w", err)
	}
	return ParseSeed(raw)
}

// ParseSeed decodes YAML seed data.
func ParseSeed(raw []byte) (SeedData, error) {
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return SeedData{}, fmt.Errorf("failed to parse seed data: %w", err)
	}
	if data.Farmer.Username == "" {
		return SeedData{}, fmt.Errorf("seed data: farmer username is required")
	}
	return data, nil
}
