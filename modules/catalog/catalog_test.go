package catalog

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/example/farm-market/domain/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New(nil)
	require.NoError(t, c.Seed(DefaultSeed()))
	return c
}

func TestSeed_DemoData(t *testing.T) {
	c := seededCatalog(t)

	farmer := c.DemoFarmer()
	require.NotNil(t, farmer)
	assert.Equal(t, "John Smith", farmer.FullName)
	assert.Equal(t, "Green Valley Organic Farm", farmer.FarmName)
	require.Len(t, farmer.Products, 1)

	products := c.Products()
	require.Len(t, products, 1)
	p := products[0]
	assert.Equal(t, "Organic Tomatoes", p.Name)
	assert.Equal(t, "$4.99", p.DisplayPrice)
	assert.Equal(t, "kg", p.Unit)
	assert.Equal(t, 50, p.Quantity)
	assert.Equal(t, farmer.ID, p.FarmerID)
	assert.Equal(t, "Green Valley Organic Farm", p.FarmName)
}

func TestSeed_RunsOnce(t *testing.T) {
	c := seededCatalog(t)
	first := c.DemoFarmer()

	require.NoError(t, c.Seed(DefaultSeed()))

	assert.Same(t, first, c.DemoFarmer())
	assert.Len(t, c.Products(), 1)
}

func TestSeed_BadPrice(t *testing.T) {
	data := DefaultSeed()
	data.Products[0].Price = "cheap"

	err := New(nil).Seed(data)

	var numErr *market.NumberFormatError
	require.True(t, errors.As(err, &numErr))
	assert.Equal(t, "price", numErr.Field)
}

func TestFindFarmerByID(t *testing.T) {
	c := seededCatalog(t)
	other := market.NewFarmer("Kofi", "kofi", "k@x", "1", "Kofi Farm", "Accra", "hash")
	c.RegisterFarmer(other)

	assert.Same(t, other, c.FindFarmerByID(other.ID))
	assert.Same(t, c.DemoFarmer(), c.FindFarmerByID(c.DemoFarmer().ID))
	assert.Same(t, c.DemoFarmer(), c.FindFarmerByID("no-such-id"), "unknown IDs fall back to the demo farmer")
}

func TestFarmNameAndCount(t *testing.T) {
	c := seededCatalog(t)
	demo := c.DemoFarmer()

	farmer := market.NewFarmer("Ama", "ama", "a@b.c", "1", "Sunrise Acres", "Kumasi", "hash")
	c.RegisterFarmer(farmer)
	assert.Equal(t, "Sunrise Acres", c.FarmName(farmer.ID))
	assert.Equal(t, demo.FarmName, c.FarmName("unknown"))
	assert.Equal(t, "", New(nil).FarmName("unknown"))

	_, err := c.AddProduct(farmer, ProductForm{Name: "Kale", Price: "2.50", Unit: "bunch", Quantity: "3"})
	require.NoError(t, err)
	assert.Equal(t, 2, c.Count())
}

func TestFarmName_ConcurrentWithUpdate(t *testing.T) {
	c := seededCatalog(t)
	farmer := market.NewFarmer("Ama", "ama", "a@b.c", "1", "Sunrise Acres", "Kumasi", "hash")
	c.RegisterFarmer(farmer)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			c.UpdateFarmer(farmer, func(f *market.Farmer) { f.FarmName = fmt.Sprintf("Farm %d", i) })
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			_ = c.FarmName(farmer.ID)
		}
	}()
	wg.Wait()

	assert.Equal(t, "Farm 99", c.FarmName(farmer.ID))
}

func TestAddProduct(t *testing.T) {
	c := seededCatalog(t)
	farmer := market.NewFarmer("Kofi", "kofi", "k@x", "1", "Kofi Farm", "Accra", "hash")
	c.RegisterFarmer(farmer)

	product, err := c.AddProduct(farmer, ProductForm{
		Name:        "Fresh Lettuce",
		Price:       " 2.50 ",
		Unit:        "head",
		Quantity:    "30",
		Description: "Crisp",
	})
	require.NoError(t, err)

	assert.Equal(t, "2.5", product.Price.String())
	assert.Equal(t, 30, product.Quantity)
	assert.Equal(t, farmer.ID, product.FarmerID)
	require.Len(t, farmer.Products, 1)
	assert.Same(t, product, farmer.Products[0])

	all := c.Products()
	require.Len(t, all, 2)
	assert.Equal(t, "Fresh Lettuce", all[1].Name)
	assert.Equal(t, "Kofi Farm", all[1].FarmName)

	mine := c.FarmerProducts(farmer)
	require.Len(t, mine, 1)
	assert.Equal(t, product.ID, mine[0].ID)

	got, err := c.Product(product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fresh Lettuce", got.Name)
}

func TestAddProduct_Rejections(t *testing.T) {
	c := seededCatalog(t)
	farmer := c.DemoFarmer()

	tests := []struct {
		name      string
		form      ProductForm
		wantField string
		wantErr   error
	}{
		{name: "missing name", form: ProductForm{Price: "1", Unit: "kg", Quantity: "1"}, wantErr: market.ErrMissingField},
		{name: "missing unit", form: ProductForm{Name: "Beans", Price: "1", Quantity: "1"}, wantErr: market.ErrMissingField},
		{name: "bad price", form: ProductForm{Name: "Beans", Price: "abc", Unit: "kg", Quantity: "1"}, wantField: "price"},
		{name: "bad quantity", form: ProductForm{Name: "Beans", Price: "1.00", Unit: "kg", Quantity: "1.5"}, wantField: "quantity"},
		{name: "empty quantity", form: ProductForm{Name: "Beans", Price: "1.00", Unit: "kg"}, wantField: "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.AddProduct(farmer, tt.form)
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			var numErr *market.NumberFormatError
			require.True(t, errors.As(err, &numErr))
			assert.Equal(t, tt.wantField, numErr.Field)
		})
	}

	assert.Len(t, c.Products(), 1, "rejected products must not be added")
	assert.Len(t, farmer.Products, 1)

	_, err := c.AddProduct(nil, ProductForm{Name: "x", Unit: "y", Price: "1", Quantity: "1"})
	assert.ErrorIs(t, err, ErrNoFarmer)
}

func TestProduct_NotFound(t *testing.T) {
	_, err := seededCatalog(t).Product("missing")
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestImageURL_FallsBackToPlaceholder(t *testing.T) {
	images := fstest.MapFS{
		"images/organic-tomatoes.jpeg": &fstest.MapFile{Data: []byte("jpeg")},
	}
	c := New(images)
	require.NoError(t, c.Seed(DefaultSeed()))
	_, err := c.AddProduct(c.DemoFarmer(), ProductForm{Name: "Kale", Price: "3", Unit: "bunch", Quantity: "4", ImagePath: "/images/kale.jpeg"})
	require.NoError(t, err)
	_, err = c.AddProduct(c.DemoFarmer(), ProductForm{Name: "Okra", Price: "3", Unit: "kg", Quantity: "4"})
	require.NoError(t, err)

	products := c.Products()
	require.Len(t, products, 3)
	assert.Equal(t, "/images/organic-tomatoes.jpeg", products[0].ImageURL)
	assert.Equal(t, PlaceholderImage, products[1].ImageURL)
	assert.Equal(t, PlaceholderImage, products[2].ImageURL)
}

func TestResolveImage_ReturnsResourceLoadError(t *testing.T) {
	_, err := resolveImage(fstest.MapFS{}, "/images/missing.png")
	var loadErr *market.ResourceLoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "/images/missing.png", loadErr.Path)
}

func TestParseSeed(t *testing.T) {
	raw := []byte(`
farmer:
  full_name: Abena Owusu
  username: abena
  email: abena@farm.example
  phone: "555-0199"
  farm_name: Owusu Family Farm
  farm_location: Tamale
  password: secret
products:
  - name: Yams
    price: "3.25"
    unit: tuber
    quantity: 40
  - name: Plantain
    price: "1.10"
    unit: bunch
    quantity: 12
`)
	data, err := ParseSeed(raw)
	require.NoError(t, err)
	assert.Equal(t, "Owusu Family Farm", data.Farmer.FarmName)
	require.Len(t, data.Products, 2)

	c := New(nil)
	require.NoError(t, c.Seed(data))
	products := c.Products()
	require.Len(t, products, 2)
	assert.Equal(t, "$3.25", products[0].DisplayPrice)
	assert.Equal(t, "Owusu Family Farm", products[1].FarmName)
}

func TestParseSeed_Invalid(t *testing.T) {
	_, err := ParseSeed([]byte("farmer: [not, a, map]"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("products: []"))
	assert.Error(t, err)
}
