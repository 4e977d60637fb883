// internal/handlers/cart_test.go
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/konisgames/storefront-backend/internal/config"
	"github.com/konisgames/storefront-backend/internal/middleware"
	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/services"
)

type fixedCatalog struct {
	products map[int64]*models.Product
}

func (f *fixedCatalog) GetProduct(id int64) (*models.Product, error) {
	product, ok := f.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, services.ErrProductNotFound)
	}
	return product, nil
}

type staticProvider struct{ url string }

func (p *staticProvider) CreatePaymentLink(ctx context.Context, req *services.PaymentLinkRequest) (string, error) {
	return p.url, nil
}

type noopRecorder struct{}

func (noopRecorder) RecordOrder(order *models.Order) error {
	order.ID = 1
	return nil
}

type CartHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
	token  string
}

func (suite *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Cart: config.CartConfig{
			OpenOnAdd:       true,
			SessionTTL:      120,
			ShippingFlatFee: 4.0,
		},
	}
	catalog := &fixedCatalog{products: map[int64]*models.Product{
		1: {
			ID:      1,
			Name:    "Chrono Trigger",
			Console: "SNES",
			Variants: models.VariantList{
				{Label: "Cartridge", Price: 60},
				{Label: "Complete in Box", Price: 150},
			},
		},
	}}

	pricing := services.NewPricingService(cfg)
	carts := services.NewCartService(cfg, pricing, catalog)
	checkout := services.NewCheckoutService(cfg, carts, &staticProvider{url: "https://pay.example/x"}, noopRecorder{}, nil)
	handler := NewCartHandler(carts, checkout)

	suite.router = gin.New()
	suite.router.Use(middleware.CartToken())

	cart := suite.router.Group("/cart")
	{
		cart.GET("", handler.GetCart)
		cart.DELETE("", handler.ClearCart)
		cart.POST("/items", handler.AddItem)
		cart.PUT("/items", handler.UpdateQuantity)
		cart.DELETE("/items", handler.RemoveItem)
		cart.PUT("/open", handler.SetOpen)
	}
	suite.token = ""
}

func (suite *CartHandlerTestSuite) do(method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if suite.token != "" {
		req.Header.Set(middleware.CartTokenHeader, suite.token)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	if token := w.Header().Get(middleware.CartTokenHeader); token != "" {
		suite.token = token
	}

	var response map[string]interface{}
	if w.Body.Len() > 0 {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func (suite *CartHandlerTestSuite) TestEmptyCartIssued() {
	w, response := suite.do("GET", "/cart", nil)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.True(suite.T(), response["success"].(bool))
	assert.NotEmpty(suite.T(), suite.token, "a fresh cart must come with a token")
}

func (suite *CartHandlerTestSuite) TestAddMergesAndPrices() {
	addBody := map[string]interface{}{"product_id": 1, "variant_index": 0}

	w, _ := suite.do("POST", "/cart/items", addBody)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	w, response := suite.do("POST", "/cart/items", addBody)
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	items := data["cart"].(map[string]interface{})["items"].([]interface{})
	assert.Len(suite.T(), items, 1)
	assert.Equal(suite.T(), float64(2), items[0].(map[string]interface{})["quantity"])

	totals := data["totals"].(map[string]interface{})
	assert.Equal(suite.T(), float64(124), totals["total"])
}

func (suite *CartHandlerTestSuite) TestAddUnknownProduct() {
	w, response := suite.do("POST", "/cart/items", map[string]interface{}{"product_id": 404, "variant_index": 0})

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
	assert.False(suite.T(), response["success"].(bool))
}

func (suite *CartHandlerTestSuite) TestAddBadVariantIsUnprocessable() {
	w, _ := suite.do("POST", "/cart/items", map[string]interface{}{"product_id": 1, "variant_index": 7})
	assert.Equal(suite.T(), http.StatusUnprocessableEntity, w.Code)
}

func (suite *CartHandlerTestSuite) TestQuantityZeroRemovesLine() {
	suite.do("POST", "/cart/items", map[string]interface{}{"product_id": 1, "variant_index": 0})

	w, response := suite.do("PUT", "/cart/items", map[string]interface{}{"product_id": 1, "variant_index": 0, "quantity": 0})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	items := data["cart"].(map[string]interface{})["items"]
	assert.Empty(suite.T(), items)
}

func (suite *CartHandlerTestSuite) TestCloseDrawerResetsCheckout() {
	suite.do("POST", "/cart/items", map[string]interface{}{"product_id": 1, "variant_index": 0})

	w, response := suite.do("PUT", "/cart/open", map[string]interface{}{"open": false})
	assert.Equal(suite.T(), http.StatusOK, w.Code)

	data := response["data"].(map[string]interface{})
	assert.Equal(suite.T(), false, data["cart"].(map[string]interface{})["open"])
}

func TestCartHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}
