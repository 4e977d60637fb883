// internal/services/catalog_service.go
package services

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/konisgames/storefront-backend/internal/models"
	"github.com/konisgames/storefront-backend/internal/utils"
)

type CatalogService struct {
	db      *gorm.DB
	pricing *PricingService
}

type SaveProductRequest struct {
	Name         string           `json:"name" validate:"required,max=255"`
	Console      string           `json:"console" validate:"required,max=100"`
	ConsoleURL   string           `json:"console_url,omitempty"`
	Description  string           `json:"description,omitempty"`
	Images       []string         `json:"images,omitempty"`
	Variants     []models.Variant `json:"variants" validate:"required,min=1"`
	Rating       float64          `json:"rating" validate:"min=0,max=5"`
	IsBestSeller bool             `json:"is_best_seller"`
}

func NewCatalogService(db *gorm.DB, pricing *PricingService) *CatalogService {
	return &CatalogService{db: db, pricing: pricing}
}

// GetProduct returns one product by id.
func (s *CatalogService) GetProduct(id int64) (*models.Product, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// ListProducts returns the catalog page described by params. Products with
// no variants have nothing to sell and are excluded from storefront
// listings; the admin surface reads them through ListAllProducts instead.
func (s *CatalogService) ListProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	if params.Sort == "price" {
		return s.listSortedByPrice(params)
	}

	query := s.storefrontQuery(params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "rating", "id"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	return products, total, nil
}

func (s *CatalogService) storefrontQuery(params utils.PaginationParams) *gorm.DB {
	query := s.db.Model(&models.Product{}).
		Where("jsonb_array_length(variants) > 0")

	if params.Console != "" {
		query = query.Where("console = ?", params.Console)
	}
	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", search)
	}
	return query
}

// listSortedByPrice orders by the cheapest variant. The price lives inside
// the variants JSONB, so the page is cut in memory after pricing each row.
func (s *CatalogService) listSortedByPrice(params utils.PaginationParams) ([]models.Product, int64, error) {
	var products []models.Product
	if err := s.storefrontQuery(params).Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}

	price := func(p *models.Product) float64 {
		lowest, ok := s.pricing.LowestVariantPrice(p)
		if !ok {
			return math.Inf(1)
		}
		return lowest
	}
	sort.SliceStable(products, func(i, j int) bool {
		if params.Order == "desc" {
			return price(&products[i]) > price(&products[j])
		}
		return price(&products[i]) < price(&products[j])
	})

	total := int64(len(products))
	start := (params.Page - 1) * params.Limit
	if start > len(products) {
		start = len(products)
	}
	end := start + params.Limit
	if end > len(products) {
		end = len(products)
	}

	return products[start:end], total, nil
}

// ListAllProducts is the admin view: no variant filter, everything visible.
func (s *CatalogService) ListAllProducts(params utils.PaginationParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})
	if params.Console != "" {
		query = query.Where("console = ?", params.Console)
	}
	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ?", search)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	allowedSortFields := []string{"created_at", "name", "rating", "id", "console"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

// ListConsoles returns the distinct console names with at least one product.
func (s *CatalogService) ListConsoles() ([]string, error) {
	var consoles []string
	err := s.db.Model(&models.Product{}).
		Where("console <> ''").
		Distinct("console").
		Order("console asc").
		Pluck("console", &consoles).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch consoles: %w", err)
	}
	return consoles, nil
}

func validateVariants(variants []models.Variant) error {
	for i, v := range variants {
		if strings.TrimSpace(v.Label) == "" {
			return fmt.Errorf("variant %d has an empty label", i+1)
		}
		if v.Price < 0 {
			return fmt.Errorf("variant %d has a negative price", i+1)
		}
	}
	return nil
}

// CreateProduct inserts a new product. Identifiers are assigned by the
// server as max(id)+1, matching the ids already in the catalog.
func (s *CatalogService) CreateProduct(req *SaveProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateVariants(req.Variants); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:         req.Name,
		Console:      req.Console,
		ConsoleURL:   req.ConsoleURL,
		Description:  req.Description,
		Images:       pq.StringArray(req.Images),
		Variants:     req.Variants,
		Rating:       req.Rating,
		IsBestSeller: req.IsBestSeller,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var nextID int64
		if err := tx.Model(&models.Product{}).
			Select("COALESCE(MAX(id), 0) + 1").Scan(&nextID).Error; err != nil {
			return fmt.Errorf("failed to allocate product id: %w", err)
		}
		product.ID = nextID
		return tx.Create(product).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) UpdateProduct(id int64, req *SaveProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateVariants(req.Variants); err != nil {
		return nil, err
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	product.Name = req.Name
	product.Console = req.Console
	product.ConsoleURL = req.ConsoleURL
	product.Description = req.Description
	product.Images = pq.StringArray(req.Images)
	product.Variants = req.Variants
	product.Rating = req.Rating
	product.IsBestSeller = req.IsBestSeller

	if err := s.db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return product, nil
}

func (s *CatalogService) DeleteProduct(id int64) error {
	result := s.db.Delete(&models.Product{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrProductNotFound
	}
	return nil
}

// UpsertLegacy accepts the positional price1..price8 wire shape, decodes it
// at this boundary, and creates or replaces the product. A record with no
// id is treated as a create.
func (s *CatalogService) UpsertLegacy(record *LegacyGameRecord) (*models.Product, error) {
	product, err := record.ToProduct()
	if err != nil {
		return nil, err
	}

	if product.ID == 0 {
		return s.CreateProduct(&SaveProductRequest{
			Name:         product.Name,
			Console:      product.Console,
			ConsoleURL:   product.ConsoleURL,
			Description:  product.Description,
			Images:       []string(product.Images),
			Variants:     product.Variants,
			Rating:       product.Rating,
			IsBestSeller: product.IsBestSeller,
		})
	}

	if err := s.db.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to upsert product: %w", err)
	}
	return product, nil
}

// ListLegacy re-encodes the storefront catalog for legacy clients.
func (s *CatalogService) ListLegacy(params utils.PaginationParams) ([]*LegacyGameRecord, int64, error) {
	products, total, err := s.ListProducts(params)
	if err != nil {
		return nil, 0, err
	}

	records := make([]*LegacyGameRecord, 0, len(products))
	for i := range products {
		records = append(records, FromProduct(&products[i]))
	}
	return records, total, nil
}
