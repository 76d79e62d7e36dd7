package handler

import (
	"errors"
	"net/http"
	"time"

	"inventory-service/internal/audit"
	"inventory-service/internal/model"
	"inventory-service/pkg/database"
	"inventory-service/pkg/logger"
	"inventory-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ListProducts returns all products, optionally filtered by a case-insensitive
// search over name and SKU
func ListProducts(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	query := db.Model(&model.Product{}).Preload("Category").Preload("Provider")
	if search := c.QueryParam("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("name LIKE ? OR sku LIKE ?", pattern, pattern)
	}
	if categoryID := c.QueryParam("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	var products []model.Product
	if err := query.Order("name").Find(&products).Error; err != nil {
		log.Error("Failed to fetch products", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch products"})
	}

	return c.JSON(http.StatusOK, products)
}

// GetProduct returns a single product by ID
func GetProduct(c echo.Context) error {
	log := logger.FromContext(c)

	defer prometheus.TrackDBOperation("query")(time.Now())
	var product model.Product
	if err := database.FromContext(c).Preload("Category").Preload("Provider").
		First(&product, c.Param("id")).Error; err != nil {
		log.Warn("Product not found", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	return c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	SKU         string  `json:"sku"`
	Quantity    *int    `json:"quantity"`
	MinStock    *int    `json:"min_stock"`
	BuyPrice    float64 `json:"buy_price"`
	SellPrice   float64 `json:"sell_price"`
	CategoryID  *uint   `json:"category_id"`
	ProviderID  *uint   `json:"provider_id"`
}

// CreateProduct registers a new product, admin only. The initial quantity is
// set here; afterwards quantity changes only through stock movements.
func CreateProduct(c echo.Context) error {
	log := logger.FromContext(c)

	var req productRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" || req.SKU == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and sku are required"})
	}

	quantity := 0
	if req.Quantity != nil {
		if *req.Quantity < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity cannot be negative"})
		}
		quantity = *req.Quantity
	}
	if req.BuyPrice < 0 || req.SellPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices cannot be negative"})
	}

	db := database.FromContext(c)
	var count int64
	db.Model(&model.Product{}).Where("sku = ?", req.SKU).Count(&count)
	if count > 0 {
		log.Warn("SKU already exists", zap.String("sku", req.SKU))
		return c.JSON(http.StatusConflict, echo.Map{"error": "sku already exists"})
	}

	product := model.Product{
		Name:        req.Name,
		Description: req.Description,
		SKU:         req.SKU,
		Quantity:    quantity,
		BuyPrice:    req.BuyPrice,
		SellPrice:   req.SellPrice,
		CategoryID:  req.CategoryID,
		ProviderID:  req.ProviderID,
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	} else {
		product.MinStock = 5
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := db.Create(&product).Error; err != nil {
		log.Error("Failed to create product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create product"})
	}

	audit.FromRequest(c, "Create Product", "Created product "+product.Name)
	log.Info("Product created", zap.Uint("id", product.ID), zap.String("sku", product.SKU))
	return c.JSON(http.StatusCreated, product)
}

// UpdateProduct edits product attributes, admin only. Quantity is never
// touched here; it changes only through stock movements.
func UpdateProduct(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var product model.Product
	if err := db.First(&product, c.Param("id")).Error; err != nil {
		log.Warn("Product not found", zap.String("id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
	}

	var req productRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid product request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.BuyPrice < 0 || req.SellPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "prices cannot be negative"})
	}

	if req.SKU != "" && req.SKU != product.SKU {
		var count int64
		db.Model(&model.Product{}).Where("sku = ? AND id != ?", req.SKU, product.ID).Count(&count)
		if count > 0 {
			log.Warn("SKU already exists", zap.String("sku", req.SKU))
			return c.JSON(http.StatusConflict, echo.Map{"error": "sku already exists"})
		}
		product.SKU = req.SKU
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.BuyPrice != 0 {
		product.BuyPrice = req.BuyPrice
	}
	if req.SellPrice != 0 {
		product.SellPrice = req.SellPrice
	}
	if req.CategoryID != nil {
		product.CategoryID = req.CategoryID
	}
	if req.ProviderID != nil {
		product.ProviderID = req.ProviderID
	}

	defer prometheus.TrackDBOperation("update")(time.Now())
	if err := db.Omit("Quantity").Save(&product).Error; err != nil {
		log.Error("Failed to update product", zap.Uint("id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update product"})
	}

	audit.FromRequest(c, "Edit Product", "Updated product "+product.Name)
	log.Info("Product updated", zap.Uint("id", product.ID))
	return c.JSON(http.StatusOK, product)
}

// DeleteProduct removes a product, admin only
func DeleteProduct(c echo.Context) error {
	log := logger.FromContext(c)
	db := database.FromContext(c)

	var product model.Product
	if err := db.First(&product, c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "product not found"})
		}
		log.Error("Failed to fetch product", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch product"})
	}

	defer prometheus.TrackDBOperation("delete")(time.Now())
	if err := db.Delete(&product).Error; err != nil {
		log.Error("Failed to delete product", zap.Uint("id", product.ID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete product"})
	}

	audit.FromRequest(c, "Delete Product", "Deleted product "+product.Name)
	log.Info("Product deleted", zap.Uint("id", product.ID))
	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
