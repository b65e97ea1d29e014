package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rafaelleal24/shoplist/internal/adapters/http/handlers"
	"github.com/rafaelleal24/shoplist/internal/core/domain"
	"github.com/rafaelleal24/shoplist/internal/core/dto"
	"github.com/rafaelleal24/shoplist/internal/core/service"
	"github.com/rafaelleal24/shoplist/internal/core/serviceerrors"
)

type ProductController struct {
	productService *service.ProductService
}

type ProductResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Purchased bool      `json:"purchased"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProductStatsResponse struct {
	Count int `json:"count"`
}

type PurchaseRequest struct {
	Purchased *bool `json:"purchased" binding:"required"`
}

func NewProductResponse(product *domain.Product) ProductResponse {
	return ProductResponse{
		ID:        string(product.ID),
		Name:      product.Name,
		Quantity:  product.Quantity,
		Purchased: product.Purchased,
		Status:    string(product.Status()),
		CreatedAt: product.CreatedAt,
		UpdatedAt: product.UpdatedAt,
	}
}

func NewProductController(productService *service.ProductService) *ProductController {
	return &ProductController{productService: productService}
}

// AddProduct godoc
// @Summary     Add a product
// @Description Adds a product to the shopping list
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       request body     dto.CreateProductRequest true "Product data"
// @Success     201     {object} ProductResponse
// @Failure     400     {object} handlers.ErrorResponse
// @Failure     409     {object} handlers.ErrorResponse
// @Failure     422     {object} handlers.ErrorResponse
// @Router      /api/v1/products [post]
func (pc *ProductController) AddProduct(c *gin.Context) {
	var request dto.CreateProductRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}
	product, err := pc.productService.AddProduct(c.Request.Context(), &request)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewProductResponse(product))
}

// GetAll godoc
// @Summary     List all products
// @Description Returns the whole shopping list
// @Tags        products
// @Produce     json
// @Success     200 {array} ProductResponse
// @Failure     500 {object} handlers.ErrorResponse
// @Router      /api/v1/products [get]
func (pc *ProductController) GetAll(c *gin.Context) {
	products, err := pc.productService.GetAll(c.Request.Context())
	if err != nil {
		handlers.HandleError(c, err)
		return
	}

	response := make([]ProductResponse, len(products))
	for i, product := range products {
		response[i] = NewProductResponse(product)
	}

	c.JSON(http.StatusOK, response)
}

// GetByID godoc
// @Summary     Get a product
// @Description Returns one product by id
// @Tags        products
// @Produce     json
// @Param       id  path     string true "Product ID"
// @Success     200 {object} ProductResponse
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id} [get]
func (pc *ProductController) GetByID(c *gin.Context) {
	product, err := pc.productService.GetByID(c.Request.Context(), domain.ID(c.Param("id")))
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProductResponse(product))
}

// UpdateProduct godoc
// @Summary     Update a product
// @Description Replaces name, quantity and purchased flag; the id is immutable
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       id      path     string                   true "Product ID"
// @Param       request body     dto.UpdateProductRequest true "New product fields"
// @Success     200     {object} ProductResponse
// @Failure     404     {object} handlers.ErrorResponse
// @Failure     422     {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id} [put]
func (pc *ProductController) UpdateProduct(c *gin.Context) {
	var request dto.UpdateProductRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}
	product, err := pc.productService.UpdateProduct(c.Request.Context(), domain.ID(c.Param("id")), &request)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProductResponse(product))
}

// RemoveProduct godoc
// @Summary     Remove a product
// @Description Deletes one product by id
// @Tags        products
// @Produce     json
// @Param       id path string true "Product ID"
// @Success     204
// @Failure     404 {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id} [delete]
func (pc *ProductController) RemoveProduct(c *gin.Context) {
	if err := pc.productService.RemoveProduct(c.Request.Context(), domain.ID(c.Param("id"))); err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MarkPurchased godoc
// @Summary     Change purchase status
// @Description Marks a product as purchased or not purchased
// @Tags        products
// @Accept      json
// @Produce     json
// @Param       id      path     string          true "Product ID"
// @Param       request body     PurchaseRequest true "Purchase flag"
// @Success     200     {object} ProductResponse
// @Failure     404     {object} handlers.ErrorResponse
// @Router      /api/v1/products/{id}/purchase [patch]
func (pc *ProductController) MarkPurchased(c *gin.Context) {
	var request PurchaseRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		handlers.HandleError(c, serviceerrors.NewInvalidRequestError(err.Error()))
		return
	}
	product, err := pc.productService.MarkPurchased(c.Request.Context(), domain.ID(c.Param("id")), *request.Purchased)
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProductResponse(product))
}

// Stats godoc
// @Summary     Product count
// @Description Returns the number of products in the list
// @Tags        products
// @Produce     json
// @Success     200 {object} ProductStatsResponse
// @Failure     503 {object} handlers.ErrorResponse
// @Router      /api/v1/products/stats [get]
func (pc *ProductController) Stats(c *gin.Context) {
	count, err := pc.productService.Count(c.Request.Context())
	if err != nil {
		handlers.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, ProductStatsResponse{Count: count})
}
