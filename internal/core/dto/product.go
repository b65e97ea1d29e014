package dto

type CreateProductRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type UpdateProductRequest struct {
	Name      string `json:"name" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
	Purchased bool   `json:"purchased"`
}
