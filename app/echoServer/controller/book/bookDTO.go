package book

type CreateBookReq struct {
	Title             string `json:"title" validate:"required"`
	Author            string `json:"author" validate:"required"`
	ISBN              string `json:"isbn" validate:"required"`
	Category          string `json:"category"`
	Quantity          int64  `json:"quantity" validate:"required,gt=0"`
	AvailableQuantity int64  `json:"available_quantity" validate:"omitempty,gte=0"`
}

type UpdateBookReq struct {
	Title             string `json:"title" validate:"required"`
	Author            string `json:"author" validate:"required"`
	ISBN              string `json:"isbn" validate:"required"`
	Category          string `json:"category"`
	Quantity          int64  `json:"quantity" validate:"gte=0"`
	AvailableQuantity int64  `json:"available_quantity" validate:"gte=0"`
}
