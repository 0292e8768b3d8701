package model

// ProductImage references a stored image of a product. Image is an opaque media reference.
type ProductImage struct {
	ID         uint   `json:"id" gorm:"primarykey"`
	ProductID  uint   `json:"product_id" gorm:"index;not null"`
	Image      string `json:"image" gorm:"type:varchar(255);not null"`
	AltText    string `json:"alt_text" gorm:"type:varchar(200)"`
	IsFeatured bool   `json:"is_featured" gorm:"not null"`
	Position   int    `json:"position" gorm:"not null"`
}

// ImageInput carries an image write
type ImageInput struct {
	ProductID  *uint   `json:"product_id"`
	Image      *string `json:"image"`
	AltText    *string `json:"alt_text"`
	IsFeatured *bool   `json:"is_featured"`
	Position   *int    `json:"position"`
}
