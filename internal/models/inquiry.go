package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InquiryType string

const (
	InquiryContactUs InquiryType = "CONTACT-US"
	InquiryProduct   InquiryType = "PRODUCT"
)

// Inquiry is a customer message submitted from the storefront.
type Inquiry struct {
	ID          primitive.ObjectID `json:"_id"                    bson:"_id,omitempty"`
	Type        InquiryType        `json:"type"                   bson:"type"`
	Name        string             `json:"name"                   bson:"name"`
	Email       string             `json:"email"                  bson:"email"`
	Phone       string             `json:"phone,omitempty"        bson:"phone,omitempty"`
	ProductName string             `json:"product_name,omitempty" bson:"product_name,omitempty"`
	PartNumber  string             `json:"part_number,omitempty"  bson:"part_number,omitempty"`
	Quantity    int                `json:"quantity,omitempty"     bson:"quantity,omitempty"`
	Message     string             `json:"message"                bson:"message"`
	CreatedAt   time.Time          `json:"createdAt"              bson:"created_at"`
}

// InquiryRequest is the JSON body for POST /api/inquiries.
type InquiryRequest struct {
	Type        InquiryType `json:"type"         validate:"required,oneof=CONTACT-US PRODUCT"`
	Name        string      `json:"name"         validate:"required,max=120"`
	Email       string      `json:"email"        validate:"required,email"`
	Phone       string      `json:"phone"        validate:"omitempty,max=40"`
	ProductName string      `json:"product_name" validate:"required_if=Type PRODUCT,max=200"`
	PartNumber  string      `json:"part_number"  validate:"max=100"`
	Quantity    int         `json:"quantity"     validate:"gte=0"`
	Message     string      `json:"message"      validate:"required,max=5000"`
}
