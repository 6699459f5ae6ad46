package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Each category keeps its products in its own
// collection; Rank orders them within that category.
type Product struct {
	ID         primitive.ObjectID `json:"_id"         bson:"_id,omitempty"`
	PartName   string             `json:"part_name"   bson:"part_name"`
	Image      string             `json:"image"       bson:"image"`
	PartNumber map[string]string  `json:"part_number" bson:"part_number"`
	Subimages  []string           `json:"subimages"   bson:"subimages"`
	Rank       int                `json:"rank"        bson:"rank"`
	IsHide     bool               `json:"is_hide"     bson:"is_hide"`
	CreatedAt  time.Time          `json:"created_at"  bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"  bson:"updated_at"`
}

// ProductInput is the JSON body for creating a product. Rank and
// visibility are assigned by the server.
type ProductInput struct {
	PartName   string            `json:"part_name"   validate:"required,max=200"`
	Image      string            `json:"image"       validate:"omitempty,url"`
	PartNumber map[string]string `json:"part_number"`
	Subimages  []string          `json:"subimages"   validate:"omitempty,dive,url"`
}

// ProductPatch is a partial update; nil fields are left untouched.
type ProductPatch struct {
	PartName   *string            `json:"part_name"   validate:"omitempty,min=1,max=200"`
	Image      *string            `json:"image"       validate:"omitempty,url"`
	PartNumber *map[string]string `json:"part_number"`
	Subimages  *[]string          `json:"subimages"   validate:"omitempty,dive,url"`
	IsHide     *bool              `json:"is_hide"`
}

// Empty reports whether the patch changes nothing.
func (p ProductPatch) Empty() bool {
	return p.PartName == nil && p.Image == nil && p.PartNumber == nil &&
		p.Subimages == nil && p.IsHide == nil
}

// RankItem is one entry of a reorder request.
type RankItem struct {
	ID   string `json:"id"   validate:"required"`
	Rank int    `json:"rank"`
}

// ReorderRequest is the JSON body for POST /api/{category}/reorder.
type ReorderRequest struct {
	Items []RankItem `json:"items" validate:"required,dive"`
}

// VisibilityRequest is the JSON body for PUT /api/{category}/{id}/visibility.
type VisibilityRequest struct {
	IsHide *bool `json:"is_hide" validate:"required"`
}

// ProductFilter narrows a product listing. Search is a case-insensitive
// substring match on part_name.
type ProductFilter struct {
	Search      string
	VisibleOnly bool
}
