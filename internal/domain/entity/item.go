package entity

import (
	"encoding/json"
	"time"
)

const (
	MinPointsValue = 1
	MaxPointsValue = 1000
)

var (
	Categories = []string{"Tops", "Bottoms", "Dresses", "Outerwear", "Shoes", "Accessories", "Other"}
	Sizes      = []string{"XS", "S", "M", "L", "XL", "XXL", "One Size", "Other"}
	Conditions = []string{"New", "Like New", "Good", "Fair", "Poor"}
)

func IsValidCategory(v string) bool  { return contains(Categories, v) }
func IsValidSize(v string) bool      { return contains(Sizes, v) }
func IsValidCondition(v string) bool { return contains(Conditions, v) }

type Measurements struct {
	Chest     float64 `json:"chest,omitempty" firestore:"chest,omitempty"`
	Waist     float64 `json:"waist,omitempty" firestore:"waist,omitempty"`
	Hips      float64 `json:"hips,omitempty" firestore:"hips,omitempty"`
	Length    float64 `json:"length,omitempty" firestore:"length,omitempty"`
	Shoulders float64 `json:"shoulders,omitempty" firestore:"shoulders,omitempty"`
}

type ShippingInfo struct {
	WillingToShip bool    `json:"willing_to_ship" firestore:"willingToShip"`
	ShippingCost  float64 `json:"shipping_cost" firestore:"shippingCost"`
}

type Item struct {
	ID          string   `json:"id" firestore:"id"`
	Title       string   `json:"title" firestore:"title"`
	Description string   `json:"description" firestore:"description"`
	Category    string   `json:"category" firestore:"category"`
	Size        string   `json:"size" firestore:"size"`
	Condition   string   `json:"condition" firestore:"condition"`
	Tags        []string `json:"tags" firestore:"tags"`
	Images      []string `json:"images" firestore:"images"`
	PointsValue int      `json:"points_value" firestore:"pointsValue"`
	Brand       string   `json:"brand,omitempty" firestore:"brand,omitempty"`
	Color       string   `json:"color,omitempty" firestore:"color,omitempty"`
	Material    string   `json:"material,omitempty" firestore:"material,omitempty"`
	Location    string   `json:"location,omitempty" firestore:"location,omitempty"`

	Measurements *Measurements `json:"measurements,omitempty" firestore:"measurements,omitempty"`
	Shipping     *ShippingInfo `json:"shipping_info,omitempty" firestore:"shippingInfo,omitempty"`

	OwnerID   string `json:"owner_id" firestore:"ownerId"`
	OwnerName string `json:"owner_name" firestore:"ownerName"`

	Available    bool     `json:"is_available" firestore:"isAvailable"`
	Approved     bool     `json:"is_approved" firestore:"isApproved"`
	Views        int      `json:"views" firestore:"views"`
	Likes        []string `json:"likes" firestore:"likes"`
	SwapRequests []string `json:"swap_requests" firestore:"swapRequests"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

// LikeCount is derived from the like set and never stored.
func (i *Item) LikeCount() int {
	return len(i.Likes)
}

func (i *Item) IsLikedBy(userID string) bool {
	return contains(i.Likes, userID)
}

// ToggleLike flips the user's membership in the like set and reports whether it is now liked.
func (i *Item) ToggleLike(userID string) bool {
	for idx, id := range i.Likes {
		if id == userID {
			i.Likes = append(i.Likes[:idx:idx], i.Likes[idx+1:]...)
			return false
		}
	}
	i.Likes = append(i.Likes, userID)
	return true
}

// IsListed reports whether the item appears in public browse results.
func (i *Item) IsListed() bool {
	return i.Available && i.Approved
}

func (i Item) MarshalJSON() ([]byte, error) {
	type alias Item
	likes := i.Likes
	if likes == nil {
		likes = []string{}
	}
	a := alias(i)
	a.Likes = likes
	return json.Marshal(struct {
		alias
		LikeCount int `json:"like_count"`
	}{alias: a, LikeCount: len(likes)})
}

// ItemPatch enumerates the owner-editable listing fields. Nil means unchanged.
type ItemPatch struct {
	Title        *string
	Description  *string
	Tags         *[]string
	PointsValue  *int
	Brand        *string
	Color        *string
	Material     *string
	Location     *string
	Measurements *Measurements
	Shipping     *ShippingInfo
}

func (p ItemPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Tags == nil && p.PointsValue == nil &&
		p.Brand == nil && p.Color == nil && p.Material == nil && p.Location == nil &&
		p.Measurements == nil && p.Shipping == nil
}

func (p ItemPatch) Apply(item *Item) {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Tags != nil {
		item.Tags = *p.Tags
	}
	if p.PointsValue != nil {
		item.PointsValue = *p.PointsValue
	}
	if p.Brand != nil {
		item.Brand = *p.Brand
	}
	if p.Color != nil {
		item.Color = *p.Color
	}
	if p.Material != nil {
		item.Material = *p.Material
	}
	if p.Location != nil {
		item.Location = *p.Location
	}
	if p.Measurements != nil {
		item.Measurements = p.Measurements
	}
	if p.Shipping != nil {
		item.Shipping = p.Shipping
	}
}

// ItemSummary is the reduced listing shape embedded in swap views.
type ItemSummary struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Images      []string `json:"images"`
	PointsValue int      `json:"points_value"`
	OwnerID     string   `json:"owner_id"`
	OwnerName   string   `json:"owner_name"`
	Available   bool     `json:"is_available"`
}

func (i *Item) Summary() *ItemSummary {
	return &ItemSummary{
		ID:          i.ID,
		Title:       i.Title,
		Images:      i.Images,
		PointsValue: i.PointsValue,
		OwnerID:     i.OwnerID,
		OwnerName:   i.OwnerName,
		Available:   i.Available,
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
