package entity

import (
	"time"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"

	DefaultProfilePicture = "/images/default-avatar.png"
)

type UserPreferences struct {
	Categories []string `json:"categories,omitempty" firestore:"categories,omitempty"`
	Sizes      []string `json:"sizes,omitempty" firestore:"sizes,omitempty"`
	MaxPoints  int      `json:"max_points,omitempty" firestore:"maxPoints,omitempty"`
}

type User struct {
	ID             string `json:"id" firestore:"id"`
	Name           string `json:"name" firestore:"name"`
	Email          string `json:"email" firestore:"email"`
	PasswordHash   string `json:"-" firestore:"passwordHash"`
	Role           string `json:"role" firestore:"role"`
	IsActive       bool   `json:"is_active" firestore:"isActive"`
	Points         int    `json:"points" firestore:"points"`
	Location       string `json:"location,omitempty" firestore:"location,omitempty"`
	ProfilePicture string `json:"profile_picture" firestore:"profilePicture"`
	Bio            string `json:"bio,omitempty" firestore:"bio,omitempty"`

	Preferences *UserPreferences `json:"preferences,omitempty" firestore:"preferences,omitempty"`

	// Rating is the running average of ratings received on completed swaps.
	Rating         float64 `json:"rating" firestore:"rating"`
	RatingCount    int     `json:"rating_count" firestore:"ratingCount"`
	ItemsListed    int     `json:"items_listed" firestore:"itemsListed"`
	SwapsCompleted int     `json:"swaps_completed" firestore:"swapsCompleted"`

	CreatedAt time.Time `json:"join_date" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// AddRating folds a new 1-5 score into the running average.
func (u *User) AddRating(score int) {
	total := u.Rating * float64(u.RatingCount)
	u.RatingCount++
	u.Rating = (total + float64(score)) / float64(u.RatingCount)
}

// PublicProfile is what other users see.
type PublicProfile struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ProfilePicture string    `json:"profile_picture"`
	Location       string    `json:"location,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	Rating         float64   `json:"rating"`
	ItemsListed    int       `json:"items_listed"`
	SwapsCompleted int       `json:"swaps_completed"`
	JoinDate       time.Time `json:"join_date"`
}

func (u *User) Public() *PublicProfile {
	return &PublicProfile{
		ID:             u.ID,
		Name:           u.Name,
		ProfilePicture: u.ProfilePicture,
		Location:       u.Location,
		Bio:            u.Bio,
		Rating:         u.Rating,
		ItemsListed:    u.ItemsListed,
		SwapsCompleted: u.SwapsCompleted,
		JoinDate:       u.CreatedAt,
	}
}

// UserStats aggregates a user's counters with live store counts.
type UserStats struct {
	ItemsListed    int       `json:"items_listed"`
	SwapsCompleted int       `json:"swaps_completed"`
	Rating         float64   `json:"rating"`
	JoinDate       time.Time `json:"join_date"`
	TotalItems     int64     `json:"total_items"`
	CompletedSwaps int64     `json:"completed_swaps"`
	PendingSwaps   int64     `json:"pending_swaps"`
}

// UserPatch enumerates the profile fields a user may edit on their own account.
type UserPatch struct {
	Name           *string
	Location       *string
	Bio            *string
	ProfilePicture *string
	Preferences    *UserPreferences
}

func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Location == nil && p.Bio == nil && p.ProfilePicture == nil && p.Preferences == nil
}

func (p UserPatch) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Location != nil {
		u.Location = *p.Location
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = *p.ProfilePicture
	}
	if p.Preferences != nil {
		u.Preferences = p.Preferences
	}
}

// AdminUserPatch enumerates the account fields only an admin may change.
type AdminUserPatch struct {
	IsActive *bool
	IsAdmin  *bool
	Points   *int
}

func (p AdminUserPatch) IsEmpty() bool {
	return p.IsActive == nil && p.IsAdmin == nil && p.Points == nil
}

func (p AdminUserPatch) Apply(u *User) {
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsAdmin != nil {
		u.Role = RoleUser
		if *p.IsAdmin {
			u.Role = RoleAdmin
		}
	}
	if p.Points != nil {
		u.Points = *p.Points
	}
}
