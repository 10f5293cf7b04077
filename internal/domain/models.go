// Package domain defines the persistence models for users, the animal
// taxonomy, animals and adoption requests. These types are mapped with GORM
// and form the core data layer of the adoption service.
package domain

import (
	"time"
)

// Role is the coarse authorization role of a user.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Gender of an animal.
type Gender string

const (
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
	GenderUnknown Gender = "UNKNOWN"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderUnknown:
		return true
	}
	return false
}

// Size of an animal.
type Size string

const (
	SizeSmall      Size = "SMALL"
	SizeMedium     Size = "MEDIUM"
	SizeLarge      Size = "LARGE"
	SizeExtraLarge Size = "EXTRA_LARGE"
)

// Valid reports whether s is one of the known sizes.
func (s Size) Valid() bool {
	switch s {
	case SizeSmall, SizeMedium, SizeLarge, SizeExtraLarge:
		return true
	}
	return false
}

// RequestStatus is the lifecycle state of an adoption request.
// PENDING is the only non-terminal state.
type RequestStatus string

const (
	StatusPending  RequestStatus = "PENDING"
	StatusApproved RequestStatus = "APPROVED"
	StatusRejected RequestStatus = "REJECTED"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Open reports whether a request in this status blocks a new request for
// the same (animal, requester) pair.
func (s RequestStatus) Open() bool {
	return s == StatusPending || s == StatusApproved
}

// User is a person who may own animals and file adoption requests.
type User struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(120);not null"`
	Email     string    `json:"email"      gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email"`
	Phone     string    `json:"phone,omitempty" gorm:"type:varchar(32)"`
	Role      Role      `json:"role"       gorm:"type:varchar(16);not null;default:'USER'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// IsAdmin reports whether the user carries the administrator role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Category is a top-level animal kind such as "Dog" or "Cat".
type Category struct {
	ID        uint      `json:"id"         gorm:"primaryKey"`
	Name      string    `json:"name"       gorm:"type:varchar(80);not null;uniqueIndex:ux_categories_name"`
	NameFold  string    `json:"-"          gorm:"type:text;not null;default:''"`
	Active    bool      `json:"active"     gorm:"not null;default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Breed belongs to exactly one category. Breed names are unique per category.
type Breed struct {
	ID         uint      `json:"id"          gorm:"primaryKey"`
	CategoryID uint      `json:"category_id" gorm:"not null;uniqueIndex:ux_breeds_category_name,priority:1"`
	Name       string    `json:"name"        gorm:"type:varchar(80);not null;uniqueIndex:ux_breeds_category_name,priority:2"`
	NameFold   string    `json:"-"           gorm:"type:text;not null;default:''"`
	Active     bool      `json:"active"      gorm:"not null;default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Category *Category `json:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
}

// TableName returns the database table name for Breed.
func (Breed) TableName() string { return "breeds" }

// Animal is a listed animal. Once Adopted is true it never reverts and no
// new adoption request may be filed against it.
//
// BirthDate is stored as a UTC midnight timestamp so that range predicates
// compare consistently across drivers.
type Animal struct {
	ID               uint      `json:"id"                gorm:"primaryKey"`
	Name             string    `json:"name"              gorm:"type:varchar(120);not null"`
	ShortDescription string    `json:"short_description" gorm:"type:varchar(255);not null;default:''"`
	Description      string    `json:"description"       gorm:"type:text;not null;default:''"`
	NameFold         string    `json:"-"                 gorm:"type:text;not null;default:''"`
	ShortFold        string    `json:"-"                 gorm:"column:short_description_fold;type:text;not null;default:''"`
	CategoryID       uint      `json:"category_id"       gorm:"not null;index:idx_animals_category"`
	BreedID          *uint     `json:"breed_id,omitempty" gorm:"index:idx_animals_breed"`
	Gender           Gender    `json:"gender"            gorm:"type:varchar(16);not null;check:chk_animals_gender,gender IN ('MALE','FEMALE','UNKNOWN')"`
	Size             Size      `json:"size"              gorm:"type:varchar(16);not null;check:chk_animals_size,size IN ('SMALL','MEDIUM','LARGE','EXTRA_LARGE')"`
	BirthDate        time.Time `json:"birth_date"        gorm:"not null;index:idx_animals_birth_date"`
	OwnerID          uint      `json:"owner_id"          gorm:"not null;index:idx_animals_owner"`
	Adopted          bool      `json:"adopted"           gorm:"not null;default:false;index:idx_animals_adopted"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Category *Category `json:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Breed    *Breed    `json:"-" gorm:"foreignKey:BreedID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Owner    *User     `json:"-" gorm:"foreignKey:OwnerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Animal.
func (Animal) TableName() string { return "animals" }

// AdoptionRequest is a requester's application to adopt an animal.
//
// Store-level guarantees:
//   - ux_adoption_open_pair: at most one open (PENDING or APPROVED) request
//     per (animal, requester).
//   - ux_adoption_one_approved: at most one APPROVED request per animal.
//
// DecisionAt is nil iff Status is PENDING.
type AdoptionRequest struct {
	ID          uint          `json:"id"           gorm:"primaryKey"`
	AnimalID    uint          `json:"animal_id"    gorm:"not null;index:idx_adoption_animal_status,priority:1;uniqueIndex:ux_adoption_open_pair,priority:1,where:status <> 'REJECTED';uniqueIndex:ux_adoption_one_approved,where:status = 'APPROVED'"`
	RequesterID uint          `json:"requester_id" gorm:"not null;index:idx_adoption_requester;uniqueIndex:ux_adoption_open_pair,priority:2,where:status <> 'REJECTED'"`
	Note        string        `json:"note"         gorm:"type:varchar(500);not null"`
	Status      RequestStatus `json:"status"       gorm:"type:varchar(16);not null;default:'PENDING';index:idx_adoption_animal_status,priority:2;check:chk_adoption_status,status IN ('PENDING','APPROVED','REJECTED')"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	DecisionAt  *time.Time    `json:"decision_at,omitempty"`

	Animal    *Animal `json:"-" gorm:"foreignKey:AnimalID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Requester *User   `json:"-" gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for AdoptionRequest.
func (AdoptionRequest) TableName() string { return "adoption_requests" }
