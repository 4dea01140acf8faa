package users

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user's role within the portal
type RoleType string

const (
	RoleFarmer RoleType = "farmer"
	RoleBuyer  RoleType = "buyer"
	RoleAdmin  RoleType = "admin"
)

// DefaultSoilType is applied when a signup or profile update omits soilType
const DefaultSoilType = "Alluvial"

func (r RoleType) Valid() bool {
	switch r {
	case RoleFarmer, RoleBuyer, RoleAdmin:
		return true
	}
	return false
}

// Document is a reference to an uploaded profile document. The file itself
// lives with an external media host; only the metadata is stored here.
type Document struct {
	Type     string `bson:"type" json:"type"`
	URL      string `bson:"url" json:"url"`
	Name     string `bson:"name" json:"name"`
	PublicID string `bson:"public_id,omitempty" json:"public_id,omitempty"`
}

type User struct {
	ID           string   `bson:"_id,omitempty" json:"id,omitempty"` // Unique identifier for the user
	Name         string   `bson:"name" json:"name"`
	Email        string   `bson:"email" json:"email"` // Stored lowercased, unique
	PasswordHash string   `bson:"password" json:"-"`  // Hashed password - never serialize
	Role         RoleType `bson:"role" json:"role"`

	Phone                  string     `bson:"phone,omitempty" json:"phone,omitempty"`
	Location               string     `bson:"location,omitempty" json:"location,omitempty"`
	LandSize               float64    `bson:"landSize" json:"landSize"`
	SoilType               string     `bson:"soilType,omitempty" json:"soilType,omitempty"`
	Crops                  []string   `bson:"crops" json:"crops"`
	Skills                 []string   `bson:"skills" json:"skills"`
	ProfileImage           string     `bson:"profileImage,omitempty" json:"profileImage,omitempty"`
	AadharNumber           string     `bson:"aadharNumber,omitempty" json:"aadharNumber,omitempty"`
	FarmRegistrationNumber string     `bson:"farmRegistrationNumber,omitempty" json:"farmRegistrationNumber,omitempty"`
	IrrigationType         string     `bson:"irrigationType,omitempty" json:"irrigationType,omitempty"`
	Documents              []Document `bson:"documents" json:"documents"`

	// Allowlists of currently honoured tokens, in issuance order. A token
	// must be present here in addition to being cryptographically valid.
	ValidTokens        []string `bson:"validTokens" json:"-"`
	ValidRefreshTokens []string `bson:"validRefreshTokens" json:"-"`

	CreatedAt time.Time `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time `bson:"updatedAt,omitempty" json:"updatedAt,omitempty"`
}

// Sanitized returns a copy of the user safe to send to clients: the password
// hash and both token allowlists are cleared.
func (u User) Sanitized() *User {
	u.PasswordHash = ""
	u.ValidTokens = nil
	u.ValidRefreshTokens = nil
	return &u
}

// HasAccessToken reports whether token is in the access-token allowlist.
func (u *User) HasAccessToken(token string) bool {
	for _, t := range u.ValidTokens {
		if t == token {
			return true
		}
	}
	return false
}

// HasRefreshToken reports whether token is in the refresh-token allowlist.
func (u *User) HasRefreshToken(token string) bool {
	for _, t := range u.ValidRefreshTokens {
		if t == token {
			return true
		}
	}
	return false
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
