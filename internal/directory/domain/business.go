package domain

import (
	"math"
	"time"
)

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Business struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Address       string    `json:"address"`
	Phone         string    `json:"phone,omitempty"`
	Website       string    `json:"website,omitempty"`
	Hours         Document  `json:"hours,omitempty"`
	Location      *Location `json:"location,omitempty"`
	Amenities     []string  `json:"amenities"`
	Photos        []string  `json:"photos"`
	LGBTQFriendly bool      `json:"lgbtqFriendly"`
	Accessibility Document  `json:"accessibility,omitempty"`
	Verified      bool      `json:"verified"`
	OwnerID       string    `json:"ownerId"`
	AverageRating float64   `json:"averageRating"`
	ReviewCount   int       `json:"reviewCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// OwnedBy reports whether userID owns the listing.
func (b Business) OwnedBy(userID string) bool {
	return userID != "" && b.OwnerID == userID
}

// RoundRating returns the mean of sum over count rounded to one decimal,
// or 0 when there is nothing to average.
func RoundRating(sum, count int) float64 {
	if count <= 0 {
		return 0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}
