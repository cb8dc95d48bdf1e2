package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5

	// DeletedResponseMessage replaces the message of a deleted response.
	DeletedResponseMessage = "[deleted]"
)

type Review struct {
	ID         string            `json:"id"`
	BusinessID string            `json:"businessId"`
	UserID     string            `json:"userId"`
	Rating     int               `json:"rating"`
	Comment    string            `json:"comment"`
	Photos     []string          `json:"photos"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Response   *BusinessResponse `json:"response,omitempty"`
}

// BusinessResponse is an owner's reply embedded in a review.
type BusinessResponse struct {
	ID         string    `json:"id"`
	ReviewID   string    `json:"reviewId"`
	BusinessID string    `json:"businessId"`
	OwnerID    string    `json:"ownerId"`
	OwnerName  string    `json:"ownerName"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Live reports whether the response exists and has not been tombstoned.
func (r *BusinessResponse) Live() bool {
	return r != nil && r.Message != DeletedResponseMessage
}

func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}

// Rating computes the derived average and count for a set of reviews.
func Rating(reviews []Review) (average float64, count int) {
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return RoundRating(sum, len(reviews)), len(reviews)
}
