package directorysdk

import "time"

// ============================================================================
// Records
// ============================================================================

type User struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"displayName"`
	Role        string         `json:"role"`
	CreatedAt   time.Time      `json:"createdAt"`
	LastLoginAt *time.Time     `json:"lastLoginAt,omitempty"`
	Profile     map[string]any `json:"profile,omitempty"`
	Status      string         `json:"status"`
	AdminNotes  string         `json:"adminNotes,omitempty"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Business struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Category      string         `json:"category"`
	Address       string         `json:"address"`
	Phone         string         `json:"phone,omitempty"`
	Website       string         `json:"website,omitempty"`
	Hours         map[string]any `json:"hours,omitempty"`
	Location      *Location      `json:"location,omitempty"`
	Amenities     []string       `json:"amenities"`
	Photos        []string       `json:"photos"`
	LGBTQFriendly bool           `json:"lgbtqFriendly"`
	Accessibility map[string]any `json:"accessibility,omitempty"`
	Verified      bool           `json:"verified"`
	OwnerID       string         `json:"ownerId"`
	AverageRating float64        `json:"averageRating"`
	ReviewCount   int            `json:"reviewCount"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

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

// ============================================================================
// Auth
// ============================================================================

// SignUpRequest registers an account. Role may be "user" (default),
// "business", or "admin" while the directory has no admin.
type SignUpRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by sign-up and sign-in.
type SessionResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"tokenType"`
	ExpiresIn int    `json:"expiresIn"`
	SessionID string `json:"sessionId"`
	User      User   `json:"user"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ============================================================================
// Businesses and reviews
// ============================================================================

// BusinessRequest creates or patches a listing. Nil fields are left as they
// are on update.
type BusinessRequest struct {
	Name          *string        `json:"name,omitempty"`
	Description   *string        `json:"description,omitempty"`
	Category      *string        `json:"category,omitempty"`
	Address       *string        `json:"address,omitempty"`
	Phone         *string        `json:"phone,omitempty"`
	Website       *string        `json:"website,omitempty"`
	Hours         map[string]any `json:"hours,omitempty"`
	Location      *Location      `json:"location,omitempty"`
	Amenities     []string       `json:"amenities,omitempty"`
	Photos        []string       `json:"photos,omitempty"`
	LGBTQFriendly *bool          `json:"lgbtqFriendly,omitempty"`
	Accessibility map[string]any `json:"accessibility,omitempty"`
}

// BusinessQuery filters the public listing.
type BusinessQuery struct {
	Category      string
	LGBTQFriendly bool
	VerifiedOnly  bool
}

// ReviewRequest posts or rewrites a review. On update, nil Photos keeps the
// existing photos.
type ReviewRequest struct {
	Rating  int      `json:"rating"`
	Comment string   `json:"comment"`
	Photos  []string `json:"photos,omitempty"`
}

type ResponseRequest struct {
	Message string `json:"message"`
}

// ============================================================================
// Admin
// ============================================================================

type UserUpdateRequest struct {
	Status     *string `json:"status,omitempty"`
	Role       *string `json:"role,omitempty"`
	AdminNotes *string `json:"adminNotes,omitempty"`
}

// ============================================================================
// Debug
// ============================================================================

type SystemInfo struct {
	Version       string          `json:"version"`
	Env           string          `json:"env"`
	GoVersion     string          `json:"goVersion"`
	OS            string          `json:"os"`
	Arch          string          `json:"arch"`
	NumCPU        int             `json:"numCPU"`
	Goroutines    int             `json:"goroutines"`
	Hostname      string          `json:"hostname"`
	PID           int             `json:"pid"`
	StartedAt     time.Time       `json:"startedAt"`
	UptimeSeconds float64         `json:"uptimeSeconds"`
	Driver        string          `json:"driver"`
	Features      map[string]bool `json:"features"`
	LogEntries    int             `json:"logEntries"`
	LogCapacity   int             `json:"logCapacity"`
}

type DatabaseStats struct {
	Driver string `json:"driver"`
	Users  struct {
		Total    int            `json:"total"`
		ByRole   map[string]int `json:"byRole"`
		ByStatus map[string]int `json:"byStatus"`
	} `json:"users"`
	Businesses struct {
		Total         int            `json:"total"`
		ByCategory    map[string]int `json:"byCategory"`
		Verified      int            `json:"verified"`
		LGBTQFriendly int            `json:"lgbtqFriendly"`
	} `json:"businesses"`
	Reviews struct {
		Total         int            `json:"total"`
		ByRating      map[string]int `json:"byRating"`
		AverageRating float64        `json:"averageRating"`
		WithResponse  int            `json:"withResponse"`
	} `json:"reviews"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResult struct {
	Query string           `json:"query"`
	Table string           `json:"table"`
	Count int              `json:"count"`
	Rows  []map[string]any `json:"rows,omitempty"`
}

type PerformanceResult struct {
	ReadMS  float64 `json:"readMs"`
	WriteMS float64 `json:"writeMs"`
	AuthMS  float64 `json:"authMs"`
	TotalMS float64 `json:"totalMs"`
}

type LogEntry struct {
	Time     time.Time      `json:"time"`
	Level    string         `json:"level"`
	Category string         `json:"category,omitempty"`
	Message  string         `json:"message"`
	Data     map[string]any `json:"data,omitempty"`
}

// LogQuery filters GET /v1/debug/logs. Level is a minimum.
type LogQuery struct {
	Level    string
	Category string
	Text     string
	Limit    int
}

type Export struct {
	ExportedAt time.Time  `json:"exportedAt"`
	Version    string     `json:"version"`
	Driver     string     `json:"driver"`
	Users      []User     `json:"users"`
	Businesses []Business `json:"businesses"`
	Reviews    []Review   `json:"reviews"`
}

type ImportResult struct {
	Users      int `json:"users"`
	Businesses int `json:"businesses"`
	Reviews    int `json:"reviews"`
}

// ============================================================================
// Photos and health
// ============================================================================

type PhotoResponse struct {
	Ref         string `json:"ref"`
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Sessions string `json:"sessions,omitempty"`
	Photos   string `json:"photos,omitempty"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
