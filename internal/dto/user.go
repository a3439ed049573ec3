package dto

// CurrentUserResponse is returned by GET /api/me.
type CurrentUserResponse struct {
	Email           *string `json:"email"`
	Name            *string `json:"name"`
	DisplayName     string  `json:"display_name"`
	IsAuthenticated bool    `json:"is_authenticated"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Database string `json:"database"`
}
