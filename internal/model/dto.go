package model

// ========== Verification DTOs ==========

// CheckResponse is the wire format of GET /check/{id}
type CheckResponse struct {
	Exists        bool `json:"exists"`
	TokenVerified bool `json:"tokenVerified"`
}

// GateResponse is the JSON view of the landing gate
type GateResponse struct {
	State          string `json:"state"`
	UserID         string `json:"userId"`
	RemoteVerified bool   `json:"remoteVerified"`
	LocalValid     bool   `json:"localValid"`
}

// ========== Catalogue DTOs ==========

type CreateMovieRequest struct {
	Title    string   `json:"title" binding:"required,max=255"`
	Slug     string   `json:"slug" binding:"required,max=255"`
	Type     string   `json:"type" binding:"max=50"`
	SmPoster string   `json:"smposter" binding:"max=500"`
	BgPoster string   `json:"bgposter" binding:"max=500"`
	Status   string   `json:"status" binding:"omitempty,oneof=draft publish"`
	Genre    []string `json:"genre"`
}

type UploadResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`
	MimeType string `json:"mime_type"`
}

// ========== WebSocket Event DTOs ==========

type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocket event types
const (
	WSEventMoviePublished = "movie_published"
)

// ========== Common ==========

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
