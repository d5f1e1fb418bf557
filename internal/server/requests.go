package server

type uploadCompleteRequest struct {
	URL       string  `json:"url" binding:"required,url"`
	Name      string  `json:"name" binding:"max=100"`
	Type      string  `json:"type" binding:"required,mediatype"`
	Size      int64   `json:"size" binding:"gte=0"`
	Thumbnail string  `json:"thumbnail" binding:"omitempty,url"`
	Duration  float64 `json:"duration" binding:"gte=0"`
}

type postMessageRequest struct {
	Name    string `json:"name" binding:"required,min=2,max=100"`
	Content string `json:"content" binding:"required,min=1,max=500"`
}

type registerGuestRequest struct {
	Name  string `json:"name" binding:"required,min=2,max=100"`
	Email string `json:"email" binding:"required,email"`
}

type likeResponse struct {
	Success bool   `json:"success"`
	Likes   int    `json:"likes"`
	Error   string `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
