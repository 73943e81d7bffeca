package http

type DateRangeRequest struct {
	Start string `json:"start" form:"start"`
	End   string `json:"end" form:"end"`
}

type ListQuery struct {
	Page     int    `form:"page"`
	Limit    int    `form:"limit"`
	Search   string `form:"search"`
	Category string `form:"category"`
	FileType string `form:"fileType"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type UnknownFormatResponse struct {
	Error           string              `json:"error"`
	ExpectedHeaders map[string][]string `json:"expectedHeaders"`
}

type MessageResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted,omitempty"`
}
