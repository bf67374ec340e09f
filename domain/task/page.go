package task

// Paging limits applied by PageRequest.Normalize.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageRequest selects a zero-based page of at most Size records.
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Normalize clamps the request into a valid window.
func (p PageRequest) Normalize() PageRequest {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

// Offset returns the number of records preceding the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Page is one window of tasks plus the totals needed for paging controls.
type Page struct {
	Content          []Task `json:"content"`
	TotalElements    int64  `json:"total_elements"`
	TotalPages       int    `json:"total_pages"`
	Number           int    `json:"number"`
	Size             int    `json:"size"`
	NumberOfElements int    `json:"number_of_elements"`
	First            bool   `json:"first"`
	Last             bool   `json:"last"`
	Empty            bool   `json:"empty"`
}

// NewPage assembles a Page from a window of content and the total record count.
func NewPage(content []Task, req PageRequest, total int64) Page {
	if content == nil {
		content = []Task{}
	}

	totalPages := 0
	if req.Size > 0 {
		totalPages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}

	return Page{
		Content:          content,
		TotalElements:    total,
		TotalPages:       totalPages,
		Number:           req.Page,
		Size:             req.Size,
		NumberOfElements: len(content),
		First:            req.Page == 0,
		Last:             req.Page >= totalPages-1,
		Empty:            len(content) == 0,
	}
}
