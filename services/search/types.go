package search

// Request is a validated search request.
type Request struct {
	Query string
	Type  string
	Page  int
	Limit int
	Sort  SortMode
}

type Response struct {
	Results    []Result       `json:"results"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
	Query      string         `json:"query"`
	Types      map[string]int `json:"types"`
}
