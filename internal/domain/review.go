package domain

// Review has no identity; the same author+content pair may appear twice.
type Review struct {
	Author  string  `json:"author"`
	Rating  float64 `json:"rating" validate:"gte=0,lte=5"`
	Date    string  `json:"date,omitempty"` // ISO 8601
	Content string  `json:"content"`
}

// OnHalfPointGrid reports whether r is a multiple of 0.5.
func OnHalfPointGrid(r float64) bool {
	d := r * 2
	return d == float64(int64(d))
}
