package domain

type Appraiser struct {
	ID        string    `json:"id" validate:"required"`
	Slug      string    `json:"slug" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Address   Address   `json:"address"`
	Contact   Contact   `json:"contact"`
	Business  Business  `json:"business"`
	Expertise Expertise `json:"expertise"`
	Content   Content   `json:"content"`
	Reviews   []Review  `json:"reviews" validate:"dive"`
	Metadata  Metadata  `json:"metadata"`
}

type Address struct {
	Street string `json:"street,omitempty"`
	City   string `json:"city,omitempty"`
	State  string `json:"state,omitempty"`
	Zip    string `json:"zip,omitempty"`
	Full   string `json:"full,omitempty"`
}

type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Website string `json:"website,omitempty"`
}

type Hours struct {
	Day   string `json:"day"`
	Hours string `json:"hours"`
}

type Business struct {
	Hours           []Hours  `json:"hours,omitempty"`
	Pricing         string   `json:"pricing,omitempty"`
	YearsInBusiness string   `json:"yearsInBusiness,omitempty"`
	Rating          *float64 `json:"rating,omitempty" validate:"omitempty,gte=0,lte=5"` // nil: unrated
	ReviewCount     int      `json:"reviewCount" validate:"gte=0"`
}

type Expertise struct {
	Specialties    []string `json:"specialties,omitempty"`
	Certifications []string `json:"certifications,omitempty"`
	Services       []string `json:"services,omitempty"`
}

type Content struct {
	About string `json:"about,omitempty"`
	Notes string `json:"notes,omitempty"`
}

type Metadata struct {
	LastUpdated string `json:"lastUpdated,omitempty"`
	InService   bool   `json:"inService"`
}
