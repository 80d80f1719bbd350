package domain

// Location is one city document: every appraiser serving a metropolitan area.
type Location struct {
	Key         string      `json:"key"` // file name stem, e.g. "columbus"
	City        string      `json:"city,omitempty"`
	State       string      `json:"state,omitempty"`
	DisplayName string      `json:"displayName,omitempty"`
	Appraisers  []Appraiser `json:"appraisers" validate:"dive"`
	SEO         SEO         `json:"seo"`
}

type SEO struct {
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Schema      Schema   `json:"schema"`
}

type Schema struct {
	AreaServed AreaServed `json:"areaServed"`
}

type AreaServed struct {
	Name string `json:"name,omitempty"`
}

// AreaServedName is "" when the document has no SEO area.
func (l Location) AreaServedName() string { return l.SEO.Schema.AreaServed.Name }

// FirstAppraiserCity is "" for a location without appraisers.
func (l Location) FirstAppraiserCity() string {
	if len(l.Appraisers) == 0 {
		return ""
	}
	return l.Appraisers[0].Address.City
}

// Name picks the best human label for the location.
func (l Location) Name() string {
	switch {
	case l.DisplayName != "":
		return l.DisplayName
	case l.City != "":
		return l.City
	case l.AreaServedName() != "":
		return l.AreaServedName()
	case l.FirstAppraiserCity() != "":
		return l.FirstAppraiserCity()
	}
	return l.Key
}
