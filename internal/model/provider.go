package model

type Rating struct {
	UserID   string   `json:"user_id"`
	UserName string   `json:"user_name"`
	Rating   int      `json:"rating"`
	Comment  string   `json:"comment,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

type Provider struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	ServiceCategory string         `json:"service_category"`
	ContactName     string         `json:"contact_name"`
	Phone           string         `json:"phone"`
	Description     string         `json:"description,omitempty"`
	IsWhitelisted   bool           `json:"is_whitelisted"`
	Ratings         []Rating       `json:"ratings"`
	AverageRating   float64        `json:"average_rating"`
	ServesCommunity bool           `json:"serves_community"`
	ServesResidents bool           `json:"serves_residents"`
	TagCounts       map[string]int `json:"tag_counts,omitempty"`
}

// RecomputeAverage recalculates the mean over every stored rating, so the
// result always equals a from-scratch arithmetic mean.
func (p *Provider) RecomputeAverage() {
	if len(p.Ratings) == 0 {
		p.AverageRating = 0
		return
	}
	sum := 0
	for _, r := range p.Ratings {
		sum += r.Rating
	}
	p.AverageRating = float64(sum) / float64(len(p.Ratings))
}

type ProviderVisit struct {
	ID           string `json:"id"`
	ProviderID   string `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	Date         string `json:"date"` // YYYY-MM-DD
	Time         string `json:"time"` // HH:mm
	Notes        string `json:"notes,omitempty"`
}
