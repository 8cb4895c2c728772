package model

// ArtworkRecord is a single provider-tagged artwork result. IDs are unique
// within a provider only; (Source, ID) is the global identity.
type ArtworkRecord struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist,omitempty"`
	DateLabel string `json:"date,omitempty"`
	ThumbURL  string `json:"thumb_url"`
	FullURL   string `json:"full_url,omitempty"`
	Source    string `json:"source"`
	Location  string `json:"location,omitempty"`
}
