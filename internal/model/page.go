package model

// Page represents a content page of the marketing site that a CTA click
// can be attributed to. Only the fields the leaderboard needs are kept.
type Page struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}
