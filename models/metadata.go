package models

// LinkMetadata is the flat record produced by one extraction. Unresolved
// fields are "" rather than absent.
type LinkMetadata struct {
	// URL is the final URL after following all redirects.
	URL string `json:"url"`

	Title       string `json:"title"`
	Description string `json:"description"`

	// Image and Favicon are "" or absolute URLs.
	Image    string `json:"image"`
	SiteName string `json:"siteName"`
	Favicon  string `json:"favicon"`
	Type     string `json:"type"`

	// Twitter Card overrides.
	TwitterCard        string `json:"twitterCard"`
	TwitterSite        string `json:"twitterSite"`
	TwitterCreator     string `json:"twitterCreator"`
	TwitterTitle       string `json:"twitterTitle"`
	TwitterDescription string `json:"twitterDescription"`
	TwitterImage       string `json:"twitterImage"`

	Author        string `json:"author"`
	PublishedTime string `json:"publishedTime"`
	ThemeColor    string `json:"themeColor"`
}
