package models

// Cookie is an engine-neutral cookie record crossing the browser
// capability boundary. The chromedp page implementation converts these
// to and from cdproto network cookies; the session cache stores them
// as-is so it can be tested without a browser.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"` // unix seconds, -1 for session cookies
	HTTPOnly bool    `json:"http_only"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"same_site,omitempty"`
}
