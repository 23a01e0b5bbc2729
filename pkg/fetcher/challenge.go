package fetcher

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DetectChallenge checks if the page content indicates a challenge or block
// page and returns its kind, or "" for an ordinary page.
func DetectChallenge(title, html string) string {
	titleLower := strings.ToLower(title)
	htmlLower := strings.ToLower(html)

	// Google's rate-limit interstitial
	if strings.Contains(htmlLower, "unusual traffic from your computer network") ||
		strings.Contains(htmlLower, "/sorry/index") {
		return "unusual-traffic"
	}

	// reCAPTCHA
	if strings.Contains(htmlLower, "google.com/recaptcha") ||
		strings.Contains(htmlLower, "g-recaptcha") {
		return "recaptcha"
	}

	// Cloudflare in front of a custom endpoint
	if strings.Contains(titleLower, "just a moment") ||
		strings.Contains(htmlLower, "cf-challenge") ||
		strings.Contains(htmlLower, "cf_chl_opt") {
		return "cloudflare"
	}

	// Generic bot detection pages
	if strings.Contains(titleLower, "access denied") ||
		strings.Contains(titleLower, "blocked") ||
		strings.Contains(titleLower, "bot detection") ||
		strings.Contains(htmlLower, "robot or human") {
		return "anti-bot"
	}

	return ""
}

// pageTitle returns the document title of html, or "".
func pageTitle(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
