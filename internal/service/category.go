package service

import (
	"strings"

	"github.com/killsub/backend/internal/models"
)

// CategoryOther is the fallback bucket for unmatched subscription names.
const CategoryOther = "other"

// categoryKeywords pairs a category with its matching keywords. Order
// matters: the first category with a matching keyword wins, so overlapping
// names always bucket the same way.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"streaming", []string{"netflix", "hulu", "disney", "hbo", "max", "spotify", "apple music", "youtube", "paramount", "peacock", "viaplay", "twitch", "audible"}},
	{"productivity", []string{"notion", "evernote", "todoist", "asana", "trello", "monday", "slack", "zoom", "microsoft 365", "office"}},
	{"fitness", []string{"gym", "peloton", "strava", "fitbit", "myfitnesspal", "classpass", "sats", "yoga"}},
	{"news", []string{"times", "post", "journal", "news", "economist", "bloomberg", "medium", "substack"}},
	{"cloud_storage", []string{"dropbox", "icloud", "google one", "google storage", "onedrive", "backblaze"}},
	{"software", []string{"adobe", "figma", "github", "jetbrains", "canva", "grammarly", "1password", "lastpass", "vpn"}},
	{"financial", []string{"bank", "insurance", "credit", "loan", "klarna", "quickbooks", "mint"}},
	{"shopping", []string{"amazon prime", "costco", "walmart", "instacart", "hellofresh", "chewy"}},
}

// Categorize buckets a subscription name into a category via
// case-insensitive substring matching against the keyword dictionary.
// Pure and deterministic; no match returns "other".
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, entry := range categoryKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(lower, keyword) {
				return entry.category
			}
		}
	}
	return CategoryOther
}

// GroupByCategory buckets subscriptions by their category.
func GroupByCategory(subs []models.Subscription) map[string][]models.Subscription {
	buckets := make(map[string][]models.Subscription)
	for _, sub := range subs {
		category := Categorize(sub.Name)
		buckets[category] = append(buckets[category], sub)
	}
	return buckets
}
