package entities

import "strings"

// Item represents a tradable item as returned by the poporing item list
type Item struct {
	Name            string   `json:"name"`
	DisplayName     string   `json:"display_name"`
	AltDisplayNames []string `json:"alt_display_name_list"`
	ImageURL        string   `json:"image_url"`

	// DisplayNameCombined is the lowercase pipe-joined display name and alternates.
	// It is filled once when the catalog is built and used for substring matching.
	DisplayNameCombined string `json:"-"`
}

// CombineDisplayNames builds the lowercase pipe-joined search string for the item
func (i Item) CombineDisplayNames() string {
	names := make([]string, 0, len(i.AltDisplayNames)+1)
	names = append(names, i.DisplayName)
	names = append(names, i.AltDisplayNames...)
	return strings.ToLower(strings.Join(names, "|"))
}

const (
	// ItemImageBaseURL is prepended to relative image paths
	ItemImageBaseURL = "https://static.poporing.life/items/"
	// PlaceholderImageURL is used when an item has no image
	PlaceholderImageURL = "https://via.placeholder.com/50x50?text=?"
)

// ThumbnailURL returns an absolute image URL for the item
func (i Item) ThumbnailURL() string {
	switch {
	case i.ImageURL == "":
		return PlaceholderImageURL
	case strings.HasPrefix(i.ImageURL, "http"):
		return i.ImageURL
	default:
		return ItemImageBaseURL + i.ImageURL
	}
}
