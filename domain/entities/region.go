package entities

// Region identifies one of the independent poporing deployments
type Region string

const (
	RegionSEA    Region = "sea"
	RegionGlobal Region = "global"
)

// DefaultRegion is used when neither the channel nor the guild has a preference
const DefaultRegion = RegionSEA

// ParseRegion normalizes user input ("s", "g", "sea", "global") into a Region
func ParseRegion(s string) (Region, bool) {
	switch s {
	case "sea", "s":
		return RegionSEA, true
	case "global", "g":
		return RegionGlobal, true
	}
	return "", false
}

// Tag returns the short label shown in replies
func (r Region) Tag() string {
	if r == RegionGlobal {
		return "[Global]"
	}
	return "[SEA]"
}

// Label returns the name used in confirmation messages
func (r Region) Label() string {
	if r == RegionGlobal {
		return "Global"
	}
	return "SEA"
}

// WebSearchURL returns the deep link prefix for the region's search page
func (r Region) WebSearchURL() string {
	if r == RegionGlobal {
		return "https://global.poporing.life/?search="
	}
	return "https://poporing.life/?search="
}

// Valid reports whether r is a known region
func (r Region) Valid() bool {
	return r == RegionSEA || r == RegionGlobal
}
