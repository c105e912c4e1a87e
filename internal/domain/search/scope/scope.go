package scope

// Scope is the search intent that selects the query radius.
type Scope string

// Search scopes.
const (
	// Nearby browses venues around the user's position.
	Nearby Scope = "nearby"
	// Zip searches a whole zip code area, so it uses a wider radius.
	Zip Scope = "zip"
	// Named finds every location of one restaurant name, including farther chain locations.
	Named Scope = "named"
)

// IsValid checks if the scope is one of the supported values.
func (s Scope) IsValid() bool {
	return s == Nearby || s == Zip || s == Named
}
