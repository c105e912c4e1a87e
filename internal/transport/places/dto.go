package places

// Google Places / Geocoding web service response shapes (only the fields we read).

type placesResponse struct {
	Results      []placeResult `json:"results"`
	Status       string        `json:"status"`
	ErrorMessage string        `json:"error_message,omitempty"`
}

type placeResult struct {
	PlaceID          string    `json:"place_id"`
	Name             string    `json:"name"`
	Vicinity         string    `json:"vicinity,omitempty"`
	FormattedAddress string    `json:"formatted_address,omitempty"`
	Rating           *float64  `json:"rating,omitempty"`
	PriceLevel       *int      `json:"price_level,omitempty"`
	Geometry         *geometry `json:"geometry,omitempty"`
	Types            []string  `json:"types"`
	Photos           []photo   `json:"photos,omitempty"`
}

type geometry struct {
	Location location `json:"location"`
}

type location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type photo struct {
	PhotoReference string `json:"photo_reference"`
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string   `json:"formatted_address"`
		Geometry         geometry `json:"geometry"`
	} `json:"results"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

// statusResponse reads just the status of any response.
type statusResponse interface {
	status() (string, string)
}

func (r *placesResponse) status() (string, string)  { return r.Status, r.ErrorMessage }
func (r *geocodeResponse) status() (string, string) { return r.Status, r.ErrorMessage }
