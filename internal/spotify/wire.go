// ABOUTME: Wire-shape structs for API responses whose JSON nests what the domain types flatten.

package spotify

// page is the Spotify paging envelope around list responses.
type page[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

type followersWire struct {
	Total int `json:"total"`
}

type artistWire struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Followers followersWire `json:"followers"`
}

func (w artistWire) artist() Artist {
	return Artist{ID: w.ID, Name: w.Name, Followers: w.Followers.Total}
}

type playlistWire struct {
	ID          string `json:"id"`
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
	Owner       struct {
		DisplayName string `json:"display_name"`
	} `json:"owner"`
	Tracks struct {
		Total int `json:"total"`
	} `json:"tracks"`
}

func (w playlistWire) playlist() Playlist {
	return Playlist{
		ID:          w.ID,
		URI:         w.URI,
		Name:        w.Name,
		Description: w.Description,
		Public:      w.Public,
		Owner:       w.Owner.DisplayName,
		TrackCount:  w.Tracks.Total,
	}
}

type userWire struct {
	ID          string        `json:"id"`
	DisplayName string        `json:"display_name"`
	Country     string        `json:"country"`
	Followers   followersWire `json:"followers"`
}

func (w userWire) user() User {
	return User{
		ID:          w.ID,
		DisplayName: w.DisplayName,
		Country:     w.Country,
		Followers:   w.Followers.Total,
	}
}
