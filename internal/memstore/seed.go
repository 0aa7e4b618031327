package memstore

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"

	"github.com/iliyamo/property-reservation/internal/model"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type seedRoom struct {
	model.Room
	IsActive *bool `json:"isActive"`
}

type seedFile struct {
	Rooms  []seedRoom    `json:"rooms"`
	Guests []model.Guest `json:"guests"`
}

// LoadSeed reads rooms and guests from a JSON document of the form
// {"rooms": [...], "guests": [...]}.  Rooms default to active.
func (s *Store) LoadSeed(r io.Reader) error {
	var f seedFile
	if err := json.NewDecoder(r).Decode(&f); err != nil {
		return fmt.Errorf("decode seed: %w", err)
	}
	for _, sr := range f.Rooms {
		if sr.ID == 0 || sr.PropertyID == 0 {
			return fmt.Errorf("seed room %q: id and propertyId are required", sr.RoomNumber)
		}
		room := sr.Room
		room.IsActive = sr.IsActive == nil || *sr.IsActive
		s.AddRoom(room)
	}
	for _, g := range f.Guests {
		if g.ID == 0 {
			return fmt.Errorf("seed guest %q: id is required", g.LastName)
		}
		s.AddGuest(g)
	}
	return nil
}
