package entities

// BookingRequest selects one slot of a sitter. Either Date with clock times
// ("2025-09-15", "09:00", "12:00") or absolute RFC 3339 times in Start/End with Date empty.
type BookingRequest struct {
	SitterID string `json:"dogsitter_id"`
	DogID    string `json:"dog_id"`
	Date     string `json:"date,omitempty"`
	Start    string `json:"start_time"`
	End      string `json:"end_time"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type DogRequest struct {
	Name         string `json:"name"`
	Breed        string `json:"breed"`
	Age          int    `json:"age"`
	SpecialNeeds string `json:"special_needs"`
	PhotoURL     string `json:"photo_url"`
}
