package entity

// Player is the profile a browser is remembered by between connections.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	RoomID string `json:"room_id,omitempty"`
}
