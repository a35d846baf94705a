package entity

// RoomPatch is a partial room update, nil fields are left untouched.
type RoomPatch struct {
	Player1Name   *string
	Player2ID     *string
	Player2Name   *string
	CurrentPlayer *Mark
	Board         *Board
	Winner        *Winner
	Status        *Status
}

func (that RoomPatch) IsEmpty() bool {
	return that.Player1Name == nil &&
		that.Player2ID == nil &&
		that.Player2Name == nil &&
		that.CurrentPlayer == nil &&
		that.Board == nil &&
		that.Winner == nil &&
		that.Status == nil
}

// Apply copies every set field of the patch onto room.
func (that RoomPatch) Apply(room *Room) {
	if that.Player1Name != nil {
		room.Player1Name = *that.Player1Name
	}
	if that.Player2ID != nil {
		room.Player2ID = *that.Player2ID
	}
	if that.Player2Name != nil {
		room.Player2Name = *that.Player2Name
	}
	if that.CurrentPlayer != nil {
		room.CurrentPlayer = *that.CurrentPlayer
	}
	if that.Board != nil {
		room.Board = *that.Board
	}
	if that.Winner != nil {
		room.Winner = *that.Winner
	}
	if that.Status != nil {
		room.Status = *that.Status
	}
}

// Ptr returns a pointer to v, handy when building patches.
func Ptr[T any](v T) *T {
	return &v
}
