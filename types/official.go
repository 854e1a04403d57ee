package types

import "time"

// Official is a seat on the barangay council printed on certificate letterheads.
// Officials are seeded once and edited in place; they are never deleted.
type Official struct {
	// ID is the unique identifier of the seat.
	ID int `json:"id" db:"id"`

	// Position is the seat name, e.g. "Punong Barangay" or "Kagawad".
	Position string `json:"position" db:"position"`

	// Name is the full name of the current holder.
	Name string `json:"name" db:"name"`

	// Title is an optional honorific printed before the name ("Hon.").
	Title *string `json:"title" db:"title"`

	// Committee is the committee chaired by a kagawad, if any.
	Committee *string `json:"committee" db:"committee"`

	// PositionOrder fixes the display order on certificates. Templates look
	// seats up by this value, so it must stay stable per seat.
	PositionOrder int `json:"position_order" db:"position_order"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Letterhead seats referenced by certificate templates.
const (
	OrderPunongBarangay = 1
	OrderSecretary      = 10
	OrderTreasurer      = 11
)
