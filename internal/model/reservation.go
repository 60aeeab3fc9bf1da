package model

import "time"

// Reservation is one claimed cell of the board.  A reservation belongs to
// a single program column and covers either one 30-minute slot or, for
// merged programs, a 60-minute span starting at an even slot.
//
// Fields:
//  ID            – primary key assigned by the store.
//  Row           – base row of the grid cell.  Recomputed from
//                  EffectiveTime and Program whenever reservations are
//                  loaded; the stored value only backs the (row, col)
//                  uniqueness constraint.
//  Col           – ordinal of the program in the catalog.
//  Program       – program name.
//  Name          – display name of the person who reserved.
//  People        – party size (1–4).
//  EffectiveTime – time range label, e.g. "09:00 ~ 09:30".
//  CreatedAt     – creation timestamp.
type Reservation struct {
	ID            uint64    `json:"id"`             // reservations.id
	Row           int       `json:"row"`            // reservations.row_idx
	Col           int       `json:"col"`            // reservations.col
	Program       string    `json:"program"`        // reservations.program
	Name          string    `json:"name"`           // reservations.name
	People        int       `json:"people"`         // reservations.people
	EffectiveTime string    `json:"effective_time"` // reservations.effective_time
	CreatedAt     time.Time `json:"created_at"`     // reservations.created_at
}
