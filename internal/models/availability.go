package models

// DaySlot is one entry of a month availability view. Days are 1-based and
// returned in ascending order; the ordering is part of the contract.
type DaySlot struct {
	Day       int  `json:"day"`
	Available bool `json:"available"`
}

// HourSlot is one entry of a day availability view. Only hours inside the
// business window are ever produced.
type HourSlot struct {
	Hour      int  `json:"hour"`
	Available bool `json:"available"`
}
