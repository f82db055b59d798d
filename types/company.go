package types

// Company identifies one instrument in the simulation universe.
type Company struct {
	ID     int    `json:"id"`
	Symbol string `json:"symbol"`
}
