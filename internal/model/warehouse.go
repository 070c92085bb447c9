package model

// Warehouse is a stock-holding location.
type Warehouse struct {
	ID       int64  `json:"id" db:"id"`
	Name     string `json:"name" db:"name"`
	Location string `json:"location,omitempty" db:"location"`
}

// DefaultWarehouses are seeded into an empty database.
var DefaultWarehouses = []Warehouse{
	{Name: "Main Warehouse", Location: "Main Location"},
	{Name: "Warehouse B", Location: "Secondary Location"},
}
