package model

// Stats aggregates machine counts per status. UsageRate is the percentage
// of machines in use, rounded to one decimal place, 0 when there are no
// machines at all.
type Stats struct {
	TotalMachines      int64   `json:"total_machines"`
	AvailableMachines  int64   `json:"available_machines"`
	InUseMachines      int64   `json:"in_use_machines"`
	OutOfOrderMachines int64   `json:"out_of_order_machines"`
	UsageRate          float64 `json:"usage_rate"`
}
