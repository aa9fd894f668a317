package stats

// Chart names a statistics series shown on the dashboard.
type Chart string

const (
	VehicleCounts Chart = "vehicleCounts"
	DailyCounts   Chart = "dailyCounts"
	WeeklyCounts  Chart = "weeklyCounts"
	AverageSpeed  Chart = "averageSpeed"
	DailySpeed    Chart = "dailySpeed"
	WeeklySpeed   Chart = "weeklySpeed"
)

// Charts lists every chart in display order.
var Charts = []Chart{VehicleCounts, DailyCounts, WeeklyCounts, AverageSpeed, DailySpeed, WeeklySpeed}

// VehicleClasses are the labels of the per-class count chart.
var VehicleClasses = []string{"Bike", "Car", "Pickup", "Taxi", "Bus", "Truck", "Trailer"}

type chartDef struct {
	record    string
	pcuRecord string
	labels    []string
	size      int
}

var chartDefs = map[Chart]chartDef{
	VehicleCounts: {record: "vehicle_counts", pcuRecord: "vehicle_pcu", labels: VehicleClasses, size: 7},
	DailyCounts:   {record: "daily_vehicle_count", pcuRecord: "daily_vehicle_pcu", labels: []string{"Total"}, size: 24},
	WeeklyCounts:  {record: "weekly_vehicle_count", pcuRecord: "weekly_vehicle_pcu", labels: []string{"Total"}, size: 7},
	AverageSpeed:  {record: "average_speed", labels: []string{"Speed"}, size: 1},
	DailySpeed:    {record: "daily_average_speed", labels: []string{"Speed"}, size: 24},
	WeeklySpeed:   {record: "weekly_average_speed", labels: []string{"Speed"}, size: 7},
}

// Record returns the store record holding c. Count charts switch to their
// PCU-weighted record when pcu is set; speed charts have none.
func (c Chart) Record(pcu bool) string {
	def, ok := chartDefs[c]
	if !ok {
		return ""
	}
	if pcu && def.pcuRecord != "" {
		return def.pcuRecord
	}
	return def.record
}

// Default returns the all-zero series shown while c cannot be fetched.
func (c Chart) Default() Series {
	def, ok := chartDefs[c]
	if !ok {
		return Series{Labels: []string{}, Quantity: []float64{}}
	}
	return Series{Labels: append([]string(nil), def.labels...), Quantity: zeros(def.size)}
}

// Valid reports whether c is a known chart.
func (c Chart) Valid() bool {
	_, ok := chartDefs[c]
	return ok
}
