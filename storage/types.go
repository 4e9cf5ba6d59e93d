package storage

// Record is one waste-transfer transaction. SlipNo is the natural key: a
// plain insert never overwrites an existing slip, only the reconciliation
// path may update on conflict.
type Record struct {
	ID        int64
	SlipNo    string
	Date      string
	WasteType string
	Amount    float64
	Carrier   string
	VehicleNo string
	Processor string
	Note1     string
	Note2     string
	Category  string
	Supplier  string
	Status    string
}

// Schedule is a calendar entry.
type Schedule struct {
	ID      int64
	Date    string
	Content string
	Status  string
}

// LiquidLine is one team's monthly liquid-waste intake line.
type LiquidLine struct {
	YearMonth     string
	DischargeDate string
	ReceiveDate   string
	WasteType     string
	Content       string
	Team          string
	Discharger    string
	QuantityEA    int
	AmountKG      float64
}

// MasterData holds the distinct values used to populate entry forms.
type MasterData struct {
	WasteTypes []string
	Processors []string
	Vehicles   []string
}
