package domain

import "context"

// Device is one inventory record, keyed by hostname. The inventory sync
// replaces devices wholesale; there are no partial updates.
type Device struct {
	Hostname       string `json:"hostname"`
	IP             string `json:"ip"`
	Vendor         string `json:"vendor"`
	DeviceClass    string `json:"device_class"`
	Country        string `json:"country"`
	Environment    string `json:"environment"`
	OS             string `json:"os,omitempty"`
	Version        string `json:"version,omitempty"`
	Partition      string `json:"partition,omitempty"`
	StatusName     string `json:"status_name,omitempty"`
	PID            string `json:"pid,omitempty"`
	SerialNumber   string `json:"serial_number,omitempty"`
	SupportProfile string `json:"support_profile,omitempty"`
	LastUpdate     string `json:"last_update,omitempty"`
	LDSupport      string `json:"ld_support,omitempty"`
	LDSWSupport    string `json:"ld_sw_support,omitempty"`
}

type InventorySource interface {
	FetchDevices(ctx context.Context) ([]Device, error)
}
