package domain

import (
	"encoding/json"
	"fmt"
)

// Status is the age-based health tier of a backup artifact. Values are
// totally ordered, ascending in severity; fleet-wide aggregation always
// takes the maximum (worst).
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusAttention
	StatusSevere
	StatusCritical
	StatusFailure
)

var statusNames = [...]string{
	StatusOK:        "ok",
	StatusWarning:   "warning",
	StatusAttention: "attention",
	StatusSevere:    "severe",
	StatusCritical:  "critical",
	StatusFailure:   "failure",
}

func (s Status) String() string {
	if s < StatusOK || int(s) >= len(statusNames) {
		return fmt.Sprintf("status(%d)", int(s))
	}
	return statusNames[s]
}

func (s Status) MarshalJSON() ([]byte, error) {
	if s < StatusOK || int(s) >= len(statusNames) {
		return nil, fmt.Errorf("unknown status value %d", int(s))
	}
	return json.Marshal(statusNames[s])
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for i, n := range statusNames {
		if n == name {
			*s = Status(i)
			return nil
		}
	}
	return fmt.Errorf("unknown status %q", name)
}

// Worst returns the more severe of the two statuses.
func (s Status) Worst(other Status) Status {
	if other > s {
		return other
	}
	return s
}

// BackupEntry is one backup artifact as listed in a device's backup.json:
// a free-form type tag, the production timestamp as emitted by the device,
// and the declared maximum age in seconds.
type BackupEntry struct {
	Type       string `json:"type"`
	Date       string `json:"date"`
	MaxAge     int64  `json:"max_age"`
	BackupFile string `json:"backup_file,omitempty"`
}

// BackupDocument is the per-hostname backup.json payload.
type BackupDocument struct {
	BackupList []BackupEntry `json:"backup_list"`
}

// BackupStatusRecord is the derived per-device backup health. HasBackup
// distinguishes the "no backup found" sentinel from a device whose
// artifacts classified as FAILURE. ValidSchema is nil when no template
// applies, true/false once validated.
//
// Invariant: WorstStatus equals the maximum of TypeStatuses when that map
// is non-empty; a sentinel record pins WorstStatus to StatusFailure so
// fleet-wide sorting still surfaces the device.
type BackupStatusRecord struct {
	DeviceClass  string            `json:"device_class"`
	Vendor       string            `json:"vendor"`
	HasBackup    bool              `json:"has_backup"`
	Schema       bool              `json:"schema"`
	ValidSchema  *bool             `json:"valid_schema"`
	TypeStatuses map[string]Status `json:"type_statuses"`
	WorstStatus  Status            `json:"worst_status"`
}

// ComplianceRecord carries a device's raw validation and operational-status
// documents as collected from the object store. The content is opaque to
// this pipeline.
type ComplianceRecord struct {
	DeviceClass           string          `json:"device_class"`
	Vendor                string          `json:"vendor"`
	ValidationData        json.RawMessage `json:"validation_data,omitempty"`
	OperationalStatusData json.RawMessage `json:"operational_status_data,omitempty"`
}
