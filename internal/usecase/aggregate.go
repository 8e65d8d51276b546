package usecase

import (
	"time"

	"github.com/inetops/fleetwatch/internal/domain"
)

type Logger interface {
	Infof(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Warnf(template string, args ...interface{})
}

// Aggregator folds the backup artifacts discovered for one device into a
// single BackupStatusRecord. It performs no I/O; the backup sync job feeds
// it everything it needs.
type Aggregator struct {
	now    func() time.Time
	logger Logger
}

func NewAggregator(logger Logger) *Aggregator {
	return &Aggregator{
		now:    time.Now,
		logger: logger,
	}
}

// Aggregate builds the status record for one device. Schema validation and
// age classification are independent axes: a rejected or missing template
// never changes an artifact's age-based status. Malformed timestamps and
// max ages degrade to FAILURE for that single artifact type; they never
// abort the device.
func (a *Aggregator) Aggregate(
	hostname, deviceClass, vendor string,
	raw []byte,
	doc *domain.BackupDocument,
	tmpl *CompiledTemplate,
) domain.BackupStatusRecord {
	record := domain.BackupStatusRecord{
		DeviceClass:  deviceClass,
		Vendor:       vendor,
		TypeStatuses: map[string]domain.Status{},
	}

	if doc == nil || len(doc.BackupList) == 0 {
		// No usable artifacts: the sentinel record. HasBackup stays
		// false, which is what distinguishes it from a classified
		// FAILURE downstream.
		record.WorstStatus = domain.StatusFailure
		return record
	}

	record.HasBackup = true

	if tmpl != nil {
		record.Schema = true
		valid := true
		if err := tmpl.Validate(raw); err != nil {
			valid = false
			a.logger.Warnf("[%s] Backup document failed schema validation: %v", hostname, err)
		}
		record.ValidSchema = &valid
	}

	for _, entry := range doc.BackupList {
		status := a.classifyEntry(hostname, entry)
		if current, ok := record.TypeStatuses[entry.Type]; ok {
			status = current.Worst(status)
		}
		record.TypeStatuses[entry.Type] = status
	}

	record.WorstStatus = domain.StatusOK
	for _, status := range record.TypeStatuses {
		record.WorstStatus = record.WorstStatus.Worst(status)
	}

	return record
}

func (a *Aggregator) classifyEntry(hostname string, entry domain.BackupEntry) domain.Status {
	produced, err := ParseBackupTime(entry.Date)
	if err != nil {
		a.logger.Warnf("[%s] Artifact %q: %v", hostname, entry.Type, err)
		return domain.StatusFailure
	}

	status, err := ClassifyAge(a.now().Sub(produced), entry.MaxAge)
	if err != nil {
		a.logger.Warnf("[%s] Artifact %q: %v", hostname, entry.Type, err)
		return domain.StatusFailure
	}

	return status
}
