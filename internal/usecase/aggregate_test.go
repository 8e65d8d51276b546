package usecase

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/inetops/fleetwatch/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Warnf(string, ...interface{})  {}

func newTestAggregator(now time.Time) *Aggregator {
	agg := NewAggregator(nopLogger{})
	agg.now = func() time.Time { return now }
	return agg
}

func entryAgedBy(entryType string, now time.Time, age time.Duration, maxAge int64) domain.BackupEntry {
	return domain.BackupEntry{
		Type:   entryType,
		Date:   now.Add(-age).Format(time.RFC3339),
		MaxAge: maxAge,
	}
}

func TestAggregator(t *testing.T) {
	Convey("Given a backup aggregator", t, func() {
		now := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
		agg := newTestAggregator(now)

		Convey("When the device has no backup document", func() {
			record := agg.Aggregate("r2", "router", "cisco", nil, nil, nil)

			Convey("It should return the no-backup sentinel", func() {
				So(record.HasBackup, ShouldBeFalse)
				So(record.TypeStatuses, ShouldBeEmpty)
				So(record.WorstStatus, ShouldEqual, domain.StatusFailure)
				So(record.Schema, ShouldBeFalse)
				So(record.ValidSchema, ShouldBeNil)
				So(record.DeviceClass, ShouldEqual, "router")
				So(record.Vendor, ShouldEqual, "cisco")
			})
		})

		Convey("When the backup document has an empty artifact list", func() {
			doc := &domain.BackupDocument{}
			record := agg.Aggregate("r2", "router", "cisco", []byte(`{"backup_list":[]}`), doc, nil)

			Convey("It should return the no-backup sentinel", func() {
				So(record.HasBackup, ShouldBeFalse)
				So(record.WorstStatus, ShouldEqual, domain.StatusFailure)
			})
		})

		Convey("When every artifact has aged past the last tier", func() {
			doc := &domain.BackupDocument{BackupList: []domain.BackupEntry{
				entryAgedBy("config", now, 10*time.Hour, 600),
			}}
			record := agg.Aggregate("r5", "router", "cisco", nil, doc, nil)

			Convey("It should be a classified FAILURE, distinct from the sentinel", func() {
				So(record.HasBackup, ShouldBeTrue)
				So(record.TypeStatuses["config"], ShouldEqual, domain.StatusFailure)
				So(record.WorstStatus, ShouldEqual, domain.StatusFailure)
			})
		})

		Convey("When two artifacts of the same type disagree", func() {
			doc := &domain.BackupDocument{BackupList: []domain.BackupEntry{
				entryAgedBy("config", now, time.Minute, 600),
				entryAgedBy("config", now, 10*time.Hour, 600),
			}}
			record := agg.Aggregate("r6", "router", "cisco", nil, doc, nil)

			Convey("The worse one should win for the type", func() {
				So(record.TypeStatuses["config"], ShouldEqual, domain.StatusFailure)
				So(record.WorstStatus, ShouldEqual, domain.StatusFailure)
			})
		})

		Convey("When one artifact has a malformed timestamp", func() {
			doc := &domain.BackupDocument{BackupList: []domain.BackupEntry{
				{Type: "config", Date: "not-a-date", MaxAge: 600},
				entryAgedBy("state", now, time.Minute, 600),
			}}
			record := agg.Aggregate("r7", "router", "cisco", nil, doc, nil)

			Convey("Only that artifact should degrade to FAILURE", func() {
				So(record.TypeStatuses["config"], ShouldEqual, domain.StatusFailure)
				So(record.TypeStatuses["state"], ShouldEqual, domain.StatusOK)
				So(record.WorstStatus, ShouldEqual, domain.StatusFailure)
			})
		})

		Convey("When one artifact declares a non-positive max age", func() {
			doc := &domain.BackupDocument{BackupList: []domain.BackupEntry{
				{Type: "config", Date: now.Format(time.RFC3339), MaxAge: 0},
				entryAgedBy("state", now, time.Minute, 600),
			}}
			record := agg.Aggregate("r8", "router", "cisco", nil, doc, nil)

			Convey("Only that artifact should degrade to FAILURE", func() {
				So(record.TypeStatuses["config"], ShouldEqual, domain.StatusFailure)
				So(record.TypeStatuses["state"], ShouldEqual, domain.StatusOK)
			})
		})

		Convey("When no template is registered for the class and vendor", func() {
			// One artifact produced 3600s ago with a declared max age of
			// 1800s: age factor 2.0, tier ATTENTION.
			doc := &domain.BackupDocument{BackupList: []domain.BackupEntry{
				entryAgedBy("config", now, 3600*time.Second, 1800),
			}}
			record := agg.Aggregate("r1", "switch", "juniper", []byte(`{"backup_list":[]}`), doc, nil)

			Convey("It should classify without schema information", func() {
				So(record.HasBackup, ShouldBeTrue)
				So(record.Schema, ShouldBeFalse)
				So(record.ValidSchema, ShouldBeNil)
				So(record.TypeStatuses["config"], ShouldEqual, domain.StatusAttention)
				So(record.WorstStatus, ShouldEqual, domain.StatusAttention)
			})
		})

		Convey("When a template rejects the document", func() {
			rejectAll, err := compileTemplate([]byte(`{"not": {}}`))
			So(err, ShouldBeNil)

			raw := []byte(`{"backup_list":[{"type":"config","date":"x","max_age":600}]}`)
			doc := &domain.BackupDocument{BackupList: []domain.BackupEntry{
				entryAgedBy("config", now, time.Minute, 600),
				entryAgedBy("state", now, 900*time.Second, 600),
			}}

			withTemplate := agg.Aggregate("r9", "router", "cisco", raw, doc, rejectAll)
			withoutTemplate := agg.Aggregate("r9", "router", "cisco", raw, doc, nil)

			Convey("Validation should be recorded as failed", func() {
				So(withTemplate.Schema, ShouldBeTrue)
				So(withTemplate.ValidSchema, ShouldNotBeNil)
				So(*withTemplate.ValidSchema, ShouldBeFalse)
			})

			Convey("Age statuses should be unaffected by the rejection", func() {
				So(withTemplate.TypeStatuses, ShouldResemble, withoutTemplate.TypeStatuses)
				So(withTemplate.WorstStatus, ShouldEqual, withoutTemplate.WorstStatus)
			})
		})

		Convey("When a template accepts the document", func() {
			tmpl, err := compileTemplate([]byte(`{"type":"object","required":["backup_list"]}`))
			So(err, ShouldBeNil)

			raw := []byte(`{"backup_list":[{"type":"config","date":"2026-08-20T11:59:00Z","max_age":600}]}`)
			doc := &domain.BackupDocument{BackupList: []domain.BackupEntry{
				entryAgedBy("config", now, time.Minute, 600),
			}}
			record := agg.Aggregate("r3", "router", "cisco", raw, doc, tmpl)

			Convey("Validation should be recorded as passed", func() {
				So(record.Schema, ShouldBeTrue)
				So(record.ValidSchema, ShouldNotBeNil)
				So(*record.ValidSchema, ShouldBeTrue)
				So(record.TypeStatuses["config"], ShouldEqual, domain.StatusOK)
			})
		})

		Convey("For randomly generated artifact sets", func() {
			rng := rand.New(rand.NewSource(42))

			Convey("The worst status should always equal the per-type maximum", func() {
				for i := 0; i < 200; i++ {
					n := rng.Intn(6) + 1
					entries := make([]domain.BackupEntry, 0, n)
					for j := 0; j < n; j++ {
						age := time.Duration(rng.Float64() * 7 * 600 * float64(time.Second))
						entries = append(entries, entryAgedBy(
							fmt.Sprintf("type-%d", rng.Intn(4)), now, age, 600))
					}

					record := agg.Aggregate("host", "router", "cisco", nil,
						&domain.BackupDocument{BackupList: entries}, nil)

					So(record.TypeStatuses, ShouldNotBeEmpty)
					want := domain.StatusOK
					for _, status := range record.TypeStatuses {
						want = want.Worst(status)
					}
					So(record.WorstStatus, ShouldEqual, want)
				}
			})
		})
	})
}
