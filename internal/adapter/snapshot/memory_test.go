package snapshot

import (
	"context"
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/inetops/fleetwatch/internal/domain"
)

func TestMemoryStore(t *testing.T) {
	Convey("Given an in-memory snapshot store", t, func() {
		ctx := context.Background()
		store := NewMemory()

		Convey("When reading a key that was never written", func() {
			_, err := store.Get(ctx, "inventory")

			Convey("It should return ErrSnapshotNotFound", func() {
				So(errors.Is(err, domain.ErrSnapshotNotFound), ShouldBeTrue)
			})
		})

		Convey("When writing and reading back a value", func() {
			So(store.Set(ctx, "inventory", []byte(`{"r1":{}}`)), ShouldBeNil)

			value, err := store.Get(ctx, "inventory")

			Convey("It should return the stored bytes", func() {
				So(err, ShouldBeNil)
				So(string(value), ShouldEqual, `{"r1":{}}`)
			})
		})

		Convey("When a caller mutates a returned or stored slice", func() {
			original := []byte(`{"r1":{}}`)
			So(store.Set(ctx, "inventory", original), ShouldBeNil)
			original[0] = 'X'

			first, err := store.Get(ctx, "inventory")
			So(err, ShouldBeNil)
			first[0] = 'Y'

			second, err := store.Get(ctx, "inventory")

			Convey("The stored value should be unaffected", func() {
				So(err, ShouldBeNil)
				So(string(second), ShouldEqual, `{"r1":{}}`)
			})
		})

		Convey("When overwriting a key", func() {
			So(store.Set(ctx, "inventory", []byte(`old`)), ShouldBeNil)
			So(store.Set(ctx, "inventory", []byte(`new`)), ShouldBeNil)

			value, err := store.Get(ctx, "inventory")

			Convey("Only the new value should remain", func() {
				So(err, ShouldBeNil)
				So(string(value), ShouldEqual, `new`)
			})
		})

		Convey("Close should be a no-op", func() {
			So(store.Close(), ShouldBeNil)
		})
	})
}
