package dedupe

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	ctx := context.Background()

	Convey("Given an unbounded deduper", t, func() {
		d := NewInMemoryDeduper()

		Convey("When recording a new symbol", func() {
			seen := d.SeenAndRecord(ctx, "TCS.NS")

			Convey("Then it is not yet seen", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And recording it again reports seen", func() {
				So(d.SeenAndRecord(ctx, "TCS.NS"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When recording distinct symbols", func() {
			So(d.SeenAndRecord(ctx, "TCS.NS"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "INFY.NS"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "500325.BO"), ShouldBeFalse)

			Convey("Then all are tracked", func() {
				So(d.Size(), ShouldEqual, 3)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := NewInMemoryDeduper(WithMaxSize(2))

		Convey("When exceeding the bound", func() {
			So(d.SeenAndRecord(ctx, "A.NS"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "B.NS"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "C.NS"), ShouldBeFalse)

			Convey("Then the oldest entry is evicted", func() {
				So(d.Size(), ShouldEqual, 2)
				So(d.SeenAndRecord(ctx, "A.NS"), ShouldBeFalse) // evicted, so new again
			})
		})
	})
}
