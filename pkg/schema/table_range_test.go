package schema

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/l7mp/dcolumn/internal/testutils"
)

var _ = Describe("RangeTable", func() {
	var (
		s       *Schema
		items   *Table
		buckets *Table
		value   *Column
		ctx     context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = New("ranges", logger)
		var err error
		buckets, err = s.CreateRangeTable("Buckets", RangeSpec{Origin: int64(0), Period: int64(10), Count: 2})
		Expect(err).NotTo(HaveOccurred())

		items, _ = s.CreateTable("Items")
		value, _ = s.CreateColumn("Value", items, s.Primitive(IntegerTable))
		fill(items, []*Column{value}, testutils.Rows{{int64(5)}, {int64(15)}, {int64(25)}})
	})

	It("should create the interval column", func() {
		Expect(buckets.Kind()).To(Equal(RangeTable))
		Expect(buckets.Interval()).NotTo(BeNil())
		Expect(buckets.Interval().Name()).To(Equal(IntervalColumn))
		Expect(buckets.Interval().Output()).To(Equal(s.Primitive(IntegerTable)))
		Expect(HasCode(s.DeleteColumn(buckets.Interval()), DefinitionError)).To(BeTrue())
	})

	It("should populate the intervals on evaluation", func() {
		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(buckets.Length()).To(Equal(int64(2)))
		Expect(values(buckets.Interval())).To(Equal([]any{int64(0), int64(10)}))
	})

	It("should classify values into existing intervals", func() {
		c, _ := s.CreateColumn("Bucket", items, buckets)
		Expect(c.SetLinkColumns([]*Column{value}, nil)).To(Succeed())
		Expect(c.Definition().Kind()).To(Equal(RangeKind))

		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(c.Errors()).To(BeEmpty())
		Expect(values(c)).To(Equal([]any{int64(0), int64(1), nil}))
		Expect(buckets.Length()).To(Equal(int64(2)))
	})

	It("should append missing intervals in project mode", func() {
		c, _ := s.CreateColumn("Bucket", items, buckets)
		Expect(c.SetProjectColumns([]*Column{value}, nil)).To(Succeed())
		Expect(c.Definition().String()).To(Equal("range-project(Value)"))

		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(values(c)).To(Equal([]any{int64(0), int64(1), int64(2)}))
		Expect(buckets.Length()).To(Equal(int64(3)))
		Expect(buckets.Interval().Value(2)).To(Equal(int64(20)))
	})

	It("should refuse to grow beyond the limit", func() {
		c, _ := s.CreateColumn("Bucket", items, buckets)
		Expect(c.SetProjectColumns([]*Column{value}, nil)).To(Succeed())
		value.SetValue(1, int64(1<<40))

		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(c.Errors()).To(HaveLen(1))
		Expect(c.Errors()[0].Code).To(Equal(EvaluationError))
		Expect(values(c)).To(Equal([]any{int64(0), nil, nil}))
		Expect(buckets.Length()).To(Equal(int64(2)))

		_, ok := buckets.FindRange(10*MaxRangeGrowth, false)
		Expect(ok).To(BeFalse())
		Expect(buckets.ExecutionErrors()).To(BeEmpty())
	})

	It("should not find times beyond the representable durations", func() {
		origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		days, err := s.CreateRangeTable("Days", RangeSpec{Origin: origin, Period: 24 * time.Hour, Count: 1})
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Evaluate(ctx)).To(Succeed())

		id, ok := days.FindRange(origin.Add(time.Hour), false)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(0)))

		_, ok = days.FindRange(origin.AddDate(500, 0, 0), true)
		Expect(ok).To(BeFalse())
		Expect(days.Length()).To(Equal(int64(1)))
	})

	It("should not find values below the origin or of another type", func() {
		Expect(s.Evaluate(ctx)).To(Succeed())
		_, ok := buckets.FindRange(int64(-5), true)
		Expect(ok).To(BeFalse())
		_, ok = buckets.FindRange(5.0, true)
		Expect(ok).To(BeFalse())
		_, ok = buckets.FindRange(nil, true)
		Expect(ok).To(BeFalse())
		Expect(buckets.Length()).To(Equal(int64(2)))
	})

	It("should reject key columns and multiple paths", func() {
		c, _ := s.CreateColumn("Bucket", items, buckets)
		Expect(HasCode(c.SetLinkColumns([]*Column{value}, []*Column{buckets.Interval()}), DefinitionError)).To(BeTrue())
		Expect(HasCode(c.SetLinkColumns([]*Column{value, value}, nil), DefinitionError)).To(BeTrue())
	})

	It("should reject invalid specifications", func() {
		_, err := s.CreateRangeTable("Bad1", RangeSpec{Origin: int64(0), Period: 1.0})
		Expect(HasCode(err, DefinitionError)).To(BeTrue())
		_, err = s.CreateRangeTable("Bad2", RangeSpec{Origin: int64(0), Period: int64(0)})
		Expect(HasCode(err, DefinitionError)).To(BeTrue())
		_, err = s.CreateRangeTable("Bad3", RangeSpec{Origin: "a", Period: "b"})
		Expect(HasCode(err, DefinitionError)).To(BeTrue())
		_, err = s.CreateRangeTable("Buckets", RangeSpec{Origin: int64(0), Period: int64(1)})
		Expect(HasCode(err, DefinitionError)).To(BeTrue())
	})

	It("should classify floats, decimals and times", func() {
		f, err := s.CreateRangeTable("F", RangeSpec{Origin: 0.0, Period: 0.5})
		Expect(err).NotTo(HaveOccurred())
		id, ok := f.FindRange(1.2, true)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(2)))
		Expect(f.Interval().Value(2)).To(Equal(1.0))

		d, err := s.CreateRangeTable("D", RangeSpec{Origin: decimal.NewFromInt(100), Period: decimal.RequireFromString("0.25")})
		Expect(err).NotTo(HaveOccurred())
		id, ok = d.FindRange(decimal.RequireFromString("100.6"), true)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(2)))
		Expect(StrictEqual(d.Interval().Value(2), decimal.RequireFromString("100.5"))).To(BeTrue())

		origin := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		tt, err := s.CreateRangeTable("T", RangeSpec{Origin: origin, Period: time.Hour})
		Expect(err).NotTo(HaveOccurred())
		Expect(tt.Interval().Output()).To(Equal(s.Primitive(TimeTable)))
		id, ok = tt.FindRange(origin.Add(90*time.Minute), true)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(1)))
		Expect(StrictEqual(tt.Interval().Value(1), origin.Add(time.Hour))).To(BeTrue())

		_, ok = tt.FindRange(origin.Add(-time.Minute), false)
		Expect(ok).To(BeFalse())
	})
})
