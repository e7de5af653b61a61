package schema

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/dcolumn/internal/testutils"
)

var _ = Describe("Table", func() {
	var (
		s    *Schema
		t    *Table
		a, b *Column
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = New("test", logger)
		t, _ = s.CreateTable("T")
		a, _ = s.CreateColumn("A", t, s.Primitive(IntegerTable))
		b, _ = s.CreateColumn("B", t, s.Primitive(StringTable))
	})

	It("should find records type-strictly", func() {
		fill(t, []*Column{a, b}, testutils.Rows{
			{int64(5), "x"},
			{int64(10), "y"},
		})

		id, ok := t.Find([]any{int64(5)}, []*Column{a}, false)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(0)))

		_, ok = t.Find([]any{5.0}, []*Column{a}, false)
		Expect(ok).To(BeFalse())

		id, ok = t.Find([]any{int64(10), "y"}, []*Column{a, b}, false)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(1)))

		_, ok = t.Find([]any{int64(10), "x"}, []*Column{a, b}, false)
		Expect(ok).To(BeFalse())
	})

	It("should insert missing records", func() {
		id, ok := t.Find([]any{int64(7), "z"}, []*Column{a, b}, true)
		Expect(ok).To(BeTrue())
		Expect(id).To(Equal(int64(0)))
		Expect(t.Length()).To(Equal(int64(1)))
		Expect(a.Value(id)).To(Equal(int64(7)))
		Expect(b.Value(id)).To(Equal("z"))
		Expect(t.AddedRange()).To(Equal(Range{Start: 0, End: 1}))
	})

	It("should return default values for unwritten rows", func() {
		a.SetDefaultValue(int64(-1))
		t.AddN(2)
		Expect(a.Value(0)).To(Equal(int64(-1)))
		Expect(a.Value(100)).To(Equal(int64(-1)))
	})

	It("should track added and removed ranges", func() {
		Expect(t.AddN(5)).To(Equal(Range{Start: 0, End: 5}))
		Expect(t.AddedRange()).To(Equal(Range{Start: 0, End: 5}))

		Expect(t.Remove(1)).To(Equal(Range{Start: 0, End: 1}))
		Expect(t.RemovedRange()).To(Equal(Range{Start: 0, End: 1}))
		Expect(t.Length()).To(Equal(int64(4)))

		t.Remove(2)
		Expect(t.RemovedRange()).To(Equal(Range{Start: 0, End: 3}))
		Expect(t.AddedRange()).To(Equal(Range{Start: 3, End: 5}))

		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(t.RemovedRange()).To(Equal(Range{Start: 3, End: 3}))
		Expect(t.AddedRange().IsEmpty()).To(BeTrue())

		t.Remove(2)
		Expect(t.RemovedRange()).To(Equal(Range{Start: 3, End: 5}))
		Expect(t.Length()).To(Equal(int64(0)))

		// nothing left to remove
		Expect(t.Remove(3).Len()).To(Equal(int64(0)))
	})

	It("should remove rows below a threshold", func() {
		fill(t, []*Column{a}, testutils.Rows{{int64(1)}, {int64(2)}, {int64(8)}, {int64(3)}})
		Expect(t.RemoveBelow(a, int64(5))).To(Equal(int64(2)))
		Expect(t.IDRange()).To(Equal(Range{Start: 2, End: 4}))

		// type mismatch stops the scan
		Expect(t.RemoveBelow(a, 100.0)).To(Equal(int64(0)))
		Expect(t.RemoveBelow(b, "z")).To(Equal(int64(0)))
	})

	It("should not find removed records", func() {
		fill(t, []*Column{a}, testutils.Rows{{int64(1)}, {int64(2)}})
		t.Remove(1)
		_, ok := t.Find([]any{int64(1)}, []*Column{a}, false)
		Expect(ok).To(BeFalse())
	})

	Context("with a where predicate", func() {
		It("should admit records", func() {
			Expect(t.SetWhereFormula("A > 3")).To(Succeed())
			Expect(t.IsWhereTrue([]any{int64(5)}, []*Column{a})).To(BeTrue())
			Expect(t.IsWhereTrue([]any{int64(1)}, []*Column{a})).To(BeFalse())
			Expect(t.ExecutionErrors()).To(BeEmpty())
		})

		It("should admit every record without a predicate", func() {
			Expect(t.SetWhere(nil)).To(Succeed())
			Expect(t.IsWhereTrue([]any{int64(1)}, []*Column{a})).To(BeTrue())
		})

		It("should fail on parameters that are not key columns", func() {
			Expect(t.SetWhereFormula("B == \"x\"")).To(Succeed())
			Expect(t.IsWhereTrue([]any{int64(5)}, []*Column{a})).To(BeFalse())
			Expect(t.ExecutionErrors()).To(HaveLen(1))
			Expect(t.ExecutionErrors()[0].Code).To(Equal(ExecutionError))
		})

		It("should fail on non-boolean results", func() {
			Expect(t.SetWhereFormula("A + 1")).To(Succeed())
			Expect(t.IsWhereTrue([]any{int64(5)}, []*Column{a})).To(BeFalse())
			Expect(t.ExecutionErrors()).To(HaveLen(1))
		})

		It("should reject paths of other tables", func() {
			u, _ := s.CreateTable("U")
			c, _ := s.CreateColumn("C", u, nil)
			err := t.SetWhere(NewColumnExpression(func([]any) (any, error) { return true, nil }, c))
			Expect(HasCode(err, DefinitionError)).To(BeTrue())
		})

		It("should bump the definition tick", func() {
			before := t.DefinitionChangedAt()
			Expect(t.SetWhereFormula("A > 0")).To(Succeed())
			Expect(t.DefinitionChangedAt()).To(BeNumerically(">", before))
		})
	})
})
