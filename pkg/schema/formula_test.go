package schema

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/l7mp/dcolumn/internal/testutils"
)

var _ = Describe("Formula", func() {
	var (
		s                *Schema
		items, customers *Table
		price, qty, cust *Column
		ctx              context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		s = New("sales", logger)
		customers, _ = s.CreateTable("Customers")
		name, _ := s.CreateColumn("Name", customers, s.Primitive(StringTable))
		region, _ := s.CreateColumn("Region", customers, s.Primitive(StringTable))
		fill(customers, []*Column{name, region}, testutils.Rows{{"A", "eu"}, {"B", "us"}})

		items, _ = s.CreateTable("Items")
		price, _ = s.CreateColumn("Price", items, s.Primitive(DoubleTable))
		qty, _ = s.CreateColumn("Qty", items, s.Primitive(IntegerTable))
		cust, _ = s.CreateColumn("Customer", items, customers)
		fill(items, []*Column{price, qty, cust}, testutils.Rows{
			{2.5, int64(4), int64(1)},
			{1.5, int64(3), int64(0)},
		})
	})

	It("should evaluate arithmetic into the output kind", func() {
		amount, _ := s.CreateColumn("Amount", items, s.Primitive(DoubleTable))
		Expect(amount.SetFormula("Price * Qty")).To(Succeed())

		double, _ := s.CreateColumn("Double", items, s.Primitive(IntegerTable))
		Expect(double.SetFormula("Qty * 2")).To(Succeed())

		half, _ := s.CreateColumn("Half", items, s.Primitive(ObjectTable))
		Expect(half.SetFormula("Qty / 2")).To(Succeed())

		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(s.Errors()).To(BeEmpty())
		Expect(values(amount)).To(Equal([]any{10.0, 4.5}))
		Expect(values(double)).To(Equal([]any{int64(8), int64(6)}))
		Expect(values(half)).To(Equal([]any{int64(2), 1.5}))
	})

	It("should produce decimals", func() {
		d, _ := s.CreateColumn("D", items, s.Primitive(DecimalTable))
		Expect(d.SetFormula("Qty * 1.25")).To(Succeed())
		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(StrictEqual(d.Value(0), decimal.NewFromInt(5))).To(BeTrue())
		Expect(StrictEqual(d.Value(1), decimal.RequireFromString("3.75"))).To(BeTrue())
	})

	It("should follow column paths and call functions", func() {
		r, _ := s.CreateColumn("Region", items, s.Primitive(StringTable))
		Expect(r.SetFormula("upper(Customer.Region)")).To(Succeed())

		deps, _ := r.Dependencies()
		Expect(deps).To(HaveLen(2))

		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(values(r)).To(Equal([]any{"US", "EU"}))
	})

	It("should evaluate conditionals", func() {
		big, _ := s.CreateColumn("Big", items, s.Primitive(ObjectTable))
		Expect(big.SetFormula("Qty > 3 ? \"big\" : \"small\"")).To(Succeed())
		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(values(big)).To(Equal([]any{"big", "small"}))
	})

	It("should reject unknown columns and syntax errors", func() {
		c, _ := s.CreateColumn("X", items, nil)
		Expect(HasCode(c.SetFormula("Nope + 1"), NotFoundError)).To(BeTrue())
		Expect(HasCode(c.SetFormula("Price +"), DefinitionError)).To(BeTrue())
		Expect(HasCode(c.SetFormula("Customer + Customer.Region"), DefinitionError)).To(BeTrue())
		Expect(c.IsDerived()).To(BeFalse())
	})

	It("should record runtime failures", func() {
		c, _ := s.CreateColumn("X", items, nil)
		Expect(c.SetFormula("Price * \"abc\"")).To(Succeed())
		Expect(s.Evaluate(ctx)).To(Succeed())
		Expect(c.Errors()).To(HaveLen(1))
		Expect(c.Errors()[0].Code).To(Equal(EvaluationError))
	})
})
