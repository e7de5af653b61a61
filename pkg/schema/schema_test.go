package schema

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Schema", func() {
	var s *Schema

	BeforeEach(func() {
		s = New("test", logger)
	})

	It("should create the primitive tables", func() {
		Expect(s.Tables()).To(HaveLen(6))
		for _, n := range []string{ObjectTable, IntegerTable, DoubleTable, StringTable, DecimalTable, TimeTable} {
			t := s.Primitive(n)
			Expect(t).NotTo(BeNil())
			Expect(t.IsPrimitive()).To(BeTrue())
		}
	})

	It("should create and delete tables and columns", func() {
		t, err := s.CreateTable("T")
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Table("T")).To(Equal(t))
		Expect(t.Kind()).To(Equal(PlainTable))

		_, err = s.CreateTable("T")
		Expect(err).To(HaveOccurred())
		Expect(HasCode(err, DefinitionError)).To(BeTrue())

		a, err := s.CreateColumn("A", t, s.Primitive(DoubleTable))
		Expect(err).NotTo(HaveOccurred())
		Expect(a.Input()).To(Equal(t))
		Expect(a.Output()).To(Equal(s.Primitive(DoubleTable)))
		Expect(t.Column("A")).To(Equal(a))
		Expect(a.String()).To(Equal("T.A"))

		o, err := s.CreateColumn("O", t, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(o.Output()).To(Equal(s.Primitive(ObjectTable)))

		_, err = s.CreateColumn("A", t, nil)
		Expect(HasCode(err, DefinitionError)).To(BeTrue())

		Expect(s.DeleteColumn(o)).To(Succeed())
		Expect(t.Columns()).To(HaveLen(1))
		Expect(HasCode(s.DeleteColumn(o), NotFoundError)).To(BeTrue())

		Expect(s.DeleteTable(t)).To(Succeed())
		Expect(s.Tables()).To(HaveLen(6))
		Expect(s.Columns()).To(BeEmpty())
		Expect(s.Table("T")).To(BeNil())
	})

	It("should delete the columns pointing to a deleted table", func() {
		t1, _ := s.CreateTable("T1")
		t2, _ := s.CreateTable("T2")
		_, err := s.CreateColumn("Ref", t1, t2)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.CreateColumn("Data", t1, nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(s.DeleteTable(t2)).To(Succeed())
		Expect(s.Columns()).To(HaveLen(1))
		Expect(t1.Column("Ref")).To(BeNil())
		Expect(t1.Column("Data")).NotTo(BeNil())
	})

	It("should refuse to modify primitive tables", func() {
		_, err := s.CreateColumn("X", s.Primitive(DoubleTable), nil)
		Expect(HasCode(err, DefinitionError)).To(BeTrue())
		Expect(HasCode(s.DeleteTable(s.Primitive(StringTable)), DefinitionError)).To(BeTrue())
	})

	It("should advance the clock on writes and definition changes", func() {
		t, _ := s.CreateTable("T")
		a, _ := s.CreateColumn("A", t, nil)
		now := s.Now()

		id := t.Add()
		a.SetValue(id, "x")
		Expect(a.ChangedAt()).To(BeNumerically(">", now))
		Expect(a.IsChanged()).To(BeTrue())

		Expect(a.SetCalcColumns(func([]any) (any, error) { return nil, nil })).To(Succeed())
		Expect(a.DefinitionChangedAt()).To(BeNumerically(">", a.ChangedAt()))
	})
})
