package schema

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ColumnPath", func() {
	var (
		s                 *Schema
		items, customers  *Table
		cust, name, odate *Column
	)

	BeforeEach(func() {
		s = New("paths", logger)
		customers, _ = s.CreateTable("Customers")
		name, _ = s.CreateColumn("Name", customers, s.Primitive(StringTable))
		items, _ = s.CreateTable("Items")
		cust, _ = s.CreateColumn("Customer", items, customers)
		odate, _ = s.CreateColumn("Order Date", items, s.Primitive(TimeTable))

		id := customers.Add()
		name.SetValue(id, "A")
		id = items.Add()
		cust.SetValue(id, int64(0))
		id = items.Add()
		cust.SetValue(id, "garbage")
	})

	It("should chain columns", func() {
		p, err := NewColumnPath(cust, name)
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Input()).To(Equal(items))
		Expect(p.Output()).To(Equal(s.Primitive(StringTable)))
		Expect(p.String()).To(Equal("Customer.Name"))
		Expect(p.Value(0)).To(Equal("A"))
		Expect(p.Value(1)).To(BeNil())
		Expect(p.Value(7)).To(BeNil())

		_, err = NewColumnPath(name, cust)
		Expect(HasCode(err, DefinitionError)).To(BeTrue())
		_, err = NewColumnPath()
		Expect(HasCode(err, DefinitionError)).To(BeTrue())
	})

	It("should parse dotted paths", func() {
		p, err := s.ParsePath(items, "Customer.Name")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Columns()).To(Equal([]*Column{cust, name}))

		p, err = s.ParsePath(items, "$.Customer")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Columns()).To(Equal([]*Column{cust}))

		p, err = s.ParsePath(items, "['Order Date']")
		Expect(err).NotTo(HaveOccurred())
		Expect(p.Columns()).To(Equal([]*Column{odate}))
	})

	It("should reject invalid paths", func() {
		_, err := s.ParsePath(items, "Customer.Nope")
		Expect(HasCode(err, NotFoundError)).To(BeTrue())
		_, err = s.ParsePath(items, "Customer.Name.More")
		Expect(HasCode(err, NotFoundError)).To(BeTrue())
		_, err = s.ParsePath(items, "Customer[*]")
		Expect(err).To(HaveOccurred())
	})

	It("should collect distinct columns", func() {
		p1, _ := NewColumnPath(cust, name)
		p2 := PathOf(cust)
		Expect(ColumnsOf([]*ColumnPath{p1, p2})).To(Equal([]*Column{cust, name}))
	})
})
