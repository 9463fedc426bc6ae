package core

import "strings"

// CategoryID identifies one of the fixed spending categories.
type CategoryID string

const (
	CategoryFood             CategoryID = "alimentacion"
	CategoryHousing          CategoryID = "vivienda"
	CategoryTransport        CategoryID = "transporte"
	CategoryHealth           CategoryID = "salud"
	CategoryEducation        CategoryID = "educacion"
	CategoryPhoneInternet    CategoryID = "telefono_internet"
	CategoryFinancial        CategoryID = "financieros"
	CategoryInsurance        CategoryID = "seguros"
	CategoryLeisure          CategoryID = "ocio"
	CategoryFamily           CategoryID = "familia"
	CategoryPersonalBusiness CategoryID = "personal_empresa"
	CategoryTaxes            CategoryID = "impuestos"
	CategoryVehicleTaxes     CategoryID = "imp_vehiculos"
	CategoryBusinessSupplies CategoryID = "insumos_empresa"
	CategoryOther            CategoryID = "otros"
)

// Category is the display metadata attached to a CategoryID.
type Category struct {
	ID   CategoryID `json:"id"`
	Name string     `json:"name"`
	Icon string     `json:"icon"`
}

// categories is kept in display order.
var categories = []Category{
	{ID: CategoryFood, Name: "Alimentación", Icon: "🍔"},
	{ID: CategoryHousing, Name: "Vivienda", Icon: "🏡"},
	{ID: CategoryTransport, Name: "Transporte", Icon: "🚗"},
	{ID: CategoryHealth, Name: "Salud", Icon: "💊"},
	{ID: CategoryEducation, Name: "Educación", Icon: "📚"},
	{ID: CategoryPhoneInternet, Name: "Teléfono & Internet", Icon: "💻"},
	{ID: CategoryFinancial, Name: "Financieros", Icon: "💳"},
	{ID: CategoryInsurance, Name: "Seguros", Icon: "🛡️"},
	{ID: CategoryLeisure, Name: "Ocio", Icon: "🎉"},
	{ID: CategoryFamily, Name: "Familia", Icon: "👨‍👩‍👧‍👦"},
	{ID: CategoryPersonalBusiness, Name: "Personal/Empresa", Icon: "💼"},
	{ID: CategoryTaxes, Name: "Impuestos", Icon: "📊"},
	{ID: CategoryVehicleTaxes, Name: "Imp. Vehículos", Icon: "🚙"},
	{ID: CategoryBusinessSupplies, Name: "Insumos Empresa", Icon: "🏭"},
	{ID: CategoryOther, Name: "Otros", Icon: "📦"},
}

// Categories returns a copy of the catalogue in display order.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// CategoryByID looks up the catalogue entry for id.
func CategoryByID(id CategoryID) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FindCategory returns the first category whose name or id contains name,
// ignoring case.
func FindCategory(name string) (Category, bool) {
	needle := strings.ToLower(strings.TrimSpace(name))
	if needle == "" {
		return Category{}, false
	}
	for _, c := range categories {
		if strings.Contains(strings.ToLower(c.Name), needle) || strings.Contains(string(c.ID), needle) {
			return c, true
		}
	}
	return Category{}, false
}

func (id CategoryID) Valid() bool {
	_, ok := CategoryByID(id)
	return ok
}

// Name returns the display name, falling back to the raw id.
func (id CategoryID) Name() string {
	if c, ok := CategoryByID(id); ok {
		return c.Name
	}
	return string(id)
}
