package report

import (
	"strconv"
	"strings"
)

// Family groups the product types that share a filename template, a table
// layout and a business-day rule.
type Family string

const (
	FamilyFruit       Family = "fruit"
	FamilyFishery     Family = "fishery"
	FamilyUnsupported Family = ""
)

// Filename templates keyed by family. Placeholders are expanded with the
// ROC year and the zero padded month and day of the publication date.
var familyTemplates = map[Family]string{
	FamilyFruit:   "{roc_year}年{month}月{day}日重要水果產地價格日報.pdf",
	FamilyFishery: "{roc_year}年{month}月{day}日漁產品批發價格日報.pdf",
}

var productFamilies = map[ProductType]Family{
	ProductTypeFruit:     FamilyFruit,
	ProductTypeFish:      FamilyFishery,
	ProductTypeShrimp:    FamilyFishery,
	ProductTypeShellfish: FamilyFishery,
}

// FamilyOf returns the report family of p, or FamilyUnsupported.
func FamilyOf(p ProductType) Family {
	return productFamilies[p]
}

// Template returns the filename template of the family and whether one exists.
func (f Family) Template() (string, bool) {
	tmpl, ok := familyTemplates[f]
	return tmpl, ok
}

// Render expands the family template. It returns "" for unsupported families.
func (f Family) Render(rocYear, month, day int) string {
	tmpl, ok := f.Template()
	if !ok {
		return ""
	}
	return strings.NewReplacer(
		"{roc_year}", strconv.Itoa(rocYear),
		"{month}", pad2(month),
		"{day}", pad2(day),
	).Replace(tmpl)
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
