// Package report resolves which AFA daily price bulletin exists for a date and
// extracts its product price table.
package report

import (
	"fmt"
	"time"
)

// SupplyType is the market stage a bulletin reports on.
type SupplyType string

const (
	SupplyTypeOrigin    SupplyType = "產地"
	SupplyTypeWholesale SupplyType = "批發"
	SupplyTypeRetail    SupplyType = "零售"
)

func (s SupplyType) String() string { return string(s) }

// Category is the top level domain of a bulletin.
type Category string

const (
	CategoryAgriculture Category = "農產品"
	CategoryLivestock   Category = "畜禽產品"
	CategoryFishery     Category = "漁產品"
)

func (c Category) String() string { return string(c) }

// ProductType is the commodity a bulletin covers.
type ProductType string

const (
	// Agriculture
	ProductTypeRice      ProductType = "糧"
	ProductTypeVegetable ProductType = "蔬菜"
	ProductTypeFruit     ProductType = "水果"
	ProductTypeFlower    ProductType = "花卉"

	// Livestock
	ProductTypeHog     ProductType = "豬"
	ProductTypeRam     ProductType = "羊"
	ProductTypeChicken ProductType = "雞"
	ProductTypeDuck    ProductType = "鴨"
	ProductTypeGoose   ProductType = "鵝"

	// Fishery
	ProductTypeFish      ProductType = "魚類"
	ProductTypeShrimp    ProductType = "蝦類"
	ProductTypeShellfish ProductType = "貝類"

	ProductTypeOthers ProductType = "其他"
)

// ProductTypes lists every known product type in declaration order.
var ProductTypes = []ProductType{
	ProductTypeRice, ProductTypeVegetable, ProductTypeFruit, ProductTypeFlower,
	ProductTypeHog, ProductTypeRam, ProductTypeChicken, ProductTypeDuck, ProductTypeGoose,
	ProductTypeFish, ProductTypeShrimp, ProductTypeShellfish,
	ProductTypeOthers,
}

func (p ProductType) String() string { return string(p) }

// ParseProductType maps a label (e.g. "水果") to its ProductType.
func ParseProductType(s string) (ProductType, error) {
	for _, p := range ProductTypes {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown product type %q", s)
}

// FileType is the document format of a bulletin.
type FileType string

const (
	FileTypeCSV   FileType = "csv"
	FileTypeJSON  FileType = "json"
	FileTypeExcel FileType = "excel"
	FileTypePDF   FileType = "pdf"
	FileTypeTXT   FileType = "txt"
)

func (f FileType) String() string { return string(f) }

// ParseFileType maps a lowercase name to its FileType.
func ParseFileType(s string) (FileType, error) {
	switch FileType(s) {
	case FileTypeCSV, FileTypeJSON, FileTypeExcel, FileTypePDF, FileTypeTXT:
		return FileType(s), nil
	}
	return "", fmt.Errorf("unknown file type %q", s)
}

// WeekDay is an ISO weekday ordinal, Monday=1 through Sunday=7.
type WeekDay int

const (
	Monday WeekDay = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// WeekDayOf returns the ISO weekday of t.
func WeekDayOf(t time.Time) WeekDay {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return WeekDay(wd)
}

// IsWeekend reports whether d is Saturday or Sunday.
func (d WeekDay) IsWeekend() bool {
	return d == Saturday || d == Sunday
}

func (d WeekDay) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("WeekDay(%d)", int(d))
	}
	return time.Weekday(int(d) % 7).String()
}
