package catalog

import (
	"strings"

	"github.com/lapu-lapu-poc/server/internal/model"
	"github.com/shopspring/decimal"
)

// FormatPrice renders a peso amount without trailing zeros ("10", "10.5").
func FormatPrice(v decimal.Decimal) string {
	return v.String()
}

// FormatForVoice renders a short spoken description of p.
func FormatForVoice(p model.Product) string {
	var b strings.Builder
	b.WriteString(p.ProductName)
	if p.GenericName != "" {
		b.WriteString(" (" + p.GenericName + ")")
	}
	b.WriteString(", " + p.SizeVariant + ". ")
	b.WriteString("Regular price: " + FormatPrice(p.RegularPrice) + " pesos. ")
	b.WriteString("PWD/Senior price: " + FormatPrice(p.PWDSeniorPrice) + " pesos. ")
	b.WriteString(p.Indications)
	return strings.TrimSpace(b.String())
}

// FormatDetailsForVoice renders the long description used when exactly one
// product matched a lookup.
func FormatDetailsForVoice(p model.Product) string {
	var b strings.Builder
	b.WriteString(p.ProductName + " is " + p.GenericName + ", a " + p.DrugClass + ". ")
	b.WriteString("It is available in " + p.SizeVariant + " at " + FormatPrice(p.RegularPrice) + " pesos regular price, ")
	b.WriteString("or " + FormatPrice(p.PWDSeniorPrice) + " pesos with PWD or Senior Citizen discount. ")
	if p.Description != "" {
		b.WriteString(p.Description + " ")
	}
	if p.DosageInfo != "" {
		b.WriteString("Dosage: " + p.DosageInfo + " ")
	}
	if p.ImportantInfo != "" {
		b.WriteString("Important: " + p.ImportantInfo)
	}
	return strings.TrimSpace(b.String())
}
