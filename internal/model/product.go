package model

import "github.com/shopspring/decimal"

// Product is one catalog row. Identity is the product name, compared case-insensitively.
type Product struct {
	ProductName       string          `json:"product_name"`
	GenericName       string          `json:"generic_name"`
	DrugClass         string          `json:"drug_class"`
	SizeVariant       string          `json:"size_variant"`
	RegularPrice      decimal.Decimal `json:"regular_price"`
	PWDSeniorPrice    decimal.Decimal `json:"pwd_senior_price"`
	Category          string          `json:"category"`
	Description       string          `json:"description"`
	MechanismOfAction string          `json:"mechanism_of_action"`
	Indications       string          `json:"indications"`
	DosageInfo        string          `json:"dosage_info"`
	ActiveIngredients string          `json:"active_ingredients"`
	ImportantInfo     string          `json:"important_info"`
	Contraindications string          `json:"contraindications"`
	Warnings          string          `json:"warnings"`
}

// PriceFor returns the unit price for the customer's discount tier.
func (p Product) PriceFor(pwdSenior bool) decimal.Decimal {
	if pwdSenior {
		return p.PWDSeniorPrice
	}
	return p.RegularPrice
}
