package config

import "os"

// Issuer holds the static company identity consumed verbatim by all
// three export formats. Fields left unset in the environment render as
// empty strings — a missing setting is never a hard failure.
type Issuer struct {
	LegalName   string
	TradeName   string
	TaxID       string
	Address     string
	City        string
	State       string
	ZipCode     string
	Email       string
	BankName    string
	BankAccount string
	LogoPath    string
}

// IssuerFromEnv reads the issuer identity from the environment. Callers
// load .env beforehand via godotenv when running outside a container.
func IssuerFromEnv() Issuer {
	return Issuer{
		LegalName:   os.Getenv("ISSUER_LEGAL_NAME"),
		TradeName:   os.Getenv("ISSUER_TRADE_NAME"),
		TaxID:       os.Getenv("ISSUER_TAX_ID"),
		Address:     os.Getenv("ISSUER_ADDRESS"),
		City:        os.Getenv("ISSUER_CITY"),
		State:       os.Getenv("ISSUER_STATE"),
		ZipCode:     os.Getenv("ISSUER_ZIP_CODE"),
		Email:       os.Getenv("ISSUER_EMAIL"),
		BankName:    os.Getenv("ISSUER_BANK_NAME"),
		BankAccount: os.Getenv("ISSUER_BANK_ACCOUNT"),
		LogoPath:    os.Getenv("ISSUER_LOGO_PATH"),
	}
}

// NumberSeries returns the configured invoice number series prefix,
// defaulting to "INV".
func NumberSeries() string {
	if s := os.Getenv("INVOICE_NUMBER_SERIES"); s != "" {
		return s
	}
	return "INV"
}
