// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package scoring

// Category names
const (
	CategoryDirectIdentifier      = "direct_identifier"
	CategoryHealthInfo            = "health_info"
	CategoryFinancial             = "financial"
	CategoryContact               = "contact"
	CategoryCredential            = "credential"
	CategoryQuasiIdentifier       = "quasi_identifier"
	CategoryClassificationMarking = "classification_marking"
	CategoryUnknown               = "unknown"
)

// DefaultWeight applies to entity types missing from the weight table
const DefaultWeight = 5

var weights = buildWeights(map[int][]string{
	10: {"SSN", "PASSPORT", "CREDIT_CARD", "PASSWORD", "API_KEY", "PRIVATE_KEY",
		"AWS_ACCESS_KEY", "AWS_SECRET_KEY", "DATABASE_URL", "GITHUB_TOKEN", "GITLAB_TOKEN",
		"SLACK_TOKEN", "STRIPE_KEY", "CRYPTO_SEED_PHRASE"},
	9: {"MRN", "DIAGNOSIS", "HEALTH_PLAN_ID", "JWT"},
	8: {"DRIVER_LICENSE", "NPI", "DEA", "TAX_ID", "MILITARY_ID"},
	7: {"BITCOIN_ADDRESS", "ETHEREUM_ADDRESS", "IBAN", "SWIFT_BIC"},
	6: {"PHONE", "EMAIL", "SENDGRID_KEY", "TWILIO_KEY"},
	5: {"NAME", "ADDRESS", "IP_ADDRESS", "MAC_ADDRESS", "VIN", "CUSIP", "ISIN", "LEI", "DATE_DOB"},
	4: {"AGE", "CLASSIFICATION_LEVEL", "DOD_CONTRACT", "GSA_CONTRACT", "CAGE_CODE", "UEI"},
	3: {"DATE", "ZIP"},
	2: {"CITY", "STATE", "COUNTRY", "TRACKING_NUMBER"},
	1: {"FACILITY", "ORGANIZATION"},
})

var categories = buildCategories(map[string][]string{
	CategoryDirectIdentifier: {"SSN", "PASSPORT", "DRIVER_LICENSE", "MILITARY_ID", "TAX_ID", "MRN", "STATE_ID"},
	CategoryHealthInfo:       {"DIAGNOSIS", "MEDICATION", "HEALTH_PLAN_ID", "NPI", "DEA", "LAB_TEST", "PROCEDURE"},
	CategoryFinancial: {"CREDIT_CARD", "IBAN", "SWIFT_BIC", "ACCOUNT_NUMBER", "CUSIP", "ISIN",
		"BITCOIN_ADDRESS", "ETHEREUM_ADDRESS", "CRYPTO_SEED_PHRASE"},
	CategoryContact: {"EMAIL", "PHONE", "ADDRESS", "ZIP", "FAX"},
	CategoryCredential: {"PASSWORD", "API_KEY", "PRIVATE_KEY", "JWT", "AWS_ACCESS_KEY", "AWS_SECRET_KEY",
		"GITHUB_TOKEN", "GITLAB_TOKEN", "SLACK_TOKEN", "STRIPE_KEY", "DATABASE_URL"},
	CategoryQuasiIdentifier:       {"NAME", "DATE_DOB", "AGE", "DATE"},
	CategoryClassificationMarking: {"CLASSIFICATION_LEVEL", "CLASSIFICATION_MARKING", "SCI_MARKING", "DISSEMINATION_CONTROL"},
})

var aliases = map[string]string{
	"US_SSN":               "SSN",
	"SOCIAL_SECURITY":      "SSN",
	"SOCIALSECURITYNUMBER": "SSN",
	"PER":                  "NAME",
	"PERSON":               "NAME",
	"PATIENT":              "NAME_PATIENT",
	"DOCTOR":               "NAME_PROVIDER",
	"PHYSICIAN":            "NAME_PROVIDER",
	"HCW":                  "NAME_PROVIDER",
	"DOB":                  "DATE_DOB",
	"BIRTHDAY":             "DATE_DOB",
	"DATEOFBIRTH":          "DATE_DOB",
	"DATE_OF_BIRTH":        "DATE_DOB",
	"BIRTH_DATE":           "DATE_DOB",
	"BIRTHDATE":            "DATE_DOB",
	"CC":                   "CREDIT_CARD",
	"CREDITCARD":           "CREDIT_CARD",
	"CREDITCARDNUMBER":     "CREDIT_CARD",
	"CREDIT_CARD_NUMBER":   "CREDIT_CARD",
	"TELEPHONE":            "PHONE",
	"TEL":                  "PHONE",
	"MOBILE":               "PHONE",
	"CELL":                 "PHONE",
	"PHONENUMBER":          "PHONE",
	"PHONE_NUMBER":         "PHONE",
	"US_PHONE_NUMBER":      "PHONE",
	"EMAILADDRESS":         "EMAIL",
	"EMAIL_ADDRESS":        "EMAIL",
	"STREET_ADDRESS":       "ADDRESS",
	"STREET":               "ADDRESS",
	"IP":                   "IP_ADDRESS",
	"IPADDRESS":            "IP_ADDRESS",
	"IPV4":                 "IP_ADDRESS",
	"IPV6":                 "IP_ADDRESS",
	"MEDICAL_RECORD":       "MRN",
	"MEDICALRECORD":        "MRN",
	"LICENSE":              "DRIVER_LICENSE",
	"US_DRIVER_LICENSE":    "DRIVER_LICENSE",
	"DRIVERSLICENSE":       "DRIVER_LICENSE",
	"US_PASSPORT":          "PASSPORT",
	"PASSPORT_NUMBER":      "PASSPORT",
	"ZIPCODE":              "ZIP",
	"ZIP_CODE":             "ZIP",
	"POSTCODE":             "ZIP",
	"LOCATION_ZIP":         "ZIP",
}

// Rule escalates risk when every required category is present
type Rule struct {
	Name       string   `json:"name" yaml:"name"`
	Requires   []string `json:"requires" yaml:"requires"`
	Multiplier float64  `json:"multiplier" yaml:"multiplier"`
}

// rules are evaluated in order; the order decides how tied names are reported
var rules = []Rule{
	{Name: "hipaa_phi", Requires: []string{CategoryDirectIdentifier, CategoryHealthInfo}, Multiplier: 2.0},
	{Name: "identity_theft", Requires: []string{CategoryDirectIdentifier, CategoryFinancial}, Multiplier: 1.8},
	{Name: "credential_exposure", Requires: []string{CategoryCredential}, Multiplier: 1.5},
	{Name: "phi_without_id", Requires: []string{CategoryQuasiIdentifier, CategoryHealthInfo}, Multiplier: 1.5},
	{Name: "phi_with_contact", Requires: []string{CategoryContact, CategoryHealthInfo}, Multiplier: 1.4},
	{Name: "full_identity", Requires: []string{CategoryDirectIdentifier, CategoryQuasiIdentifier, CategoryFinancial}, Multiplier: 2.2},
	{Name: "classified_data", Requires: []string{CategoryClassificationMarking}, Multiplier: 2.5},
}

var exposureMultipliers = map[string]float64{
	"PRIVATE":  1.0,
	"INTERNAL": 1.2,
	"ORG_WIDE": 1.8,
	"PUBLIC":   2.5,
}

func buildWeights(tiers map[int][]string) map[string]int {
	m := make(map[string]int)
	for w, types := range tiers {
		for _, t := range types {
			m[t] = w
		}
	}
	return m
}

func buildCategories(groups map[string][]string) map[string]string {
	m := make(map[string]string)
	for cat, types := range groups {
		for _, t := range types {
			m[t] = cat
		}
	}
	return m
}
