package domain

import dErrors "sahaya/pkg/domain-errors"

// Category is one of the closed set of service lines the portal handles.
// Immutable after case creation; each category owns its own status vocabulary.
type Category string

const (
	CategoryGrievance        Category = "grievance"
	CategoryTempleLetter     Category = "temple_letter"
	CategoryCMRelief         Category = "cm_relief"
	CategoryDispute          Category = "dispute"
	CategoryCSRIndustrial    Category = "csr_industrial"
	CategoryEducationSupport Category = "education_support"
	CategoryAppointment      Category = "appointment"
	CategoryProgram          Category = "program"
)

// categoryPrefixes maps categories to their case-id prefixes.
var categoryPrefixes = map[Category]string{
	CategoryGrievance:        "GRV",
	CategoryTempleLetter:     "TDL",
	CategoryCMRelief:         "CMR",
	CategoryDispute:          "DIS",
	CategoryCSRIndustrial:    "CSR",
	CategoryEducationSupport: "EDU",
	CategoryAppointment:      "APT",
	CategoryProgram:          "PRG",
}

// categoryLabels are the human-readable labels surfaced in queue views.
var categoryLabels = map[Category]string{
	CategoryGrievance:        "Grievance",
	CategoryTempleLetter:     "Temple Letter",
	CategoryCMRelief:         "CM Relief Fund",
	CategoryDispute:          "Dispute",
	CategoryCSRIndustrial:    "CSR / Industrial",
	CategoryEducationSupport: "Education Support",
	CategoryAppointment:      "Appointment",
	CategoryProgram:          "Program",
}

func (c Category) IsValid() bool {
	_, ok := categoryPrefixes[c]
	return ok
}

func (c Category) Prefix() string { return categoryPrefixes[c] }
func (c Category) Label() string  { return categoryLabels[c] }
func (c Category) String() string { return string(c) }

// ParseCategory rejects anything outside the closed set.
func ParseCategory(raw string) (Category, error) {
	c := Category(raw)
	if !c.IsValid() {
		return "", dErrors.New(dErrors.CodeUnknownCategory, "unknown category: "+raw)
	}
	return c, nil
}

// CategoryFromPrefix resolves a case-id prefix back to its category.
func CategoryFromPrefix(prefix string) (Category, error) {
	for c, p := range categoryPrefixes {
		if p == prefix {
			return c, nil
		}
	}
	return "", dErrors.New(dErrors.CodeUnknownCategory, "unknown category prefix: "+prefix)
}

// Status is a member of some category's vocabulary. Which values are legal for
// which category is owned by the registry module, not by this type.
type Status string

func (s Status) String() string { return string(s) }
