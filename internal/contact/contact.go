package contact

import "time"

// Gender is the stored gender of a contact.
type Gender int

const (
	GenderUnspecified Gender = iota
	GenderMale
	GenderFemale
)

// String returns the lower-case name used in batch files.
func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return ""
	}
}

// ParseGender is the inverse of Gender.String. Unknown values map to
// GenderUnspecified.
func ParseGender(s string) Gender {
	switch s {
	case "male":
		return GenderMale
	case "female":
		return GenderFemale
	default:
		return GenderUnspecified
	}
}

// Name holds the structured name parts of a contact.
type Name struct {
	First       string
	Last        string
	Middle      string
	Prefix      string
	Suffix      string
	CustomLabel string
}

// Contact is the aggregate written by the engine.
type Contact struct {
	// ID is zero until the contact has been created.
	ID Handle

	DisplayLabel string
	Name         Name
	Created      time.Time
	Modified     time.Time
	Gender       Gender
	Favorite     bool

	// Details is the open multiset of detail records, in insertion order.
	Details []Detail
}

// DetailsOf returns the details of the given kind in insertion order.
func (c *Contact) DetailsOf(kind Kind) []Detail {
	var out []Detail
	for _, d := range c.Details {
		if d.Kind() == kind {
			out = append(out, d)
		}
	}
	return out
}

// SetDetails replaces all details of kind with ds, keeping the position of
// the first replaced detail when there was one.
func (c *Contact) SetDetails(kind Kind, ds ...Detail) {
	kept := make([]Detail, 0, len(c.Details)+len(ds))
	inserted := false
	for _, d := range c.Details {
		if d.Kind() != kind {
			kept = append(kept, d)
			continue
		}
		if !inserted {
			kept = append(kept, ds...)
			inserted = true
		}
	}
	if !inserted {
		kept = append(kept, ds...)
	}
	c.Details = kept
}

// Typed returns the details of c that have concrete type T.
func Typed[T Detail](c *Contact) []T {
	var out []T
	for _, d := range c.Details {
		if t, ok := d.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
