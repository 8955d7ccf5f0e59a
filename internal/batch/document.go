package batch

import (
	"fmt"
	"slices"
	"time"

	"github.com/roach88/contactdb/internal/contact"
)

// dateLayout is the layout of date-only values such as birthdays.
const dateLayout = "2006-01-02"

// Document is one batch file.
type Document struct {
	Contacts      []ContactDoc      `yaml:"contacts,omitempty" json:"contacts,omitempty"`
	Relationships []RelationshipDoc `yaml:"relationships,omitempty" json:"relationships,omitempty"`
}

// ContactDoc is the file form of contact.Contact.
type ContactDoc struct {
	ID          uint32      `yaml:"id,omitempty" json:"id,omitempty"`
	Label       string      `yaml:"label,omitempty" json:"label,omitempty"`
	First       string      `yaml:"first,omitempty" json:"first,omitempty"`
	Last        string      `yaml:"last,omitempty" json:"last,omitempty"`
	Middle      string      `yaml:"middle,omitempty" json:"middle,omitempty"`
	Prefix      string      `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	Suffix      string      `yaml:"suffix,omitempty" json:"suffix,omitempty"`
	CustomLabel string      `yaml:"custom_label,omitempty" json:"custom_label,omitempty"`
	Gender      string      `yaml:"gender,omitempty" json:"gender,omitempty"`
	Favorite    bool        `yaml:"favorite,omitempty" json:"favorite,omitempty"`
	Created     string      `yaml:"created,omitempty" json:"created,omitempty"`
	Modified    string      `yaml:"modified,omitempty" json:"modified,omitempty"`
	Details     []DetailDoc `yaml:"details,omitempty" json:"details,omitempty"`
}

// DetailDoc is the file form of one detail.
type DetailDoc struct {
	Kind     string            `yaml:"kind" json:"kind"`
	URI      string            `yaml:"uri,omitempty" json:"uri,omitempty"`
	Linked   []string          `yaml:"linked,omitempty" json:"linked,omitempty"`
	Contexts []string          `yaml:"contexts,omitempty" json:"contexts,omitempty"`
	Value    string            `yaml:"value,omitempty" json:"value,omitempty"`
	SubTypes []string          `yaml:"subtypes,omitempty" json:"subtypes,omitempty"`
	Date     string            `yaml:"date,omitempty" json:"date,omitempty"`
	State    string            `yaml:"state,omitempty" json:"state,omitempty"`
	Enabled  bool              `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Fields   map[string]string `yaml:"fields,omitempty" json:"fields,omitempty"`
}

// RelationshipDoc is the file form of contact.Relationship.
type RelationshipDoc struct {
	First         uint32 `yaml:"first" json:"first"`
	FirstManager  string `yaml:"first_manager,omitempty" json:"first_manager,omitempty"`
	Type          string `yaml:"type" json:"type"`
	Second        uint32 `yaml:"second" json:"second"`
	SecondManager string `yaml:"second_manager,omitempty" json:"second_manager,omitempty"`
}

// fieldNames lists the keys accepted in DetailDoc.Fields per kind.
var fieldNames = map[contact.Kind][]string{
	contact.KindAddress:        {"po_box", "region", "locality", "postcode", "country"},
	contact.KindAnniversary:    {"calendar", "subtype"},
	contact.KindAvatar:         {"video"},
	contact.KindBirthday:       {"calendar"},
	contact.KindOnlineAccount:  {"protocol", "provider", "path", "icon"},
	contact.KindOrganization:   {"role", "title", "location", "logo"},
	contact.KindPresence:       {"nickname", "message"},
	contact.KindGlobalPresence: {"nickname", "message"},
	contact.KindRingtone:       {"video"},
	contact.KindTpMetadata:     {"account"},
}

// ContactList converts the contacts of d. Field errors name the contact by
// index.
func (d *Document) ContactList() ([]contact.Contact, error) {
	out := make([]contact.Contact, 0, len(d.Contacts))
	for i, cd := range d.Contacts {
		c, err := cd.Contact()
		if err != nil {
			return nil, fmt.Errorf("contacts[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// RelationshipList converts the relationships of d.
func (d *Document) RelationshipList() []contact.Relationship {
	out := make([]contact.Relationship, len(d.Relationships))
	for i, rd := range d.Relationships {
		out[i] = rd.Relationship()
	}
	return out
}

// Contact converts cd.
func (cd ContactDoc) Contact() (contact.Contact, error) {
	c := contact.Contact{
		ID:           contact.Handle(cd.ID),
		DisplayLabel: cd.Label,
		Name: contact.Name{
			First:       cd.First,
			Last:        cd.Last,
			Middle:      cd.Middle,
			Prefix:      cd.Prefix,
			Suffix:      cd.Suffix,
			CustomLabel: cd.CustomLabel,
		},
		Gender:   contact.ParseGender(cd.Gender),
		Favorite: cd.Favorite,
	}
	var err error
	if c.Created, err = parseTime(cd.Created); err != nil {
		return contact.Contact{}, fmt.Errorf("created: %w", err)
	}
	if c.Modified, err = parseTime(cd.Modified); err != nil {
		return contact.Contact{}, fmt.Errorf("modified: %w", err)
	}
	for i, dd := range cd.Details {
		d, err := dd.Detail()
		if err != nil {
			return contact.Contact{}, fmt.Errorf("details[%d]: %w", i, err)
		}
		c.Details = append(c.Details, d)
	}
	return c, nil
}

// Detail converts dd. An unknown kind becomes contact.Unsupported.
func (dd DetailDoc) Detail() (contact.Detail, error) {
	kind := contact.Kind(dd.Kind)
	allowed := fieldNames[kind]
	for name := range dd.Fields {
		if !slices.Contains(allowed, name) {
			return nil, fmt.Errorf("%s: unknown field %q", dd.Kind, name)
		}
	}
	date, err := parseTime(dd.Date)
	if err != nil {
		return nil, fmt.Errorf("%s: date: %w", dd.Kind, err)
	}
	f := dd.Fields
	common := contact.Common{DetailURI: dd.URI, LinkedDetailURIs: dd.Linked, Contexts: dd.Contexts}

	switch kind {
	case contact.KindAddress:
		return contact.Address{Common: common, Street: dd.Value, PostOfficeBox: f["po_box"],
			Region: f["region"], Locality: f["locality"], PostCode: f["postcode"], Country: f["country"]}, nil
	case contact.KindAnniversary:
		return contact.Anniversary{Common: common, OriginalDate: date, CalendarID: f["calendar"], SubType: f["subtype"]}, nil
	case contact.KindAvatar:
		return contact.Avatar{Common: common, ImageURL: dd.Value, VideoURL: f["video"]}, nil
	case contact.KindBirthday:
		return contact.Birthday{Common: common, Date: date, CalendarID: f["calendar"]}, nil
	case contact.KindEmailAddress:
		return contact.EmailAddress{Common: common, Address: dd.Value}, nil
	case contact.KindGuid:
		return contact.GUID{Common: common, GUID: dd.Value}, nil
	case contact.KindHobby:
		return contact.Hobby{Common: common, Hobby: dd.Value}, nil
	case contact.KindNickname:
		return contact.Nickname{Common: common, Nickname: dd.Value}, nil
	case contact.KindNote:
		return contact.Note{Common: common, Note: dd.Value}, nil
	case contact.KindOnlineAccount:
		return contact.OnlineAccount{Common: common, AccountURI: dd.Value, Protocol: f["protocol"],
			ServiceProvider: f["provider"], SubTypes: dd.SubTypes, AccountPath: f["path"],
			AccountIconPath: f["icon"], Enabled: dd.Enabled}, nil
	case contact.KindOrganization:
		return contact.Organization{Common: common, Name: dd.Value, Role: f["role"], Title: f["title"],
			Location: f["location"], Department: dd.SubTypes, LogoURL: f["logo"]}, nil
	case contact.KindPhoneNumber:
		return contact.PhoneNumber{Common: common, Number: dd.Value, SubTypes: dd.SubTypes}, nil
	case contact.KindPresence:
		state, err := parseState(dd.State)
		if err != nil {
			return nil, err
		}
		return contact.Presence{Common: common, State: state, Timestamp: date,
			Nickname: f["nickname"], CustomMessage: f["message"]}, nil
	case contact.KindRingtone:
		return contact.Ringtone{Common: common, AudioURL: dd.Value, VideoURL: f["video"]}, nil
	case contact.KindSyncTarget:
		return contact.SyncTarget{Common: common, Target: dd.Value}, nil
	case contact.KindTag:
		return contact.Tag{Common: common, Tag: dd.Value}, nil
	case contact.KindUrl:
		return contact.URL{Common: common, URL: dd.Value, SubTypes: dd.SubTypes}, nil
	case contact.KindTpMetadata:
		return contact.TpMetadata{Common: common, TelepathyID: dd.Value, AccountID: f["account"],
			AccountEnabled: dd.Enabled}, nil
	case contact.KindGlobalPresence:
		state, err := parseState(dd.State)
		if err != nil {
			return nil, err
		}
		return contact.GlobalPresence{Common: common, State: state, Timestamp: date,
			Nickname: f["nickname"], CustomMessage: f["message"]}, nil
	default:
		return contact.Unsupported{Common: common, Name: dd.Kind}, nil
	}
}

// Relationship converts rd.
func (rd RelationshipDoc) Relationship() contact.Relationship {
	return contact.Relationship{
		First:  contact.ContactRef{ID: contact.Handle(rd.First), ManagerURI: rd.FirstManager},
		Second: contact.ContactRef{ID: contact.Handle(rd.Second), ManagerURI: rd.SecondManager},
		Type:   rd.Type,
	}
}

func parseState(s string) (contact.PresenceState, error) {
	if s == "" {
		return contact.PresenceUnknown, nil
	}
	return contact.ParsePresenceState(s)
}

// parseTime accepts RFC 3339 timestamps and plain dates. The empty string
// is the zero time.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dateLayout, s)
}
