package contact

import "time"

// Kind names a detail kind. The value doubles as the stable definition name
// used in field masks and in the common-detail side table.
type Kind string

const (
	KindAddress        Kind = "Address"
	KindAnniversary    Kind = "Anniversary"
	KindAvatar         Kind = "Avatar"
	KindBirthday       Kind = "Birthday"
	KindEmailAddress   Kind = "EmailAddress"
	KindGlobalPresence Kind = "GlobalPresence"
	KindGuid           Kind = "Guid"
	KindHobby          Kind = "Hobby"
	KindNickname       Kind = "Nickname"
	KindNote           Kind = "Note"
	KindOnlineAccount  Kind = "OnlineAccount"
	KindOrganization   Kind = "Organization"
	KindPhoneNumber    Kind = "PhoneNumber"
	KindPresence       Kind = "Presence"
	KindRingtone       Kind = "Ringtone"
	KindSyncTarget     Kind = "SyncTarget"
	KindTag            Kind = "Tag"
	KindTpMetadata     Kind = "TpMetadata"
	KindUrl            Kind = "Url"
)

// Detail is one typed, repeatable record attached to a contact.
//
// The set of implementations is closed: every concrete type lives in this
// package and embeds Common.
type Detail interface {
	Kind() Kind
	Meta() Common
	isDetail()
}

// Common is the metadata every detail may carry.
type Common struct {
	DetailURI        string
	LinkedDetailURIs []string
	Contexts         []string
}

// Meta returns the common metadata of the detail.
func (c Common) Meta() Common { return c }

// Empty reports whether no metadata is set.
func (c Common) Empty() bool {
	return c.DetailURI == "" && len(c.LinkedDetailURIs) == 0 && len(c.Contexts) == 0
}

func (Common) isDetail() {}

type Address struct {
	Common
	Street        string
	PostOfficeBox string
	Region        string
	Locality      string
	PostCode      string
	Country       string
}

func (Address) Kind() Kind { return KindAddress }

type Anniversary struct {
	Common
	OriginalDate time.Time
	CalendarID   string
	SubType      string
}

func (Anniversary) Kind() Kind { return KindAnniversary }

type Avatar struct {
	Common
	ImageURL string
	VideoURL string
}

func (Avatar) Kind() Kind { return KindAvatar }

type Birthday struct {
	Common
	Date       time.Time
	CalendarID string
}

func (Birthday) Kind() Kind { return KindBirthday }

type EmailAddress struct {
	Common
	Address string
}

func (EmailAddress) Kind() Kind { return KindEmailAddress }

type GUID struct {
	Common
	GUID string
}

func (GUID) Kind() Kind { return KindGuid }

type Hobby struct {
	Common
	Hobby string
}

func (Hobby) Kind() Kind { return KindHobby }

type Nickname struct {
	Common
	Nickname string
}

func (Nickname) Kind() Kind { return KindNickname }

type Note struct {
	Common
	Note string
}

func (Note) Kind() Kind { return KindNote }

type OnlineAccount struct {
	Common
	AccountURI      string
	Protocol        string
	ServiceProvider string
	Capabilities    []string
	SubTypes        []string
	AccountPath     string
	AccountIconPath string
	Enabled         bool
}

func (OnlineAccount) Kind() Kind { return KindOnlineAccount }

type Organization struct {
	Common
	Name       string
	Role       string
	Title      string
	Location   string
	Department []string
	LogoURL    string
}

func (Organization) Kind() Kind { return KindOrganization }

type PhoneNumber struct {
	Common
	Number   string
	SubTypes []string
	// Normalized is derived from Number on write when left empty.
	Normalized string
}

func (PhoneNumber) Kind() Kind { return KindPhoneNumber }

type Presence struct {
	Common
	State         PresenceState
	Timestamp     time.Time
	Nickname      string
	CustomMessage string
}

func (Presence) Kind() Kind { return KindPresence }

type Ringtone struct {
	Common
	AudioURL string
	VideoURL string
}

func (Ringtone) Kind() Kind { return KindRingtone }

type SyncTarget struct {
	Common
	Target string
}

func (SyncTarget) Kind() Kind { return KindSyncTarget }

type Tag struct {
	Common
	Tag string
}

func (Tag) Kind() Kind { return KindTag }

type URL struct {
	Common
	URL      string
	SubTypes []string
}

func (URL) Kind() Kind { return KindUrl }

// TpMetadata links a contact to a Telepathy account.
type TpMetadata struct {
	Common
	TelepathyID    string
	AccountID      string
	AccountEnabled bool
}

func (TpMetadata) Kind() Kind { return KindTpMetadata }

// GlobalPresence is derived from the Presence details of a contact on every
// write. Values supplied by callers are ignored.
type GlobalPresence struct {
	Common
	State         PresenceState
	Timestamp     time.Time
	Nickname      string
	CustomMessage string
}

func (GlobalPresence) Kind() Kind { return KindGlobalPresence }

// Unsupported carries a detail kind the engine does not store.
// Writing a contact that holds one fails with InvalidDetail.
type Unsupported struct {
	Common
	Name string
}

func (u Unsupported) Kind() Kind { return Kind(u.Name) }
