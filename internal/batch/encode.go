package batch

import (
	"time"

	"github.com/roach88/contactdb/internal/contact"
)

// FromContact is the inverse of ContactDoc.Contact.
func FromContact(c contact.Contact) ContactDoc {
	cd := ContactDoc{
		ID:          uint32(c.ID),
		Label:       c.DisplayLabel,
		First:       c.Name.First,
		Last:        c.Name.Last,
		Middle:      c.Name.Middle,
		Prefix:      c.Name.Prefix,
		Suffix:      c.Name.Suffix,
		CustomLabel: c.Name.CustomLabel,
		Gender:      c.Gender.String(),
		Favorite:    c.Favorite,
		Created:     formatTime(c.Created),
		Modified:    formatTime(c.Modified),
	}
	for _, d := range c.Details {
		cd.Details = append(cd.Details, FromDetail(d))
	}
	return cd
}

// FromRelationship is the inverse of RelationshipDoc.Relationship.
func FromRelationship(r contact.Relationship) RelationshipDoc {
	return RelationshipDoc{
		First:         uint32(r.First.ID),
		FirstManager:  r.First.ManagerURI,
		Type:          r.Type,
		Second:        uint32(r.Second.ID),
		SecondManager: r.Second.ManagerURI,
	}
}

// FromDetail is the inverse of DetailDoc.Detail.
func FromDetail(d contact.Detail) DetailDoc {
	meta := d.Meta()
	dd := DetailDoc{
		Kind:     string(d.Kind()),
		URI:      meta.DetailURI,
		Linked:   meta.LinkedDetailURIs,
		Contexts: meta.Contexts,
	}
	fields := map[string]string{}

	switch v := d.(type) {
	case contact.Address:
		dd.Value = v.Street
		fields["po_box"], fields["region"], fields["locality"] = v.PostOfficeBox, v.Region, v.Locality
		fields["postcode"], fields["country"] = v.PostCode, v.Country
	case contact.Anniversary:
		dd.Date = formatTime(v.OriginalDate)
		fields["calendar"], fields["subtype"] = v.CalendarID, v.SubType
	case contact.Avatar:
		dd.Value, fields["video"] = v.ImageURL, v.VideoURL
	case contact.Birthday:
		dd.Date, fields["calendar"] = formatTime(v.Date), v.CalendarID
	case contact.EmailAddress:
		dd.Value = v.Address
	case contact.GUID:
		dd.Value = v.GUID
	case contact.Hobby:
		dd.Value = v.Hobby
	case contact.Nickname:
		dd.Value = v.Nickname
	case contact.Note:
		dd.Value = v.Note
	case contact.OnlineAccount:
		dd.Value, dd.SubTypes, dd.Enabled = v.AccountURI, v.SubTypes, v.Enabled
		fields["protocol"], fields["provider"] = v.Protocol, v.ServiceProvider
		fields["path"], fields["icon"] = v.AccountPath, v.AccountIconPath
	case contact.Organization:
		dd.Value, dd.SubTypes = v.Name, v.Department
		fields["role"], fields["title"], fields["location"], fields["logo"] = v.Role, v.Title, v.Location, v.LogoURL
	case contact.PhoneNumber:
		dd.Value, dd.SubTypes = v.Number, v.SubTypes
	case contact.Presence:
		dd.State, dd.Date = v.State.String(), formatTime(v.Timestamp)
		fields["nickname"], fields["message"] = v.Nickname, v.CustomMessage
	case contact.GlobalPresence:
		dd.State, dd.Date = v.State.String(), formatTime(v.Timestamp)
		fields["nickname"], fields["message"] = v.Nickname, v.CustomMessage
	case contact.Ringtone:
		dd.Value, fields["video"] = v.AudioURL, v.VideoURL
	case contact.SyncTarget:
		dd.Value = v.Target
	case contact.Tag:
		dd.Value = v.Tag
	case contact.URL:
		dd.Value, dd.SubTypes = v.URL, v.SubTypes
	case contact.TpMetadata:
		dd.Value, dd.Enabled, fields["account"] = v.TelepathyID, v.AccountEnabled, v.AccountID
	}

	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}
	if len(fields) > 0 {
		dd.Fields = fields
	}
	return dd
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
