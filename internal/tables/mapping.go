package tables

import "github.com/roach88/contactdb/internal/contact"

// writeOrder is the order in which detail kinds are replaced on write.
var writeOrder = []contact.Kind{
	contact.KindAddress,
	contact.KindAnniversary,
	contact.KindAvatar,
	contact.KindBirthday,
	contact.KindEmailAddress,
	contact.KindGuid,
	contact.KindHobby,
	contact.KindNickname,
	contact.KindNote,
	contact.KindOnlineAccount,
	contact.KindOrganization,
	contact.KindPhoneNumber,
	contact.KindPresence,
	contact.KindRingtone,
	contact.KindSyncTarget,
	contact.KindTag,
	contact.KindUrl,
	contact.KindTpMetadata,
}

var registry = map[contact.Kind]Table{
	contact.KindAddress: {
		kind: contact.KindAddress,
		name: "Addresses",
		columns: []column{
			{"street", colText}, {"postOfficeBox", colText}, {"region", colText},
			{"locality", colText}, {"postCode", colText}, {"country", colText},
		},
		values: func(d contact.Detail) []any {
			a := d.(contact.Address)
			return []any{nullable(a.Street), nullable(a.PostOfficeBox), nullable(a.Region),
				nullable(a.Locality), nullable(a.PostCode), nullable(a.Country)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Address{Common: meta, Street: r.textAt(0), PostOfficeBox: r.textAt(1),
				Region: r.textAt(2), Locality: r.textAt(3), PostCode: r.textAt(4), Country: r.textAt(5)}
		},
	},
	contact.KindAnniversary: {
		kind:    contact.KindAnniversary,
		name:    "Anniversaries",
		columns: []column{{"originalDateTime", colTime}, {"calendarId", colText}, {"subType", colText}},
		values: func(d contact.Detail) []any {
			a := d.(contact.Anniversary)
			return []any{ToMillis(a.OriginalDate), nullable(a.CalendarID), nullable(a.SubType)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Anniversary{Common: meta, OriginalDate: r.timeAt(0), CalendarID: r.textAt(1), SubType: r.textAt(2)}
		},
	},
	contact.KindAvatar: {
		kind:    contact.KindAvatar,
		name:    "Avatars",
		columns: []column{{"imageUrl", colText}, {"videoUrl", colText}},
		values: func(d contact.Detail) []any {
			a := d.(contact.Avatar)
			return []any{nullable(a.ImageURL), nullable(a.VideoURL)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Avatar{Common: meta, ImageURL: r.textAt(0), VideoURL: r.textAt(1)}
		},
	},
	contact.KindBirthday: {
		kind:    contact.KindBirthday,
		name:    "Birthdays",
		columns: []column{{"birthday", colTime}, {"calendarId", colText}},
		values: func(d contact.Detail) []any {
			b := d.(contact.Birthday)
			return []any{ToMillis(b.Date), nullable(b.CalendarID)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Birthday{Common: meta, Date: r.timeAt(0), CalendarID: r.textAt(1)}
		},
	},
	contact.KindEmailAddress: {
		kind:    contact.KindEmailAddress,
		name:    "EmailAddresses",
		columns: []column{{"emailAddress", colText}},
		values: func(d contact.Detail) []any {
			return []any{nullable(d.(contact.EmailAddress).Address)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.EmailAddress{Common: meta, Address: r.textAt(0)}
		},
	},
	contact.KindGuid: {
		kind:    contact.KindGuid,
		name:    "Guids",
		columns: []column{{"guid", colText}},
		values: func(d contact.Detail) []any {
			return []any{nullable(d.(contact.GUID).GUID)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.GUID{Common: meta, GUID: r.textAt(0)}
		},
	},
	contact.KindHobby: {
		kind:    contact.KindHobby,
		name:    "Hobbies",
		columns: []column{{"hobby", colText}},
		values: func(d contact.Detail) []any {
			return []any{nullable(d.(contact.Hobby).Hobby)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Hobby{Common: meta, Hobby: r.textAt(0)}
		},
	},
	contact.KindNickname: {
		kind:    contact.KindNickname,
		name:    "Nicknames",
		columns: []column{{"nickname", colText}},
		values: func(d contact.Detail) []any {
			return []any{nullable(d.(contact.Nickname).Nickname)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Nickname{Common: meta, Nickname: r.textAt(0)}
		},
	},
	contact.KindNote: {
		kind:    contact.KindNote,
		name:    "Notes",
		columns: []column{{"note", colText}},
		values: func(d contact.Detail) []any {
			return []any{nullable(d.(contact.Note).Note)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Note{Common: meta, Note: r.textAt(0)}
		},
	},
	contact.KindOnlineAccount: {
		kind: contact.KindOnlineAccount,
		name: "OnlineAccounts",
		columns: []column{
			{"accountUri", colText}, {"protocol", colText}, {"serviceProvider", colText},
			{"capabilities", colSet}, {"subTypes", colSet}, {"accountPath", colText},
			{"accountIconPath", colText}, {"enabled", colBool},
		},
		values: func(d contact.Detail) []any {
			a := d.(contact.OnlineAccount)
			return []any{nullable(a.AccountURI), nullable(a.Protocol), nullable(a.ServiceProvider),
				EncodeSet(a.Capabilities), EncodeSet(a.SubTypes), nullable(a.AccountPath),
				nullable(a.AccountIconPath), a.Enabled}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.OnlineAccount{Common: meta, AccountURI: r.textAt(0), Protocol: r.textAt(1),
				ServiceProvider: r.textAt(2), Capabilities: r.setAt(3), SubTypes: r.setAt(4),
				AccountPath: r.textAt(5), AccountIconPath: r.textAt(6), Enabled: r.boolAt(7)}
		},
	},
	contact.KindOrganization: {
		kind: contact.KindOrganization,
		name: "Organizations",
		columns: []column{
			{"name", colText}, {"role", colText}, {"title", colText},
			{"location", colText}, {"department", colSet}, {"logoUrl", colText},
		},
		values: func(d contact.Detail) []any {
			o := d.(contact.Organization)
			return []any{nullable(o.Name), nullable(o.Role), nullable(o.Title),
				nullable(o.Location), EncodeSet(o.Department), nullable(o.LogoURL)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Organization{Common: meta, Name: r.textAt(0), Role: r.textAt(1), Title: r.textAt(2),
				Location: r.textAt(3), Department: r.setAt(4), LogoURL: r.textAt(5)}
		},
	},
	contact.KindPhoneNumber: {
		kind:    contact.KindPhoneNumber,
		name:    "PhoneNumbers",
		columns: []column{{"phoneNumber", colText}, {"subTypes", colSet}, {"normalizedNumber", colText}},
		values: func(d contact.Detail) []any {
			p := d.(contact.PhoneNumber)
			normalized := p.Normalized
			if normalized == "" {
				normalized = NormalizePhoneNumber(p.Number)
			}
			return []any{nullable(p.Number), EncodeSet(p.SubTypes), nullable(normalized)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.PhoneNumber{Common: meta, Number: r.textAt(0), SubTypes: r.setAt(1), Normalized: r.textAt(2)}
		},
	},
	contact.KindPresence: {
		kind: contact.KindPresence,
		name: "Presences",
		columns: []column{
			{"presenceState", colInt}, {"timestamp", colTime}, {"nickname", colText}, {"customMessage", colText},
		},
		values: func(d contact.Detail) []any {
			p := d.(contact.Presence)
			return []any{int64(p.State), ToMillis(p.Timestamp), nullable(p.Nickname), nullable(p.CustomMessage)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Presence{Common: meta, State: contact.PresenceState(r.intAt(0)), Timestamp: r.timeAt(1),
				Nickname: r.textAt(2), CustomMessage: r.textAt(3)}
		},
	},
	contact.KindGlobalPresence: {
		kind: contact.KindGlobalPresence,
		name: "GlobalPresences",
		columns: []column{
			{"presenceState", colInt}, {"timestamp", colTime}, {"nickname", colText}, {"customMessage", colText},
		},
		values: func(d contact.Detail) []any {
			p := d.(contact.GlobalPresence)
			return []any{int64(p.State), ToMillis(p.Timestamp), nullable(p.Nickname), nullable(p.CustomMessage)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.GlobalPresence{Common: meta, State: contact.PresenceState(r.intAt(0)), Timestamp: r.timeAt(1),
				Nickname: r.textAt(2), CustomMessage: r.textAt(3)}
		},
	},
	contact.KindRingtone: {
		kind:    contact.KindRingtone,
		name:    "Ringtones",
		columns: []column{{"audioRingtone", colText}, {"videoRingtone", colText}},
		values: func(d contact.Detail) []any {
			rt := d.(contact.Ringtone)
			return []any{nullable(rt.AudioURL), nullable(rt.VideoURL)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Ringtone{Common: meta, AudioURL: r.textAt(0), VideoURL: r.textAt(1)}
		},
	},
	contact.KindSyncTarget: {
		kind:    contact.KindSyncTarget,
		name:    "SyncTargets",
		columns: []column{{"syncTarget", colText}},
		values: func(d contact.Detail) []any {
			return []any{nullable(d.(contact.SyncTarget).Target)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.SyncTarget{Common: meta, Target: r.textAt(0)}
		},
	},
	contact.KindTag: {
		kind:    contact.KindTag,
		name:    "Tags",
		columns: []column{{"tag", colText}},
		values: func(d contact.Detail) []any {
			return []any{nullable(d.(contact.Tag).Tag)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.Tag{Common: meta, Tag: r.textAt(0)}
		},
	},
	contact.KindUrl: {
		kind:    contact.KindUrl,
		name:    "Urls",
		columns: []column{{"url", colText}, {"subTypes", colSet}},
		values: func(d contact.Detail) []any {
			u := d.(contact.URL)
			return []any{nullable(u.URL), EncodeSet(u.SubTypes)}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.URL{Common: meta, URL: r.textAt(0), SubTypes: r.setAt(1)}
		},
	},
	contact.KindTpMetadata: {
		kind:    contact.KindTpMetadata,
		name:    "TpMetadata",
		columns: []column{{"telepathyId", colText}, {"accountId", colText}, {"accountEnabled", colBool}},
		values: func(d contact.Detail) []any {
			m := d.(contact.TpMetadata)
			return []any{nullable(m.TelepathyID), nullable(m.AccountID), m.AccountEnabled}
		},
		build: func(r *Row, meta contact.Common) contact.Detail {
			return contact.TpMetadata{Common: meta, TelepathyID: r.textAt(0), AccountID: r.textAt(1), AccountEnabled: r.boolAt(2)}
		},
	},
}

// Lookup returns the table for kind. The boolean is false for kinds the
// engine does not recognise.
func Lookup(kind contact.Kind) (Table, bool) {
	t, ok := registry[kind]
	return t, ok
}

// Recognized reports whether d is a detail the engine can store.
// Only the value forms of the detail types are recognised: pointers to
// them and Unsupported details are not, even when their kind names a
// known table.
func Recognized(d contact.Detail) bool {
	switch d.(type) {
	case contact.Address, contact.Anniversary, contact.Avatar, contact.Birthday,
		contact.EmailAddress, contact.GUID, contact.Hobby, contact.Nickname,
		contact.Note, contact.OnlineAccount, contact.Organization, contact.PhoneNumber,
		contact.Presence, contact.Ringtone, contact.SyncTarget, contact.Tag,
		contact.URL, contact.TpMetadata, contact.GlobalPresence:
		_, ok := registry[d.Kind()]
		return ok
	default:
		return false
	}
}

// Writable returns the tables replaced on write, in write order.
// GlobalPresence is not included: it is derived from Presence.
func Writable() []Table {
	out := make([]Table, len(writeOrder))
	for i, k := range writeOrder {
		out[i] = registry[k]
	}
	return out
}

// GlobalPresences is the table holding the derived presence summary.
func GlobalPresences() Table {
	return registry[contact.KindGlobalPresence]
}
