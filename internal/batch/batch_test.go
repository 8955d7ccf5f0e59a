package batch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/contactdb/internal/contact"
)

const adaYAML = `
contacts:
  - label: Ada Lovelace
    first: Ada
    last: Lovelace
    gender: female
    favorite: true
    details:
      - kind: PhoneNumber
        value: "+44 20 7946 0018"
        subtypes: [Mobile]
      - kind: Birthday
        date: "1815-12-10"
      - kind: Presence
        state: available
        fields:
          nickname: ada
      - kind: Tag
        value: mathematician
        uri: tag:1
        contexts: [Work]
      - kind: Fax
        value: "123"
relationships:
  - first: 2
    type: HasSpouse
    second: 3
    second_manager: org.example
`

const adaCUE = `
contacts: [{
	label:    "Ada Lovelace"
	first:    "Ada"
	last:     "Lovelace"
	gender:   "female"
	favorite: true
	details: [
		{kind: "PhoneNumber", value: "+44 20 7946 0018", subtypes: ["Mobile"]},
		{kind: "Birthday", date: "1815-12-10"},
		{kind: "Presence", state: "available", fields: nickname: "ada"},
		{kind: "Tag", value: "mathematician", uri: "tag:1", contexts: ["Work"]},
		{kind: "Fax", value: "123"},
	]
}]
relationships: [{first: 2, type: "HasSpouse", second: 3, second_manager: "org.example"}]
`

func wantAda() contact.Contact {
	return contact.Contact{
		DisplayLabel: "Ada Lovelace",
		Name:         contact.Name{First: "Ada", Last: "Lovelace"},
		Gender:       contact.GenderFemale,
		Favorite:     true,
		Details: []contact.Detail{
			contact.PhoneNumber{Number: "+44 20 7946 0018", SubTypes: []string{"Mobile"}},
			contact.Birthday{Date: time.Date(1815, time.December, 10, 0, 0, 0, 0, time.UTC)},
			contact.Presence{State: contact.PresenceAvailable, Nickname: "ada"},
			contact.Tag{Tag: "mathematician", Common: contact.Common{DetailURI: "tag:1", Contexts: []string{"Work"}}},
			contact.Unsupported{Name: "Fax"},
		},
	}
}

func TestParse(t *testing.T) {
	for _, tc := range []struct {
		name   string
		data   string
		format Format
	}{
		{"yaml", adaYAML, FormatYAML},
		{"cue", adaCUE, FormatCUE},
	} {
		t.Run(tc.name, func(t *testing.T) {
			doc, err := Parse([]byte(tc.data), tc.format)
			require.NoError(t, err)

			contacts, err := doc.ContactList()
			require.NoError(t, err)
			require.Len(t, contacts, 1)
			assert.Equal(t, wantAda(), contacts[0])

			rels := doc.RelationshipList()
			require.Len(t, rels, 1)
			assert.Equal(t, contact.Relationship{
				First:  contact.ContactRef{ID: 2},
				Second: contact.ContactRef{ID: 3, ManagerURI: "org.example"},
				Type:   "HasSpouse",
			}, rels[0])
		})
	}
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("contacts:\n  - lable: typo\n"), FormatYAML)
	require.Error(t, err)
}

func TestParse_EmptyYAML(t *testing.T) {
	doc, err := Parse(nil, FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, doc.Contacts)
}

func TestDetail_UnknownField(t *testing.T) {
	_, err := DetailDoc{Kind: "Tag", Value: "x", Fields: map[string]string{"colour": "red"}}.Detail()
	assert.ErrorContains(t, err, `unknown field "colour"`)
}

func TestDetail_GlobalPresenceFields(t *testing.T) {
	d, err := DetailDoc{
		Kind:   "GlobalPresence",
		State:  "away",
		Fields: map[string]string{"nickname": "desk", "message": "out"},
	}.Detail()
	require.NoError(t, err)
	assert.Equal(t, contact.GlobalPresence{State: contact.PresenceAway, Nickname: "desk", CustomMessage: "out"}, d)
}

func TestDetail_BadPresenceState(t *testing.T) {
	_, err := DetailDoc{Kind: "Presence", State: "sleeping"}.Detail()
	assert.Error(t, err)
}

func TestContactList_NamesBadContact(t *testing.T) {
	doc := &Document{Contacts: []ContactDoc{
		{Label: "ok"},
		{Label: "bad", Created: "yesterday"},
	}}
	_, err := doc.ContactList()
	assert.ErrorContains(t, err, "contacts[1]: created")
}

func TestFromContact_RoundTrip(t *testing.T) {
	c := wantAda()
	c.Details = c.Details[:4]
	c.ID = 7
	c.Created = time.Date(2026, time.January, 1, 0, 0, 1, 0, time.UTC)
	c.Modified = c.Created
	c.Details = append(c.Details,
		contact.Address{Street: "12 St James's Square", Locality: "London", Country: "UK"},
		contact.OnlineAccount{AccountURI: "ada@jabber.example", Protocol: "jabber", SubTypes: []string{"Chat"}, Enabled: true},
		contact.GlobalPresence{State: contact.PresenceAway, CustomMessage: "out"},
	)

	got, err := FromContact(c).Contact()
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestFromDetail_DropsEmptyFields(t *testing.T) {
	dd := FromDetail(contact.Note{Note: "n"})
	assert.Equal(t, DetailDoc{Kind: "Note", Value: "n"}, dd)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ada.cue")
	require.NoError(t, os.WriteFile(path, []byte(adaCUE), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, doc.Contacts, 1)

	_, err = Load(filepath.Join(dir, "ada.txt"))
	assert.ErrorContains(t, err, "unsupported batch file")

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
