package store

import (
	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/tables"
)

// Core row statements. The bind order of InsertContactSQL and
// UpdateContactSQL matches ContactValues; UpdateContactSQL takes the
// contactId last.
const (
	InsertContactSQL = `INSERT INTO Contacts (
		displayLabel, displayLabelGroup, firstName, lastName, middleName,
		prefix, suffix, customLabel, created, modified, gender, isFavorite)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	UpdateContactSQL = `UPDATE Contacts SET
		displayLabel = ?, displayLabelGroup = ?, firstName = ?, lastName = ?,
		middleName = ?, prefix = ?, suffix = ?, customLabel = ?,
		created = COALESCE(?, created),
		modified = ?, gender = ?, isFavorite = ?
		WHERE contactId = ?`

	DeleteContactSQL = `DELETE FROM Contacts WHERE contactId = ?`

	ContactExistsSQL = `SELECT 1 FROM Contacts WHERE contactId = ?`

	selectContactSQL = `SELECT contactId, displayLabel, firstName, lastName,
		middleName, prefix, suffix, customLabel, created, modified, gender, isFavorite
		FROM Contacts WHERE contactId = ?`
)

// Identity slot statements.
const (
	SetIdentitySQL    = `INSERT OR REPLACE INTO Identities (identity, contactId) VALUES (?, ?)`
	ClearIdentitySQL  = `DELETE FROM Identities WHERE identity = ?`
	selectIdentitySQL = `SELECT contactId FROM Identities WHERE identity = ?`
)

// ContactValues returns the bind values of the core row of c.
func ContactValues(c *contact.Contact) []any {
	return []any{
		nullText(c.DisplayLabel),
		nullText(contact.DisplayLabelGroup(c.DisplayLabel)),
		nullText(c.Name.First),
		nullText(c.Name.Last),
		nullText(c.Name.Middle),
		nullText(c.Name.Prefix),
		nullText(c.Name.Suffix),
		nullText(c.Name.CustomLabel),
		tables.ToMillis(c.Created),
		tables.ToMillis(c.Modified),
		int64(c.Gender),
		c.Favorite,
	}
}

func nullText(s string) any {
	if s == "" {
		return nil
	}
	return s
}
