package relationship

import "strings"

// MaxRowsPerInsert bounds a multi-row insert so the statement stays under
// SQLite's default limit of 999 bound parameters.
const MaxRowsPerInsert = 333

// Statement is a SQL statement with its bind arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Stored-edge statements.
const (
	SelectSQL = `SELECT firstId, secondId, type FROM Relationships ORDER BY firstId, secondId, type`
	DeleteSQL = `DELETE FROM Relationships WHERE firstId = ? AND secondId = ? AND type = ?`

	// DeleteForContactSQL removes every edge naming a contact.
	DeleteForContactSQL = `DELETE FROM Relationships WHERE firstId = ? OR secondId = ?`
)

// InsertStatements batches edges into multi-row inserts of at most
// maxRows rows each. A non-positive maxRows means MaxRowsPerInsert.
func InsertStatements(edges []Edge, maxRows int) []Statement {
	if maxRows <= 0 || maxRows > MaxRowsPerInsert {
		maxRows = MaxRowsPerInsert
	}
	var stmts []Statement
	for start := 0; start < len(edges); start += maxRows {
		end := min(start+maxRows, len(edges))
		chunk := edges[start:end]

		var b strings.Builder
		b.WriteString("INSERT INTO Relationships (firstId, secondId, type) VALUES ")
		args := make([]any, 0, 3*len(chunk))
		for i, e := range chunk {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString("(?, ?, ?)")
			args = append(args, int64(e.First), int64(e.Second), e.Type)
		}
		stmts = append(stmts, Statement{SQL: b.String(), Args: args})
	}
	return stmts
}
