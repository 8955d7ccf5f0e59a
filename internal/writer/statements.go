package writer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roach88/contactdb/internal/contact"
	"github.com/roach88/contactdb/internal/relationship"
	"github.com/roach88/contactdb/internal/store"
	"github.com/roach88/contactdb/internal/tables"
)

// tableStmts are the prepared statements of one detail table.
type tableStmts struct {
	table  tables.Table
	insert *sql.Stmt
	delete *sql.Stmt
}

// statements holds every statement the writer reuses across calls.
// Statements are bound to a call's transaction with tx.StmtContext.
type statements struct {
	insertContact *sql.Stmt
	updateContact *sql.Stmt
	deleteContact *sql.Stmt
	contactExists *sql.Stmt

	insertCommon *sql.Stmt
	deleteCommon *sql.Stmt

	details        map[contact.Kind]*tableStmts
	globalPresence *tableStmts

	deleteRelationship *sql.Stmt
	deleteContactEdges *sql.Stmt
	setIdentity        *sql.Stmt
	clearIdentity      *sql.Stmt

	all []*sql.Stmt
}

func prepare(ctx context.Context, s *store.Store) (*statements, error) {
	st := &statements{details: make(map[contact.Kind]*tableStmts)}

	var firstErr error
	p := func(query string) *sql.Stmt {
		if firstErr != nil {
			return nil
		}
		stmt, err := s.Prepare(ctx, query)
		if err != nil {
			firstErr = err
			return nil
		}
		st.all = append(st.all, stmt)
		return stmt
	}
	table := func(t tables.Table) *tableStmts {
		return &tableStmts{table: t, insert: p(t.InsertSQL()), delete: p(t.DeleteSQL())}
	}

	st.insertContact = p(store.InsertContactSQL)
	st.updateContact = p(store.UpdateContactSQL)
	st.deleteContact = p(store.DeleteContactSQL)
	st.contactExists = p(store.ContactExistsSQL)
	st.insertCommon = p(tables.InsertCommonSQL)
	st.deleteCommon = p(tables.DeleteCommonSQL)
	for _, t := range tables.Writable() {
		st.details[t.Kind()] = table(t)
	}
	st.globalPresence = table(tables.GlobalPresences())
	st.deleteRelationship = p(relationship.DeleteSQL)
	st.deleteContactEdges = p(relationship.DeleteForContactSQL)
	st.setIdentity = p(store.SetIdentitySQL)
	st.clearIdentity = p(store.ClearIdentitySQL)

	if firstErr != nil {
		st.close()
		return nil, firstErr
	}
	return st, nil
}

func (st *statements) close() error {
	var errs []error
	for _, stmt := range st.all {
		if err := stmt.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	st.all = nil
	return errors.Join(errs...)
}
