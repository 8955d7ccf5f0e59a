package contact

// ContactRef refers to a contact, optionally qualified by the manager that
// owns it. An empty ManagerURI means "this store".
type ContactRef struct {
	ID         Handle
	ManagerURI string
}

// Relationship is a typed, directed edge between two contacts.
// Storage treats (A, B, t) and (B, A, t) as distinct rows.
type Relationship struct {
	First  ContactRef
	Second ContactRef
	Type   string
}

// NewRelationship builds an edge between two local contacts.
func NewRelationship(first Handle, typ string, second Handle) Relationship {
	return Relationship{
		First:  ContactRef{ID: first},
		Second: ContactRef{ID: second},
		Type:   typ,
	}
}

// Well-known relationship types.
const (
	RelationshipAggregates = "Aggregates"
	RelationshipHasMember  = "HasMember"
	RelationshipIsSameAs   = "IsSameAs"
	RelationshipHasManager = "HasManager"
	RelationshipHasSpouse  = "HasSpouse"
)
