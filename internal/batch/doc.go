// Package batch reads and writes contact batch documents.
//
// A document holds contacts and relationships in a flat, file-friendly
// form. The same document is accepted as YAML or as CUE:
//
//	contacts:
//	  - label: Ada Lovelace
//	    first: Ada
//	    last: Lovelace
//	    details:
//	      - kind: PhoneNumber
//	        value: "+44 20 7946 0018"
//	        subtypes: [Mobile]
//	      - kind: Presence
//	        state: available
//	relationships:
//	  - first: 2
//	    type: HasSpouse
//	    second: 3
//
// Each detail names its kind and carries its primary value in value.
// Secondary fields go in fields, keyed by the names listed in fieldNames.
// A kind the engine does not know is kept as contact.Unsupported so the
// writer can reject it.
package batch
