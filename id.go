package custody

import "github.com/xraph/custody/id"

// ID is the primary identifier type for all persisted custody records.
type ID = id.ID

// Prefix identifies the record type encoded in a TypeID.
type Prefix = id.Prefix
