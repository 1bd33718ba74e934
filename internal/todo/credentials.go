package todo

// Credentials are the closed enumeration of searchable shapes per type.
// Field names are fixed here and nowhere else; they double as the relational
// column names and the document attribute names, so no external input ever
// reaches statement text.

// ByName matches users whose name equals the given value.
type ByName string

// CredentialField implements repo.Credential.
func (ByName) CredentialField() string { return "name" }

// CredentialValue implements repo.Credential.
func (n ByName) CredentialValue() any { return string(n) }

// IsDone matches tasks by their completion flag.
type IsDone bool

// CredentialField implements repo.Credential.
func (IsDone) CredentialField() string { return "done" }

// CredentialValue implements repo.Credential.
func (d IsDone) CredentialValue() any { return bool(d) }

// OwnedBy matches tasks attached to the user stored under the given
// relational identity. The eager child fetch in the relational backend is
// built on this credential.
type OwnedBy int64

// CredentialField implements repo.Credential.
func (OwnedBy) CredentialField() string { return "owner_id" }

// CredentialValue implements repo.Credential.
func (o OwnedBy) CredentialValue() any { return int64(o) }
