package domain

// IDField is the key under which every stored document exposes its id.
const IDField = "_id"

// EmailField is the per-collection uniqueness key for submissions.
const EmailField = "email"

// Collection names, shared by every store backend.
const (
	CollectionUsers              = "users"
	CollectionSupplies           = "supplies"
	CollectionCommunityGratitude = "communityGratitude"
	CollectionTestimonial        = "testimonial"
	CollectionVolunteer          = "volunteer"
)

// Document is a schema-less record as supplied by the client.
type Document map[string]any

// ID returns the document id, or "" when it has none.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Email returns the email field when it is a string.
func (d Document) Email() (string, bool) {
	email, ok := d[EmailField].(string)
	return email, ok
}

// WithoutID returns a shallow copy with the id key removed.
func (d Document) WithoutID() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// InsertResult mirrors the store acknowledgment for a single insert.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult mirrors the store acknowledgment for a single update.
type UpdateResult struct {
	Acknowledged  bool    `json:"acknowledged"`
	MatchedCount  int64   `json:"matchedCount"`
	ModifiedCount int64   `json:"modifiedCount"`
	UpsertedCount int64   `json:"upsertedCount"`
	UpsertedID    *string `json:"upsertedId"`
}

// DeleteResult mirrors the store acknowledgment for a single delete.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}
