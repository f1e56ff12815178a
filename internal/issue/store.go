package issue

import "context"

// Query filters issue listings; zero-valued fields are unset.
type Query struct {
	Status        Status
	Subcategory   string
	LinkedAuditID string
}

func (q Query) Matches(r *Record) bool {
	if q.Status != "" && r.Status != q.Status {
		return false
	}
	if q.Subcategory != "" && r.Subcategory != q.Subcategory {
		return false
	}
	if q.LinkedAuditID != "" && r.LinkedAuditID != q.LinkedAuditID {
		return false
	}
	return true
}

type Store interface {
	Insert(ctx context.Context, record *Record) (string, error)
	Get(ctx context.Context, id string) (*Record, error)
	Update(ctx context.Context, record *Record) error
	Find(ctx context.Context, q Query) ([]*Record, error)
}
