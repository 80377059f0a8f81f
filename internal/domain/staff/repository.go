package staff

import "context"

type StaffRepository interface {
	GetByID(ctx context.Context, id string) (Staff, error)
	GetActive(ctx context.Context) ([]Staff, error)
}
