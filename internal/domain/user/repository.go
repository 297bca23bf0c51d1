package user

import "context"

type Repository interface {
	Transaction(ctx context.Context, fn func(Repository) error) error
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ReplaceSystemRoles(ctx context.Context, userID uint, roles []SystemRole) error

	// Delete removes the user together with every reference the schema
	// does not cascade on its own: membership rows are dropped, story and
	// release plan creator/assignee references are nulled out.
	Delete(ctx context.Context, userID uint) error
}
