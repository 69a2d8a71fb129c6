package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentalhub/internal/domain/entity"
	"rentalhub/internal/domain/repository"
	"rentalhub/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

// NewFirestoreUserRepository reads display data from the account service's
// "users" collection. The chat layer never writes there.
func NewFirestoreUserRepository(client *firestore.Client) repository.UserDirectory {
	return &firestoreUserRepository{
		client: client,
	}
}

func (r *firestoreUserRepository) GetUser(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection("users").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID

	return &user, nil
}
