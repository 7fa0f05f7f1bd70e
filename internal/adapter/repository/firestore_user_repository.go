package repository

import (
	"context"
	"sort"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rewear/internal/domain/entity"
	"rewear/internal/domain/repository"
	"rewear/pkg/errors"
)

type firestoreUserRepository struct {
	client *firestore.Client
}

func NewFirestoreUserRepository(client *firestore.Client) repository.UserRepository {
	return &firestoreUserRepository{
		client: client,
	}
}

// Create writes the user together with an emails/{email} reservation in one
// transaction, so two registrations racing on the same address cannot both land.
func (r *firestoreUserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = r.client.Collection(usersCollection).NewDoc().ID
	}

	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	userRef := r.client.Collection(usersCollection).Doc(user.ID)
	emailRef := r.emailRef(user.Email)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(emailRef); err == nil {
			return errors.Conflict("Email already registered")
		} else if status.Code(err) != codes.NotFound {
			return err
		}
		if err := tx.Create(emailRef, map[string]interface{}{
			"userId":    user.ID,
			"createdAt": now,
		}); err != nil {
			return err
		}
		return tx.Create(userRef, user)
	})
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return errors.Conflict("User already exists")
		}
		return asAppError("Failed to create user", err)
	}
	return nil
}

func (r *firestoreUserRepository) emailRef(email string) *firestore.DocumentRef {
	return r.client.Collection(emailsCollection).Doc(emailKey(email))
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(id).Get(ctx)
	if err != nil {
		return nil, readError("User", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	iter := r.client.Collection(usersCollection).Where("email", "==", strings.ToLower(email)).Limit(1).Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, errors.NotFound("User", nil)
	}
	if err != nil {
		return nil, errors.Internal("Failed to get user", err)
	}

	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	return &user, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, user *entity.User) error {
	user.UpdatedAt = time.Now()

	_, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, user)
	if err != nil {
		return errors.Internal("Failed to update user", err)
	}
	return nil
}

func (r *firestoreUserRepository) Delete(ctx context.Context, id string) error {
	userRef := r.client.Collection(usersCollection).Doc(id)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(userRef)
		if status.Code(err) == codes.NotFound {
			return nil
		}
		if err != nil {
			return err
		}
		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return errors.Internal("Failed to parse user data", err)
		}
		if err := tx.Delete(r.emailRef(user.Email)); err != nil {
			return err
		}
		return tx.Delete(userRef)
	})
	if err != nil {
		return asAppError("Failed to delete user", err)
	}
	return nil
}

func (r *firestoreUserRepository) UpdateProfile(ctx context.Context, id string, patch entity.UserPatch) (*entity.User, error) {
	var updates []firestore.Update
	if patch.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *patch.Name})
	}
	if patch.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: *patch.Location})
	}
	if patch.Bio != nil {
		updates = append(updates, firestore.Update{Path: "bio", Value: *patch.Bio})
	}
	if patch.ProfilePicture != nil {
		updates = append(updates, firestore.Update{Path: "profilePicture", Value: *patch.ProfilePicture})
	}
	if patch.Preferences != nil {
		updates = append(updates, firestore.Update{Path: "preferences", Value: patch.Preferences})
	}
	return r.updateFields(ctx, id, updates)
}

func (r *firestoreUserRepository) UpdateAccount(ctx context.Context, id string, patch entity.AdminUserPatch) (*entity.User, error) {
	var updates []firestore.Update
	if patch.IsActive != nil {
		updates = append(updates, firestore.Update{Path: "isActive", Value: *patch.IsActive})
	}
	if patch.IsAdmin != nil {
		role := entity.RoleUser
		if *patch.IsAdmin {
			role = entity.RoleAdmin
		}
		updates = append(updates, firestore.Update{Path: "role", Value: role})
	}
	if patch.Points != nil {
		updates = append(updates, firestore.Update{Path: "points", Value: *patch.Points})
	}
	return r.updateFields(ctx, id, updates)
}

// updateFields touches only the given paths and returns the document as stored afterwards.
func (r *firestoreUserRepository) updateFields(ctx context.Context, id string, updates []firestore.Update) (*entity.User, error) {
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: time.Now()})
	if _, err := r.client.Collection(usersCollection).Doc(id).Update(ctx, updates); err != nil {
		return nil, readError("User", err)
	}
	return r.GetByID(ctx, id)
}

func (r *firestoreUserRepository) baseQuery(filter repository.UserFilter) firestore.Query {
	query := r.client.Collection(usersCollection).Query
	if filter.IsActive != nil {
		query = query.Where("isActive", "==", *filter.IsActive)
	}
	return query
}

func (r *firestoreUserRepository) List(ctx context.Context, filter repository.UserFilter, limit, offset int) ([]*entity.User, int64, error) {
	query := r.baseQuery(filter)

	// Firestore has no substring match; name and email search runs over the filtered set.
	if filter.Search != "" {
		all, err := r.collect(ctx, query)
		if err != nil {
			return nil, 0, err
		}
		search := strings.ToLower(filter.Search)
		matched := make([]*entity.User, 0, len(all))
		for _, u := range all {
			if strings.Contains(strings.ToLower(u.Name), search) || strings.Contains(strings.ToLower(u.Email), search) {
				matched = append(matched, u)
			}
		}
		sort.SliceStable(matched, func(i, j int) bool {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		})

		total := int64(len(matched))
		if offset >= len(matched) {
			return []*entity.User{}, total, nil
		}
		end := len(matched)
		if limit > 0 && offset+limit < end {
			end = offset + limit
		}
		return matched[offset:end], total, nil
	}

	total, err := countQuery(ctx, query)
	if err != nil {
		return nil, 0, errors.Internal("Failed to count users", err)
	}

	query = query.OrderBy("createdAt", firestore.Desc)
	if offset > 0 {
		query = query.Offset(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	users, err := r.collect(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *firestoreUserRepository) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	if filter.Search != "" {
		_, total, err := r.List(ctx, filter, 0, 0)
		return total, err
	}

	total, err := countQuery(ctx, r.baseQuery(filter))
	if err != nil {
		return 0, errors.Internal("Failed to count users", err)
	}
	return total, nil
}

func (r *firestoreUserRepository) Recent(ctx context.Context, limit int) ([]*entity.User, error) {
	query := r.client.Collection(usersCollection).OrderBy("createdAt", firestore.Desc).Limit(limit)
	return r.collect(ctx, query)
}

func (r *firestoreUserRepository) AdjustItemsListed(ctx context.Context, id string, delta int) error {
	_, err := r.client.Collection(usersCollection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "itemsListed", Value: firestore.Increment(delta)},
		{Path: "updatedAt", Value: time.Now()},
	})
	if err != nil {
		return readError("User", err)
	}
	return nil
}

func (r *firestoreUserRepository) collect(ctx context.Context, query firestore.Query) ([]*entity.User, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	users := []*entity.User{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to iterate users", err)
		}

		var user entity.User
		if err := doc.DataTo(&user); err != nil {
			return nil, errors.Internal("Failed to parse user data", err)
		}
		users = append(users, &user)
	}
	return users, nil
}
