package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

func (s *Store) ListCollections(ctx context.Context, userID string) ([]entities.Collection, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	cursor, err := db.Collection(collectionsCollection).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, storeErr(err)
	}
	result := []entities.Collection{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, storeErr(err)
	}
	return result, nil
}

func (s *Store) GetCollection(ctx context.Context, userID, id string) (*entities.Collection, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return getCollection(ctx, db, userID, id)
}

func (s *Store) CreateCollection(ctx context.Context, collection *entities.Collection) error {
	db, err := s.db(ctx)
	if err != nil {
		return storeErr(err)
	}
	if collection.ID == "" {
		collection.ID = primitive.NewObjectID().Hex()
	}
	_, err = db.Collection(collectionsCollection).InsertOne(ctx, collection)
	return storeErr(err)
}

func (s *Store) UpdateCollection(ctx context.Context, userID, id string, patch store.CollectionPatch) (*entities.Collection, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	set := bson.M{"updatedAt": patch.UpdatedAt}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Color != nil {
		set["color"] = *patch.Color
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var collection entities.Collection
	err = db.Collection(collectionsCollection).
		FindOneAndUpdate(ctx, byOwner(userID, id), bson.M{"$set": set}, opts).
		Decode(&collection)
	if err != nil {
		return nil, storeErr(err)
	}
	return &collection, nil
}

// DeleteCollection removes the collection and pulls its id from the owner's books.
func (s *Store) DeleteCollection(ctx context.Context, userID, id string) error {
	db, err := s.db(ctx)
	if err != nil {
		return storeErr(err)
	}
	return s.atomically(ctx, db, func(ctx context.Context) error {
		result, err := db.Collection(collectionsCollection).DeleteOne(ctx, byOwner(userID, id))
		if err != nil {
			return storeErr(err)
		}
		if result.DeletedCount == 0 {
			return store.ErrNotFound
		}
		_, err = db.Collection(booksCollection).UpdateMany(ctx,
			bson.M{"userId": userID, "collections": id},
			bson.M{"$pull": bson.M{"collections": id}},
		)
		return storeErr(err)
	})
}

// SetCollectionMembership strips the collection from every owned book, then
// adds it to the owned books among bookIDs.
func (s *Store) SetCollectionMembership(ctx context.Context, userID, collectionID string, bookIDs []string, _ time.Time) error {
	db, err := s.db(ctx)
	if err != nil {
		return storeErr(err)
	}
	bookIDs = store.UniqueIDs(bookIDs)

	return s.atomically(ctx, db, func(ctx context.Context) error {
		if _, err := getCollection(ctx, db, userID, collectionID); err != nil {
			return storeErr(err)
		}

		books := db.Collection(booksCollection)
		if _, err := books.UpdateMany(ctx,
			bson.M{"userId": userID, "collections": collectionID},
			bson.M{"$pull": bson.M{"collections": collectionID}},
		); err != nil {
			return storeErr(err)
		}

		if len(bookIDs) == 0 {
			return nil
		}
		_, err := books.UpdateMany(ctx,
			bson.M{"userId": userID, "_id": bson.M{"$in": bookIDs}},
			bson.M{"$addToSet": bson.M{"collections": collectionID}},
		)
		return storeErr(err)
	})
}

func getCollection(ctx context.Context, db *mongo.Database, userID, id string) (*entities.Collection, error) {
	var collection entities.Collection
	if err := db.Collection(collectionsCollection).FindOne(ctx, byOwner(userID, id)).Decode(&collection); err != nil {
		return nil, storeErr(err)
	}
	return &collection, nil
}
