package mongostore

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

func (s *Store) books(ctx context.Context) (*mongo.Collection, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	return db.Collection(booksCollection), nil
}

func (s *Store) ListBooks(ctx context.Context, userID string, filter store.BookFilter) ([]entities.Book, error) {
	books, err := s.books(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}

	cursor, err := books.Find(ctx, bookQuery(userID, filter), opts)
	if err != nil {
		return nil, storeErr(err)
	}
	result := []entities.Book{}
	if err := cursor.All(ctx, &result); err != nil {
		return nil, storeErr(err)
	}
	for i := range result {
		normalizeBook(&result[i])
	}
	return result, nil
}

func (s *Store) GetBook(ctx context.Context, userID, id string) (*entities.Book, error) {
	books, err := s.books(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	var book entities.Book
	if err := books.FindOne(ctx, byOwner(userID, id)).Decode(&book); err != nil {
		return nil, storeErr(err)
	}
	normalizeBook(&book)
	return &book, nil
}

func (s *Store) CreateBook(ctx context.Context, book *entities.Book) error {
	books, err := s.books(ctx)
	if err != nil {
		return storeErr(err)
	}
	prepareBook(book)
	_, err = books.InsertOne(ctx, book)
	return storeErr(err)
}

func (s *Store) CreateBooks(ctx context.Context, list []entities.Book) error {
	if len(list) == 0 {
		return nil
	}
	books, err := s.books(ctx)
	if err != nil {
		return storeErr(err)
	}
	docs := make([]any, len(list))
	for i := range list {
		prepareBook(&list[i])
		docs[i] = list[i]
	}
	_, err = books.InsertMany(ctx, docs)
	return storeErr(err)
}

func (s *Store) UpdateBook(ctx context.Context, userID, id string, patch store.BookPatch) (*entities.Book, error) {
	books, err := s.books(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var book entities.Book
	if err := books.FindOneAndUpdate(ctx, byOwner(userID, id), bookUpdate(patch), opts).Decode(&book); err != nil {
		return nil, storeErr(err)
	}
	normalizeBook(&book)
	return &book, nil
}

func (s *Store) DeleteBook(ctx context.Context, userID, id string) error {
	books, err := s.books(ctx)
	if err != nil {
		return storeErr(err)
	}
	result, err := books.DeleteOne(ctx, byOwner(userID, id))
	if err != nil {
		return storeErr(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountBooks(ctx context.Context, userID string) (int64, error) {
	books, err := s.books(ctx)
	if err != nil {
		return 0, storeErr(err)
	}
	return books.CountDocuments(ctx, bson.M{"userId": userID})
}

func (s *Store) AddBookToCollections(ctx context.Context, userID, bookID string, collectionIDs []string, _ time.Time) error {
	books, err := s.books(ctx)
	if err != nil {
		return storeErr(err)
	}
	update := bson.M{"$addToSet": bson.M{"collections": bson.M{"$each": store.UniqueIDs(collectionIDs)}}}
	result, err := books.UpdateOne(ctx, byOwner(userID, bookID), update)
	if err != nil {
		return storeErr(err)
	}
	if result.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) RemoveBookFromCollection(ctx context.Context, userID, bookID, collectionID string) error {
	books, err := s.books(ctx)
	if err != nil {
		return storeErr(err)
	}
	_, err = books.UpdateOne(ctx, byOwner(userID, bookID), bson.M{"$pull": bson.M{"collections": collectionID}})
	return storeErr(err)
}

// bookQuery translates a filter into a find document. The search text is
// quoted so it never acts as a regular expression.
func bookQuery(userID string, filter store.BookFilter) bson.M {
	query := bson.M{"userId": userID}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"author": pattern},
			bson.M{"isbn": pattern},
		}
	}
	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Genre != "" {
		query["genre"] = filter.Genre
	}
	if filter.CollectionID != "" {
		query["collections"] = filter.CollectionID
	}
	return query
}

// bookUpdate builds the $set / $unset document for a patch.
func bookUpdate(patch store.BookPatch) bson.M {
	set := bson.M{"updatedAt": patch.UpdatedAt}
	unset := bson.M{}

	setString := func(field string, v *string) {
		if v == nil {
			return
		}
		if *v == "" {
			unset[field] = ""
			return
		}
		set[field] = *v
	}
	setInt := func(field string, v *int) {
		if v == nil {
			return
		}
		if *v == 0 {
			unset[field] = ""
			return
		}
		set[field] = *v
	}

	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Author != nil {
		set["author"] = *patch.Author
	}
	if patch.Genre != nil {
		set["genre"] = *patch.Genre
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}
	setString("isbn", patch.ISBN)
	setString("coverImage", patch.CoverImage)
	setString("notes", patch.Notes)
	setInt("publicationYear", patch.PublicationYear)
	setInt("rating", patch.Rating)
	if patch.CompletedDate != nil {
		if patch.CompletedDate.IsZero() {
			unset["completedDate"] = ""
		} else {
			set["completedDate"] = *patch.CompletedDate
		}
	}
	if patch.CollectionIDs != nil {
		set["collections"] = store.UniqueIDs(*patch.CollectionIDs)
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update
}

func prepareBook(book *entities.Book) {
	if book.ID == "" {
		book.ID = primitive.NewObjectID().Hex()
	}
	// An explicit empty array keeps $addToSet and $pull valid on the field.
	book.CollectionIDs = store.UniqueIDs(book.CollectionIDs)
}

func normalizeBook(book *entities.Book) {
	if book.CollectionIDs == nil {
		book.CollectionIDs = []string{}
	}
}
