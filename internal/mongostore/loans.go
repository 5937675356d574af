package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/librarian/internal/entities"
	"github.com/mrlokans/librarian/internal/store"
)

func (s *Store) ListLoans(ctx context.Context, userID string) ([]entities.Loan, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	opts := options.Find().SetSort(bson.D{{Key: "loanDate", Value: -1}})
	cursor, err := db.Collection(loansCollection).Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, storeErr(err)
	}
	loans := []entities.Loan{}
	if err := cursor.All(ctx, &loans); err != nil {
		return nil, storeErr(err)
	}
	if err := attachBooks(ctx, db, userID, loans); err != nil {
		return nil, storeErr(err)
	}
	return loans, nil
}

func (s *Store) GetLoan(ctx context.Context, userID, id string) (*entities.Loan, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, storeErr(err)
	}
	var loan entities.Loan
	if err := db.Collection(loansCollection).FindOne(ctx, byOwner(userID, id)).Decode(&loan); err != nil {
		return nil, storeErr(err)
	}
	return withBook(ctx, db, userID, &loan)
}

func (s *Store) CreateLoan(ctx context.Context, loan *entities.Loan) error {
	db, err := s.db(ctx)
	if err != nil {
		return storeErr(err)
	}
	if loan.ID == "" {
		loan.ID = primitive.NewObjectID().Hex()
	}
	if _, err := db.Collection(loansCollection).InsertOne(ctx, loan); err != nil {
		return storeErr(err)
	}
	_, err = withBook(ctx, db, loan.UserID, loan)
	return storeErr(err)
}

func (s *Store) UpdateLoan(ctx context.Context, userID, id string, patch store.LoanPatch) (*entities.Loan, error) {
	db, err := s.db(ctx)
	if err != nil {
		return nil, storeErr(err)
	}

	set := bson.M{"updatedAt": patch.UpdatedAt}
	unset := bson.M{}
	if patch.BookID != nil {
		set["bookId"] = *patch.BookID
	}
	if patch.BorrowerName != nil {
		set["borrowerName"] = *patch.BorrowerName
	}
	if patch.BorrowerEmail != nil {
		set["borrowerEmail"] = *patch.BorrowerEmail
	}
	if patch.Notes != nil {
		set["notes"] = *patch.Notes
	}
	if patch.LoanDate != nil {
		set["loanDate"] = *patch.LoanDate
	}
	if patch.DueDate != nil {
		set["dueDate"] = *patch.DueDate
	}
	if patch.ReturnedDate != nil {
		if patch.ReturnedDate.IsZero() {
			unset["returnedDate"] = ""
		} else {
			set["returnedDate"] = *patch.ReturnedDate
		}
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var loan entities.Loan
	if err := db.Collection(loansCollection).FindOneAndUpdate(ctx, byOwner(userID, id), update, opts).Decode(&loan); err != nil {
		return nil, storeErr(err)
	}
	return withBook(ctx, db, userID, &loan)
}

func (s *Store) DeleteLoan(ctx context.Context, userID, id string) error {
	db, err := s.db(ctx)
	if err != nil {
		return storeErr(err)
	}
	result, err := db.Collection(loansCollection).DeleteOne(ctx, byOwner(userID, id))
	if err != nil {
		return storeErr(err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func withBook(ctx context.Context, db *mongo.Database, userID string, loan *entities.Loan) (*entities.Loan, error) {
	loans := []entities.Loan{*loan}
	if err := attachBooks(ctx, db, userID, loans); err != nil {
		return nil, storeErr(err)
	}
	loan.Book = loans[0].Book
	return loan, nil
}

// attachBooks resolves the book reference of each loan with a single $in query.
func attachBooks(ctx context.Context, db *mongo.Database, userID string, loans []entities.Loan) error {
	if len(loans) == 0 {
		return nil
	}
	ids := make([]string, 0, len(loans))
	for _, loan := range loans {
		ids = append(ids, loan.BookID)
	}

	opts := options.Find().SetProjection(bson.M{"title": 1, "author": 1, "coverImage": 1})
	cursor, err := db.Collection(booksCollection).Find(ctx,
		bson.M{"userId": userID, "_id": bson.M{"$in": store.UniqueIDs(ids)}},
		opts,
	)
	if err != nil {
		return storeErr(err)
	}
	var books []entities.Book
	if err := cursor.All(ctx, &books); err != nil {
		return storeErr(err)
	}

	byID := make(map[string]*entities.BookSummary, len(books))
	for i := range books {
		byID[books[i].ID] = books[i].Summary()
	}
	for i := range loans {
		loans[i].Book = byID[loans[i].BookID]
	}
	return nil
}
