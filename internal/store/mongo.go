package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/personal-library/internal/models"
)

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Username  string             `bson:"username"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type bookDoc struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Title           string             `bson:"title"`
	Author          string             `bson:"author"`
	Genre           string             `bson:"genre"`
	PublicationDate time.Time          `bson:"publicationDate"`
	User            primitive.ObjectID `bson:"user"`
	CoverObjectKey  string             `bson:"coverObjectKey,omitempty"`
	CreatedAt       time.Time          `bson:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt"`
}

func (d *bookDoc) model() models.Book {
	return models.Book{
		ID:              d.ID.Hex(),
		Title:           d.Title,
		Author:          d.Author,
		Genre:           d.Genre,
		PublicationDate: d.PublicationDate,
		UserID:          d.User.Hex(),
		CoverObjectKey:  d.CoverObjectKey,
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
}

// MongoStore persists users and books in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	books *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection("users"),
		books: db.Collection("books"),
	}
}

// EnsureIndexes creates the unique user indexes the credential store relies
// on, plus the owner/createdAt index used by listing.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongo users indexes: %w", err)
	}
	_, err = s.books.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo books indexes: %w", err)
	}
	return nil
}

func mongoNow() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// ownerFilter builds the mandatory (id, owner) predicate. Ids that are not
// ObjectIDs cannot match anything and report ErrNotFound.
func ownerFilter(id, userID string) (bson.M, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return bson.M{"_id": oid, "user": uid}, nil
}

// --- users ---

func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	now := mongoNow()
	doc := userDoc{
		Username:  u.Username,
		Email:     u.Email,
		Password:  u.Password,
		CreatedAt: now,
		UpdatedAt: now,
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.model(), nil
}

func (s *MongoStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	filter := bson.M{"$or": bson.A{bson.M{"username": username}, bson.M{"email": email}}}
	n, err := s.users.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("mongo count users: %w", err)
	}
	return n > 0, nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.model(), nil
}

// --- books ---

func (s *MongoStore) InsertBook(ctx context.Context, b *models.Book) (*models.Book, error) {
	uid, err := primitive.ObjectIDFromHex(b.UserID)
	if err != nil {
		return nil, fmt.Errorf("mongo insert book: invalid owner id %q", b.UserID)
	}
	now := mongoNow()
	doc := bookDoc{
		Title:           b.Title,
		Author:          b.Author,
		Genre:           b.Genre,
		PublicationDate: b.PublicationDate,
		User:            uid,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	res, err := s.books.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("mongo insert book: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	out := doc.model()
	return &out, nil
}

func (s *MongoStore) ListBooksByUser(ctx context.Context, userID string) ([]models.Book, error) {
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return []models.Book{}, nil
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.books.Find(ctx, bson.M{"user": uid}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find books: %w", err)
	}
	defer cur.Close(ctx)

	var docs []bookDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode books: %w", err)
	}
	out := make([]models.Book, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].model())
	}
	return out, nil
}

func (s *MongoStore) GetBook(ctx context.Context, id, userID string) (*models.Book, error) {
	filter, err := ownerFilter(id, userID)
	if err != nil {
		return nil, err
	}
	var doc bookDoc
	if err := s.books.FindOne(ctx, filter).Decode(&doc); err != nil {
		return nil, bookErr("find", err)
	}
	out := doc.model()
	return &out, nil
}

func (s *MongoStore) UpdateBook(ctx context.Context, id, userID string, f models.BookFields) (*models.Book, error) {
	return s.setBook(ctx, id, userID, bson.M{
		"title":           f.Title,
		"author":          f.Author,
		"genre":           f.Genre,
		"publicationDate": f.PublicationDate,
	})
}

func (s *MongoStore) SetBookCover(ctx context.Context, id, userID, key string) (*models.Book, error) {
	return s.setBook(ctx, id, userID, bson.M{"coverObjectKey": key})
}

func (s *MongoStore) DeleteBook(ctx context.Context, id, userID string) (*models.Book, error) {
	filter, err := ownerFilter(id, userID)
	if err != nil {
		return nil, err
	}
	var doc bookDoc
	if err := s.books.FindOneAndDelete(ctx, filter).Decode(&doc); err != nil {
		return nil, bookErr("delete", err)
	}
	out := doc.model()
	return &out, nil
}

func (s *MongoStore) setBook(ctx context.Context, id, userID string, set bson.M) (*models.Book, error) {
	filter, err := ownerFilter(id, userID)
	if err != nil {
		return nil, err
	}
	set["updatedAt"] = mongoNow()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc bookDoc
	if err := s.books.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&doc); err != nil {
		return nil, bookErr("update", err)
	}
	out := doc.model()
	return &out, nil
}

func bookErr(op string, err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("mongo %s book: %w", op, err)
}
