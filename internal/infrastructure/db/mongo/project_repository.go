package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

const collectionProjects = "projects"

// ProjectRepository implements ports.ProjectRepository using MongoDB.
// Membership and sub-project edits are single-document atomic updates with
// filtered $push/$pull, so concurrent edits cannot corrupt the lists.
type ProjectRepository struct {
	col *mongo.Collection
}

func NewProjectRepository(db *mongo.Database) *ProjectRepository {
	return &ProjectRepository{col: db.Collection(collectionProjects)}
}

type mongoSubProject struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
}

type mongoMember struct {
	UserID string `bson:"user_id"`
	Role   string `bson:"role"`
}

type mongoProject struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Description string             `bson:"description,omitempty"`
	Creator     string             `bson:"creator"`
	Members     []mongoMember      `bson:"members"`
	SubProjects []mongoSubProject  `bson:"sub_projects"`
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (mp *mongoProject) toDomain() *domain.Project {
	members := make([]domain.Member, 0, len(mp.Members))
	for _, m := range mp.Members {
		members = append(members, domain.Member{UserID: m.UserID, Role: domain.ProjectRole(m.Role)})
	}
	subs := make([]domain.SubProject, 0, len(mp.SubProjects))
	for _, s := range mp.SubProjects {
		subs = append(subs, domain.SubProject{
			ID:          s.ID.Hex(),
			Name:        s.Name,
			Description: s.Description,
			IsActive:    s.IsActive,
			CreatedAt:   s.CreatedAt,
		})
	}
	return &domain.Project{
		ID:          mp.ID.Hex(),
		Name:        mp.Name,
		Description: mp.Description,
		Creator:     mp.Creator,
		Members:     members,
		SubProjects: subs,
		IsActive:    mp.IsActive,
		CreatedAt:   mp.CreatedAt,
		UpdatedAt:   mp.UpdatedAt,
	}
}

// Create inserts a new project document, members included, in one write.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	members := make([]mongoMember, 0, len(project.Members))
	for _, m := range project.Members {
		members = append(members, mongoMember{UserID: m.UserID, Role: string(m.Role)})
	}

	doc := mongoProject{
		Name:        project.Name,
		Description: project.Description,
		Creator:     project.Creator,
		Members:     members,
		SubProjects: []mongoSubProject{},
		IsActive:    project.IsActive,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}

	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert project: %w", err)
	}

	created := *project
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

// FindByID retrieves a project by its hex object id.
func (r *ProjectRepository) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	var mp mongoProject
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&mp); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("find project: %w", err)
	}
	return mp.toDomain(), nil
}

// FindByMember returns all projects whose members list contains userID.
func (r *ProjectRepository) FindByMember(ctx context.Context, userID string) ([]domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"members.user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer cur.Close(ctx)

	var projects []domain.Project
	for cur.Next(ctx) {
		var mp mongoProject
		if err := cur.Decode(&mp); err != nil {
			return nil, fmt.Errorf("decode project: %w", err)
		}
		projects = append(projects, *mp.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// UpdateMeta patches name/description/isActive through a find-and-update.
func (r *ProjectRepository) UpdateMeta(ctx context.Context, id string, patch ports.ProjectPatch) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != "" {
		set["name"] = patch.Name
	}
	if patch.Description != "" {
		set["description"] = patch.Description
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProject
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}
	return mp.toDomain(), nil
}

// Delete removes the project document.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrProjectNotFound
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrProjectNotFound
	}
	return nil
}

// AddMember appends a member atomically. The filter excludes documents where
// the user already appears, so a duplicate invite matches nothing and fails
// with ErrAlreadyMember without touching the list.
func (r *ProjectRepository) AddMember(ctx context.Context, projectID string, member domain.Member) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	filter := bson.M{
		"_id":             oid,
		"members.user_id": bson.M{"$ne": member.UserID},
	}
	update := bson.M{
		"$push": bson.M{"members": mongoMember{UserID: member.UserID, Role: string(member.Role)}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProject
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			// Distinguish "project missing" from "already a member".
			if _, findErr := r.FindByID(ctx, projectID); findErr != nil {
				return nil, findErr
			}
			return nil, domain.ErrAlreadyMember
		}
		return nil, fmt.Errorf("add member: %w", err)
	}
	return mp.toDomain(), nil
}

// UpdateMemberRole sets the role on the matching member entry.
func (r *ProjectRepository) UpdateMemberRole(ctx context.Context, projectID, userID string, role domain.ProjectRole) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	filter := bson.M{"_id": oid, "members.user_id": userID}
	update := bson.M{
		"$set": bson.M{
			"members.$.role": string(role),
			"updated_at":     time.Now().UTC(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProject
	err = r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, findErr := r.FindByID(ctx, projectID); findErr != nil {
				return nil, findErr
			}
			return nil, domain.ErrMemberNotFound
		}
		return nil, fmt.Errorf("update member role: %w", err)
	}
	return mp.toDomain(), nil
}

// RemoveMember pulls the matching member entry.
func (r *ProjectRepository) RemoveMember(ctx context.Context, projectID, userID string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	update := bson.M{
		"$pull": bson.M{"members": bson.M{"user_id": userID}},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProject
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("remove member: %w", err)
	}
	return mp.toDomain(), nil
}

// AddSubProject appends a sub-project with a fresh object id.
func (r *ProjectRepository) AddSubProject(ctx context.Context, projectID string, sub domain.SubProject) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}

	doc := mongoSubProject{
		ID:          primitive.NewObjectID(),
		Name:        sub.Name,
		Description: sub.Description,
		IsActive:    sub.IsActive,
		CreatedAt:   sub.CreatedAt,
	}
	update := bson.M{
		"$push": bson.M{"sub_projects": doc},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProject
	err = r.col.FindOneAndUpdate(ctx, bson.M{"_id": oid}, update, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("add sub-project: %w", err)
	}
	return mp.toDomain(), nil
}

// UpdateSubProject patches the matching embedded sub-project.
func (r *ProjectRepository) UpdateSubProject(ctx context.Context, projectID, subID string, patch ports.SubProjectPatch) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(projectID)
	if err != nil {
		return nil, domain.ErrProjectNotFound
	}
	subOID, err := primitive.ObjectIDFromHex(subID)
	if err != nil {
		return nil, domain.ErrSubProjectNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if patch.Name != "" {
		set["sub_projects.$.name"] = patch.Name
	}
	if patch.Description != "" {
		set["sub_projects.$.description"] = patch.Description
	}
	if patch.IsActive != nil {
		set["sub_projects.$.is_active"] = *patch.IsActive
	}

	filter := bson.M{"_id": oid, "sub_projects._id": subOID}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var mp mongoProject
	err = r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if _, findErr := r.FindByID(ctx, projectID); findErr != nil {
				return nil, findErr
			}
			return nil, domain.ErrSubProjectNotFound
		}
		return nil, fmt.Errorf("update sub-project: %w", err)
	}
	return mp.toDomain(), nil
}

// EnsureIndexes creates the membership lookup index.
func (r *ProjectRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "members.user_id", Value: 1}}},
		{Keys: bson.D{{Key: "creator", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
