package groups

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/weekdump/weekdump/internal/models"
	"github.com/weekdump/weekdump/internal/store"
)

// Group document field names. The nested fields hold JSON-encoded strings;
// everything crossing this boundary is decoded into typed models, failing
// soft to empty values so one corrupt field never aborts a reconciliation
// pass.
const (
	fieldName           = "name"
	fieldMembers        = "members"
	fieldTodayData      = "todaydata"
	fieldTodayVotes     = "todayvotes"
	fieldTodayComments  = "todaycomments"
	fieldActivityActive = "activityactive"
	fieldReleaseResults = "releaseresults"
	fieldGameID         = "gameid"
)

// Repository implements group document access on top of the document store.
type Repository struct {
	docs store.DocumentStore
}

// NewRepository creates a new groups repository.
func NewRepository(docs store.DocumentStore) *Repository {
	return &Repository{docs: docs}
}

// GetGroup fetches and decodes a group document.
func (r *Repository) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	doc, err := r.docs.GetDocument(ctx, store.CollectionGroupData, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	return r.docToGroup(id, doc), nil
}

// CreateGroup persists a new group document.
func (r *Repository) CreateGroup(ctx context.Context, group *models.Group) (*models.Group, error) {
	membersJSON, err := json.Marshal(group.Members)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal members: %w", err)
	}

	doc, err := r.docs.CreateDocument(ctx, store.CollectionGroupData, group.ID, store.Document{
		fieldName:           group.Name,
		fieldMembers:        string(membersJSON),
		fieldTodayData:      "",
		fieldTodayVotes:     "",
		fieldTodayComments:  "",
		fieldActivityActive: false,
		fieldReleaseResults: false,
		fieldGameID:         group.GameID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return r.docToGroup(group.ID, doc), nil
}

// DeleteGroup removes the group document.
func (r *Repository) DeleteGroup(ctx context.Context, id string) error {
	if err := r.docs.DeleteDocument(ctx, store.CollectionGroupData, id); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	return nil
}

// ListGroups returns all group documents.
func (r *Repository) ListGroups(ctx context.Context) ([]models.Group, error) {
	docs, err := r.docs.ListDocuments(ctx, store.CollectionGroupData)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]models.Group, 0, len(docs))
	for _, doc := range docs {
		groups = append(groups, *r.docToGroup(doc.String("$id"), doc))
	}
	return groups, nil
}

// UpdateName updates the group's display name.
func (r *Repository) UpdateName(ctx context.Context, id, name string) error {
	_, err := r.docs.UpdateDocument(ctx, store.CollectionGroupData, id, store.Document{
		fieldName: name,
	})
	if err != nil {
		return fmt.Errorf("failed to update group name: %w", err)
	}
	return nil
}

// UpdateMembers replaces the member list.
func (r *Repository) UpdateMembers(ctx context.Context, id string, members []models.Member) error {
	membersJSON, err := json.Marshal(members)
	if err != nil {
		return fmt.Errorf("failed to marshal members: %w", err)
	}
	_, err = r.docs.UpdateDocument(ctx, store.CollectionGroupData, id, store.Document{
		fieldMembers: string(membersJSON),
	})
	if err != nil {
		return fmt.Errorf("failed to update group members: %w", err)
	}
	return nil
}

// SetTodayData replaces the photo-submission blob.
func (r *Repository) SetTodayData(ctx context.Context, id string, data map[string]string) error {
	return r.setBlob(ctx, id, fieldTodayData, data)
}

// SetTodayVotes replaces the votes blob.
func (r *Repository) SetTodayVotes(ctx context.Context, id string, votes map[string]string) error {
	return r.setBlob(ctx, id, fieldTodayVotes, votes)
}

// SetTodayComments replaces the comments blob.
func (r *Repository) SetTodayComments(ctx context.Context, id string, comments map[string]models.CommentEntry) error {
	return r.setBlob(ctx, id, fieldTodayComments, comments)
}

// SetActivityActive writes the activity flag. The write is an idempotent
// boolean set, so concurrent clients racing on it are harmless.
func (r *Repository) SetActivityActive(ctx context.Context, id string, active bool) error {
	_, err := r.docs.UpdateDocument(ctx, store.CollectionGroupData, id, store.Document{
		fieldActivityActive: active,
	})
	if err != nil {
		return fmt.Errorf("failed to set activity flag: %w", err)
	}
	return nil
}

// SetReleaseResults writes the release flag.
func (r *Repository) SetReleaseResults(ctx context.Context, id string, released bool) error {
	_, err := r.docs.UpdateDocument(ctx, store.CollectionGroupData, id, store.Document{
		fieldReleaseResults: released,
	})
	if err != nil {
		return fmt.Errorf("failed to set release flag: %w", err)
	}
	return nil
}

func (r *Repository) setBlob(ctx context.Context, id, field string, value any) error {
	blob, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", field, err)
	}
	_, err = r.docs.UpdateDocument(ctx, store.CollectionGroupData, id, store.Document{
		field: string(blob),
	})
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", field, err)
	}
	return nil
}

func (r *Repository) docToGroup(id string, doc store.Document) *models.Group {
	return &models.Group{
		ID:             id,
		Name:           doc.String(fieldName),
		Members:        parseMembers(id, doc.String(fieldMembers)),
		TodayData:      parseStringMap(id, fieldTodayData, doc.String(fieldTodayData)),
		TodayVotes:     parseStringMap(id, fieldTodayVotes, doc.String(fieldTodayVotes)),
		TodayComments:  parseComments(id, doc.String(fieldTodayComments)),
		ActivityActive: doc.Bool(fieldActivityActive),
		ReleaseResults: doc.Bool(fieldReleaseResults),
		GameID:         doc.Int(fieldGameID),
	}
}

func parseMembers(groupID, raw string) []models.Member {
	if raw == "" {
		return nil
	}
	var members []models.Member
	if err := json.Unmarshal([]byte(raw), &members); err != nil {
		log.Warn().Err(err).Str("group_id", groupID).Msg("failed to parse members, treating as empty")
		return nil
	}
	return members
}

func parseStringMap(groupID, field, raw string) map[string]string {
	out := map[string]string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Warn().Err(err).Str("group_id", groupID).Str("field", field).
			Msg("failed to parse blob field, treating as empty")
		return map[string]string{}
	}
	return out
}

func parseComments(groupID, raw string) map[string]models.CommentEntry {
	out := map[string]models.CommentEntry{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		log.Warn().Err(err).Str("group_id", groupID).Str("field", fieldTodayComments).
			Msg("failed to parse blob field, treating as empty")
		return map[string]models.CommentEntry{}
	}
	return out
}
