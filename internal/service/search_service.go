package service

import (
	"encoding/json"
	"log"

	"anoa.com/classcollab/internal/model"
	"github.com/meilisearch/meilisearch-go"
)

// UserSearchService maintains the people directory index used for invite
// lookups. Indexing failures are logged, never surfaced: the database stays
// the source of truth and the index is a convenience.
type UserSearchService interface {
	IndexUser(user *model.User)
	SearchUsers(query string, limit int) ([]UserDoc, error)
}

type UserDoc struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	SRN       string `json:"srn,omitempty"`
	IsTeacher bool   `json:"is_teacher"`
}

type userSearchService struct {
	client meilisearch.ServiceManager
}

func NewUserSearchService(client meilisearch.ServiceManager) UserSearchService {
	s := &userSearchService{client: client}
	s.initIndexes()
	return s
}

func (s *userSearchService) initIndexes() {
	if s.client == nil {
		return
	}

	filterable := []string{"is_teacher"}
	filterableInterface := make([]any, len(filterable))
	for i, v := range filterable {
		filterableInterface[i] = v
	}
	if _, err := s.client.Index("users").UpdateFilterableAttributes(&filterableInterface); err != nil {
		log.Printf("Failed to update users filterable attributes: %v", err)
	}

	searchable := []string{"name", "email", "srn"}
	if _, err := s.client.Index("users").UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("Failed to update users searchable attributes: %v", err)
	}

	log.Println("Meilisearch user index initialized")
}

func (s *userSearchService) IndexUser(user *model.User) {
	if s.client == nil {
		return
	}

	doc := UserDoc{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		IsTeacher: user.IsTeacher,
	}
	if user.SRN != nil {
		doc.SRN = *user.SRN
	}

	if _, err := s.client.Index("users").AddDocuments([]UserDoc{doc}, strPtr("id")); err != nil {
		log.Printf("Failed to index user %s: %v", doc.ID, err)
	}
}

func (s *userSearchService) SearchUsers(query string, limit int) ([]UserDoc, error) {
	if s.client == nil {
		return []UserDoc{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	resp, err := s.client.Index("users").Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, err
	}

	docs := make([]UserDoc, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc UserDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

func strPtr(s string) *string {
	return &s
}
