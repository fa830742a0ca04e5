package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

// CommunityService covers surveys, announcements, the service directory and
// the resident-to-admin chat.
type CommunityService interface {
	ListSurveys(ctx context.Context) ([]model.Survey, error)
	CreateSurvey(ctx context.Context, question string, options []string) (model.Survey, error)
	Vote(ctx context.Context, surveyID, optionID string) error
	CloseSurvey(ctx context.Context, surveyID string) error
	DeleteSurvey(ctx context.Context, surveyID string) error

	ListAnnouncements(ctx context.Context) ([]model.Announcement, error)
	CreateAnnouncement(ctx context.Context, title, content, author string) (model.Announcement, error)
	DeleteAnnouncement(ctx context.Context, id string) error

	Directory(ctx context.Context) ([]model.DirectoryContact, error)

	Conversation(ctx context.Context, userA, userB string) ([]model.ChatMessage, error)
	SendMessage(ctx context.Context, senderID, receiverID, text string) (model.ChatMessage, error)
}

type communityService struct {
	store  repository.CommunityStore
	logger *slog.Logger
	now    func() time.Time
}

func NewCommunityService(store repository.CommunityStore, logger *slog.Logger) CommunityService {
	return &communityService{store: store, logger: logger, now: time.Now}
}

func (s *communityService) ListSurveys(ctx context.Context) ([]model.Survey, error) {
	return s.store.ListSurveys(ctx)
}

func (s *communityService) CreateSurvey(ctx context.Context, question string, options []string) (model.Survey, error) {
	if question == "" || len(options) < 2 {
		return model.Survey{}, fmt.Errorf("%w: survey needs a question and at least two options", ErrInvalidInput)
	}
	sv := model.Survey{
		ID:       "surv-" + uuid.NewString(),
		Question: question,
		Status:   model.SurveyActive,
	}
	for _, text := range options {
		sv.Options = append(sv.Options, model.SurveyOption{ID: "opt-" + uuid.NewString(), Text: text})
	}
	if err := s.store.SaveSurvey(ctx, sv); err != nil {
		return model.Survey{}, err
	}
	s.logger.Info("survey created", "survey_id", sv.ID)
	return sv, nil
}

func (s *communityService) Vote(ctx context.Context, surveyID, optionID string) error {
	sv, err := s.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return err
	}
	if sv.Status != model.SurveyActive {
		return ErrSurveyClosed
	}
	found := false
	for i := range sv.Options {
		if sv.Options[i].ID == optionID {
			sv.Options[i].Votes++
			sv.TotalVotes++
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("%w: unknown option %q", ErrInvalidInput, optionID)
	}
	return s.store.SaveSurvey(ctx, sv)
}

func (s *communityService) DeleteSurvey(ctx context.Context, surveyID string) error {
	return s.store.DeleteSurvey(ctx, surveyID)
}

func (s *communityService) CloseSurvey(ctx context.Context, surveyID string) error {
	sv, err := s.store.GetSurvey(ctx, surveyID)
	if err != nil {
		return err
	}
	sv.Status = model.SurveyClosed
	return s.store.SaveSurvey(ctx, sv)
}

func (s *communityService) ListAnnouncements(ctx context.Context) ([]model.Announcement, error) {
	return s.store.ListAnnouncements(ctx)
}

func (s *communityService) CreateAnnouncement(ctx context.Context, title, content, author string) (model.Announcement, error) {
	if title == "" || content == "" {
		return model.Announcement{}, fmt.Errorf("%w: announcement needs a title and content", ErrInvalidInput)
	}
	a := model.Announcement{
		ID:      "ann-" + uuid.NewString(),
		Title:   title,
		Content: content,
		Author:  author,
		Date:    s.now(),
	}
	if err := s.store.CreateAnnouncement(ctx, a); err != nil {
		return model.Announcement{}, err
	}
	s.logger.Info("announcement created", "announcement_id", a.ID)
	return a, nil
}

func (s *communityService) DeleteAnnouncement(ctx context.Context, id string) error {
	if err := s.store.DeleteAnnouncement(ctx, id); err != nil {
		return err
	}
	s.logger.Info("announcement deleted", "announcement_id", id)
	return nil
}

func (s *communityService) Directory(ctx context.Context) ([]model.DirectoryContact, error) {
	return s.store.ListDirectoryContacts(ctx)
}

func (s *communityService) Conversation(ctx context.Context, userA, userB string) ([]model.ChatMessage, error) {
	all, err := s.store.ListChatMessages(ctx)
	if err != nil {
		return nil, err
	}
	var out []model.ChatMessage
	for _, m := range all {
		if (m.SenderID == userA && m.ReceiverID == userB) || (m.SenderID == userB && m.ReceiverID == userA) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *communityService) SendMessage(ctx context.Context, senderID, receiverID, text string) (model.ChatMessage, error) {
	if text == "" {
		return model.ChatMessage{}, fmt.Errorf("%w: empty message", ErrInvalidInput)
	}
	m := model.ChatMessage{
		ID:         "msg-" + uuid.NewString(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Text:       text,
		Timestamp:  s.now(),
	}
	if err := s.store.AppendChatMessage(ctx, m); err != nil {
		return model.ChatMessage{}, err
	}
	return m, nil
}
