package usecase

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"cakeshop/internal/domain/model"
	repo "cakeshop/internal/repository"
)

// 簡易メール形式
var emailLike = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type ContactUsecase struct {
	contacts repo.ContactRepository
}

func NewContactUsecase(contacts repo.ContactRepository) *ContactUsecase {
	return &ContactUsecase{contacts: contacts}
}

type SubmitContactInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// お問い合わせ送信（ログイン不要）
func (u *ContactUsecase) Submit(ctx context.Context, in SubmitContactInput) (int64, error) {
	msg := model.ContactMessage{
		Name:    strings.TrimSpace(in.Name),
		Email:   strings.TrimSpace(in.Email),
		Phone:   strings.TrimSpace(in.Phone),
		Subject: strings.TrimSpace(in.Subject),
		Message: strings.TrimSpace(in.Message),
		Status:  model.ContactStatusUnread,
	}
	if msg.Name == "" || msg.Email == "" || msg.Subject == "" || msg.Message == "" {
		return 0, validationError("Please fill all required fields")
	}
	if !emailLike.MatchString(msg.Email) {
		return 0, validationError("Invalid email format")
	}

	if err := u.contacts.Create(ctx, &msg); err != nil {
		return 0, dbError(err)
	}
	return msg.ID, nil
}

func (u *ContactUsecase) List(ctx context.Context) ([]model.ContactMessage, error) {
	msgs, err := u.contacts.List(ctx)
	if err != nil {
		return []model.ContactMessage{}, dbError(err)
	}
	if msgs == nil {
		msgs = []model.ContactMessage{}
	}
	return msgs, nil
}

func (u *ContactUsecase) MarkRead(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("Invalid message id")
	}
	return contactResult(u.contacts.MarkRead(ctx, id))
}

func (u *ContactUsecase) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return validationError("Invalid message id")
	}
	return contactResult(u.contacts.Delete(ctx, id))
}

func contactResult(err error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return notFound("Message not found")
	}
	if err != nil {
		return dbError(err)
	}
	return nil
}
