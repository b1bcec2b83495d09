package service

import (
	"time"

	"github.com/mdouchement/clipvault/internal/cverror"
	"github.com/mdouchement/clipvault/internal/database"
	"github.com/mdouchement/clipvault/internal/model"
	"github.com/mdouchement/clipvault/internal/server/token"
	"github.com/pkg/errors"
)

const (
	// MaxQRContentBytes is the UTF-8 byte ceiling for a QR payload.
	MaxQRContentBytes = 2048
	// QRTokenTTL is how long an issued QR token stays resolvable.
	QRTokenTTL = 10 * time.Minute
)

type (
	// A QRService issues and resolves ephemeral transfer tokens.
	QRService interface {
		Issue(contentText string) (*model.QRToken, error)
		Resolve(tok string) (*model.QRToken, error)
	}

	qrService struct {
		db database.Client
	}
)

// NewQR returns a new QRService.
func NewQR(db database.Client) QRService {
	return &qrService{db: db}
}

func (s *qrService) Issue(contentText string) (*model.QRToken, error) {
	if contentText == "" {
		return nil, cverror.NewValidation("content_text is required.")
	}
	if len(contentText) > MaxQRContentBytes {
		return nil, cverror.NewValidation("Content exceeds the 2 KB limit for QR transfer.")
	}

	qrtoken := &model.QRToken{
		Token:       token.SecureToken(token.QRTokenLength),
		ContentText: contentText,
		ExpiresAt:   time.Now().UTC().Add(QRTokenTTL),
	}
	if err := s.db.Save(qrtoken); err != nil {
		if s.db.IsAlreadyExists(err) {
			return nil, cverror.NewConflict("Could not generate a unique QR token.")
		}
		return nil, errors.Wrap(err, "could not persist qr token")
	}
	return qrtoken, nil
}

// Resolve returns the content snapshot behind a token. A lapsed token is
// removed on the spot and reported Gone, so a client hitting it between two
// sweeper runs never reads stale content.
func (s *qrService) Resolve(tok string) (*model.QRToken, error) {
	qrtoken, err := s.db.FindQRToken(tok)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, cverror.NewNotFound("Token not found.")
		}
		return nil, errors.Wrap(err, "could not get qr token")
	}

	if qrtoken.Expired(time.Now()) {
		if err := s.db.RemoveQRToken(tok); err != nil && !s.db.IsNotFound(err) {
			return nil, errors.Wrap(err, "could not remove lapsed qr token")
		}
		return nil, cverror.NewGone("Token has expired.")
	}
	return qrtoken, nil
}
