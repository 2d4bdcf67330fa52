package services

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/gonzaloparrilla/CompaRar1.0/internal/domain"
	"github.com/gonzaloparrilla/CompaRar1.0/internal/repos"
)

var ErrBadCreds = errors.New("invalid email or password")

type AuthService struct {
	Users *repos.UserRepo
}

func (s *AuthService) Login(sid, email, password string) (*domain.User, error) {
	u, err := s.Users.ByEmail(email)
	if err != nil {
		return nil, ErrBadCreds
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Hash), []byte(password)) != nil {
		return nil, ErrBadCreds
	}
	if err := s.Users.BindSession(sid, u.ID); err != nil {
		return nil, err
	}
	return u, nil
}

// Register creates a USER account and binds the session to it.
func (s *AuthService) Register(sid, email, name, password string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return nil, err
	}
	id, err := s.Users.Create(email, name, string(hash), "USER")
	if err != nil {
		return nil, err
	}
	if err := s.Users.BindSession(sid, id); err != nil {
		return nil, err
	}
	return s.Users.ByID(id)
}

func (s *AuthService) Logout(sid string) error {
	return s.Users.UnbindSession(sid)
}

func (s *AuthService) CurrentUser(sid string) (*domain.User, error) {
	return s.Users.SessionUser(sid)
}
