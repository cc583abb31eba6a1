package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/buytoro/config"
	"github.com/oksasatya/buytoro/internal/domain/entity"
	repo "github.com/oksasatya/buytoro/internal/domain/repository"
	"github.com/oksasatya/buytoro/pkg/helpers"
	"github.com/oksasatya/buytoro/pkg/mailer"
	mailtpl "github.com/oksasatya/buytoro/pkg/mailer/templates"
)

const resetTokenTTL = time.Hour

type UserService struct {
	Repo         repo.UserRepository
	Products     repo.ProductRepository
	Orders       repo.OrderRepository
	JWT          *helpers.JWTManager
	Media        MediaStore
	KV           KeyValue
	Mail         MailQueue
	Logger       *logrus.Logger
	ES           *elasticsearch.Client
	ESUsersIndex string
	Cfg          *config.Config
}

func NewUserService(users repo.UserRepository, products repo.ProductRepository, jwt *helpers.JWTManager, logger *logrus.Logger, cfg *config.Config) *UserService {
	return &UserService{
		Repo:     users,
		Products: products,
		JWT:      jwt,
		Logger:   logger,
		Cfg:      cfg,
	}
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Name: strings.TrimSpace(in.Name), Email: email, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.indexUser(ctx, u)
	s.enqueue(ctx, mailer.EmailJob{To: u.Email, Template: mailtpl.Welcome, Data: s.welcomeData(u)})
	return res, nil
}

func (s *UserService) welcomeData(u *entity.User) map[string]any {
	if s.Cfg == nil {
		return nil
	}
	return mailtpl.NewWelcomeData(s.Cfg, u.Name, u.Email)
}

// Login checks the password before the blocked flag so that a blocked
// account reveals nothing to wrong passwords.
func (s *UserService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	ok, err := helpers.VerifyPassword(password, u.Password)
	if err != nil {
		helpers.LogError(s.Logger, "password verification failed", err, logrus.Fields{"user_id": u.ID})
		return nil, ErrInvalidCredentials
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return nil, ErrUserBlocked
	}

	now := time.Now()
	if err := s.Repo.TouchLastLogin(ctx, u.ID, now); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("touch last login failed")
	}
	u.LastLoginAt = &now
	return s.issue(u)
}

func (s *UserService) issue(u *entity.User) (*AuthResult, error) {
	token, exp, err := s.JWT.IssueToken(u.ID)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("issue token failed")
		}
		return nil, err
	}
	return &AuthResult{User: u.Sanitized(), Token: token, ExpiresAt: exp}, nil
}

func (s *UserService) get(ctx context.Context, id string) (*entity.User, error) {
	u, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*entity.User, error) {
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Sanitized(), nil
}

type UpdateProfileInput struct {
	Name  string
	Email string
}

// UpdateProfile keeps fields left empty.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.Name); name != "" {
		u.Name = name
	}
	if email := normalizeEmail(in.Email); email != "" && email != u.Email {
		if other, err := s.Repo.GetByEmail(ctx, email); err == nil && other.ID != u.ID {
			return nil, ErrUserExists
		}
		u.Email = email
	}
	if err := s.Repo.Update(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}
	s.indexUser(ctx, u)
	return u.Sanitized(), nil
}

func (s *UserService) ChangePassword(ctx context.Context, userID, current, next string) error {
	u, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	ok, err := helpers.VerifyPassword(current, u.Password)
	if err != nil || !ok {
		return ErrWrongPassword
	}
	hash, err := helpers.HashPassword(next)
	if err != nil {
		return err
	}
	return s.Repo.UpdatePassword(ctx, u.ID, hash)
}

// UploadImage stores a new profile image and removes the previous one.
func (s *UserService) UploadImage(ctx context.Context, userID string, up Upload) (*entity.User, error) {
	if s.Media == nil {
		return nil, ErrMediaUnavailable
	}
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(up.Filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	url, err := s.Media.Upload(ctx, objectPath, up.ContentType, up.Body)
	if err != nil {
		return nil, fmt.Errorf("upload profile image: %w", err)
	}

	old := u.ImageURL
	u.ImageURL = url
	if err := s.Repo.Update(ctx, u); err != nil {
		_ = s.Media.DeleteURL(ctx, url)
		return nil, err
	}
	s.deleteMedia(ctx, old)
	s.indexUser(ctx, u)
	return u.Sanitized(), nil
}

// DeleteAccount removes the user, their profile image and search document.
// Accounts that own orders are kept: order history is never deleted with
// its owner.
func (s *UserService) DeleteAccount(ctx context.Context, userID string) error {
	u, err := s.get(ctx, userID)
	if err != nil {
		return err
	}
	if s.Orders != nil {
		orders, err := s.Orders.ListByUser(ctx, u.ID)
		if err != nil {
			return err
		}
		if len(orders) > 0 {
			return ErrAccountHasOrders
		}
	}
	if err := s.Repo.Delete(ctx, u.ID); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return ErrUserNotFound
		case errors.Is(err, repo.ErrInUse):
			return ErrAccountHasOrders
		}
		return err
	}
	s.deleteMedia(ctx, u.ImageURL)
	if s.ES != nil && s.ESUsersIndex != "" {
		if err := helpers.ESDelete(ctx, s.ES, s.ESUsersIndex, u.ID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es delete failed")
		}
	}
	return nil
}

func (s *UserService) deleteMedia(ctx context.Context, url string) {
	if s.Media == nil || url == "" {
		return
	}
	if err := s.Media.DeleteURL(ctx, url); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("url", url).Warn("delete media failed")
	}
}

// ---- wishlist ----

func (s *UserService) Wishlist(ctx context.Context, userID string) ([]*entity.Product, error) {
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.Products.GetByIDs(ctx, u.Wishlist)
}

func (s *UserService) AddToWishlist(ctx context.Context, userID, productID string) ([]string, error) {
	if _, err := s.Products.GetByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if err := s.Repo.AddToWishlist(ctx, userID, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.wishlistIDs(ctx, userID)
}

func (s *UserService) RemoveFromWishlist(ctx context.Context, userID, productID string) ([]string, error) {
	if err := s.Repo.RemoveFromWishlist(ctx, userID, productID); err != nil {
		return nil, err
	}
	return s.wishlistIDs(ctx, userID)
}

func (s *UserService) wishlistIDs(ctx context.Context, userID string) ([]string, error) {
	u, err := s.get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.Wishlist, nil
}

// ---- password reset ----

// ForgotPassword always succeeds from the caller's point of view so the
// endpoint cannot be used to discover registered emails.
func (s *UserService) ForgotPassword(ctx context.Context, email string) error {
	if s.KV == nil {
		if s.Logger != nil {
			s.Logger.Warn("password reset requested but redis is not configured")
		}
		return nil
	}
	u, err := s.Repo.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	token, err := helpers.RandomToken(32)
	if err != nil {
		return err
	}
	if err := s.KV.Set(ctx, helpers.KeyPasswordReset(token), u.ID, resetTokenTTL); err != nil {
		return err
	}
	if s.Cfg != nil {
		data := mailtpl.NewPasswordResetData(s.Cfg, u.Name, u.Email, token, resetTokenTTL)
		s.enqueue(ctx, mailer.EmailJob{To: u.Email, Template: mailtpl.PasswordReset, Data: data})
	}
	return nil
}

// ResetPassword consumes a reset token. Tokens are single use.
func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if s.KV == nil || token == "" {
		return ErrInvalidResetToken
	}
	key := helpers.KeyPasswordReset(token)
	userID, ok, err := s.KV.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrInvalidResetToken
	}
	hash, err := helpers.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.Repo.UpdatePassword(ctx, userID, hash); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	_ = s.KV.Del(ctx, key)
	return nil
}

// ---- admin ----

func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	users, err := s.Repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i, u := range users {
		users[i] = u.Sanitized()
	}
	return users, nil
}

// SearchUsers matches name and email through Elasticsearch, or by substring
// when no search cluster is configured.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]*entity.User, error) {
	q = strings.TrimSpace(q)
	if size <= 0 || size > 50 {
		size = 10
	}
	if q == "" {
		return []*entity.User{}, nil
	}

	var users []*entity.User
	if s.ES != nil && s.ESUsersIndex != "" {
		ids, err := helpers.ESMultiMatch(ctx, s.ES, s.ESUsersIndex, q, []string{"email^2", "name"}, size)
		if err != nil {
			return nil, fmt.Errorf("search users: %w", err)
		}
		if users, err = s.Repo.ListByIDs(ctx, ids); err != nil {
			return nil, err
		}
	} else {
		all, err := s.Repo.List(ctx)
		if err != nil {
			return nil, err
		}
		needle := strings.ToLower(q)
		for _, u := range all {
			if strings.Contains(strings.ToLower(u.Name), needle) || strings.Contains(u.Email, needle) {
				users = append(users, u)
				if len(users) == size {
					break
				}
			}
		}
	}

	out := make([]*entity.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Sanitized())
	}
	return out, nil
}

func (s *UserService) SetBlocked(ctx context.Context, actorID, userID string, blocked bool) (*entity.User, error) {
	if actorID == userID {
		return nil, ErrSelfAction
	}
	if err := s.Repo.SetBlocked(ctx, userID, blocked); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

func (s *UserService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID == userID {
		return ErrSelfAction
	}
	return s.DeleteAccount(ctx, userID)
}

// ---- side effects ----

func (s *UserService) indexUser(ctx context.Context, u *entity.User) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return
	}
	doc := map[string]any{
		"id":         u.ID,
		"email":      u.Email,
		"name":       u.Name,
		"is_admin":   u.IsAdmin,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	if err := helpers.ESIndex(ctx, s.ES, s.ESUsersIndex, u.ID, doc); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
	}
}

func (s *UserService) enqueue(ctx context.Context, job mailer.EmailJob) {
	if s.Mail == nil {
		return
	}
	// Enqueue logs its own failures; mail never fails the request.
	_ = s.Mail.Enqueue(ctx, job)
}
