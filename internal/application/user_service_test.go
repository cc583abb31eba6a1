package application

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/buytoro/internal/domain/entity"
	repo "github.com/oksasatya/buytoro/internal/domain/repository"
	mailtpl "github.com/oksasatya/buytoro/pkg/mailer/templates"
)

func TestRegister_DuplicateEmailRejected(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	res, err := e.userSvc.Register(ctx, RegisterInput{Name: "Ann", Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Empty(t, res.User.Password)

	claims, err := e.jwt.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	for _, email := range []string{"a@x.com", " A@X.com "} {
		_, err = e.userSvc.Register(ctx, RegisterInput{Name: "Ann again", Email: email, Password: "pw123456"})
		require.ErrorIs(t, err, ErrUserExists)
	}
	users, err := e.users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Len(t, e.mail.byTemplate(mailtpl.Welcome), 1)
}

func TestLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	_, err := e.userSvc.Register(ctx, RegisterInput{Name: "Ann", Email: "a@x.com", Password: "pw123456"})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		_, err := e.userSvc.Login(ctx, "a@x.com", "nope-nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("unknown email", func(t *testing.T) {
		_, err := e.userSvc.Login(ctx, "b@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("success records last login", func(t *testing.T) {
		res, err := e.userSvc.Login(ctx, "A@x.com", "pw123456")
		require.NoError(t, err)
		assert.NotEmpty(t, res.Token)
		u, err := e.users.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		assert.NotNil(t, u.LastLoginAt)
	})
	t.Run("blocked", func(t *testing.T) {
		u, err := e.users.GetByEmail(ctx, "a@x.com")
		require.NoError(t, err)
		require.NoError(t, e.users.SetBlocked(ctx, u.ID, true))
		_, err = e.userSvc.Login(ctx, "a@x.com", "pw123456")
		assert.ErrorIs(t, err, ErrUserBlocked)
		_, err = e.userSvc.Login(ctx, "a@x.com", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestUpdateProfileAndPassword(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ann := e.addUser(t, "ann@x.com", false)
	e.addUser(t, "bob@x.com", false)

	u, err := e.userSvc.UpdateProfile(ctx, ann.ID, UpdateProfileInput{Name: "Annie"})
	require.NoError(t, err)
	assert.Equal(t, "Annie", u.Name)
	assert.Equal(t, "ann@x.com", u.Email)

	_, err = e.userSvc.UpdateProfile(ctx, ann.ID, UpdateProfileInput{Email: "BOB@x.com"})
	require.ErrorIs(t, err, ErrUserExists)

	require.ErrorIs(t, e.userSvc.ChangePassword(ctx, ann.ID, "bad-current", "newpassword1"), ErrWrongPassword)
	require.NoError(t, e.userSvc.ChangePassword(ctx, ann.ID, "password123", "newpassword1"))
	_, err = e.userSvc.Login(ctx, "ann@x.com", "newpassword1")
	require.NoError(t, err)
}

func TestPasswordReset(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.addUser(t, "ann@x.com", false)

	require.NoError(t, e.userSvc.ForgotPassword(ctx, "nobody@x.com"))
	assert.Empty(t, e.mail.byTemplate(mailtpl.PasswordReset))

	require.NoError(t, e.userSvc.ForgotPassword(ctx, "ANN@x.com"))
	jobs := e.mail.byTemplate(mailtpl.PasswordReset)
	require.Len(t, jobs, 1)
	resetURL, err := url.Parse(jobs[0].Data["ResetURL"].(string))
	require.NoError(t, err)
	token := resetURL.Query().Get("token")
	require.NotEmpty(t, token)

	require.ErrorIs(t, e.userSvc.ResetPassword(ctx, "forged", "another-pass"), ErrInvalidResetToken)
	require.NoError(t, e.userSvc.ResetPassword(ctx, token, "brand-new-pass"))
	require.ErrorIs(t, e.userSvc.ResetPassword(ctx, token, "second-try-pass"), ErrInvalidResetToken, "tokens are single use")

	_, err = e.userSvc.Login(ctx, "ann@x.com", "brand-new-pass")
	require.NoError(t, err)
}

func TestWishlist(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ann := e.addUser(t, "ann@x.com", false)
	p := e.addProduct(t, "Diver", 500, 3)

	_, err := e.userSvc.AddToWishlist(ctx, ann.ID, "missing")
	require.ErrorIs(t, err, ErrProductNotFound)

	ids, err := e.userSvc.AddToWishlist(ctx, ann.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{p.ID}, ids)
	ids, err = e.userSvc.AddToWishlist(ctx, ann.ID, p.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	products, err := e.userSvc.Wishlist(ctx, ann.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Diver", products[0].Name)

	ids, err = e.userSvc.RemoveFromWishlist(ctx, ann.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestUploadImageReplacesPrevious(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ann := e.addUser(t, "ann@x.com", false)

	u, err := e.userSvc.UploadImage(ctx, ann.ID, Upload{Filename: "me.PNG", ContentType: "image/png", Body: strings.NewReader("one")})
	require.NoError(t, err)
	first := u.ImageURL
	assert.True(t, strings.HasPrefix(first, "https://media.test/avatars/"+ann.ID+"/"))
	assert.True(t, strings.HasSuffix(first, ".png"))

	u, err = e.userSvc.UploadImage(ctx, ann.ID, Upload{Filename: "me2.jpg", ContentType: "image/jpeg", Body: strings.NewReader("two")})
	require.NoError(t, err)
	assert.NotEqual(t, first, u.ImageURL)
	assert.Equal(t, []string{first}, e.media.deleted)

	e.userSvc.Media = nil
	_, err = e.userSvc.UploadImage(ctx, ann.ID, Upload{Filename: "x.jpg", Body: strings.NewReader("x")})
	assert.ErrorIs(t, err, ErrMediaUnavailable)
}

func TestAdminUserOperations(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.addUser(t, "admin@x.com", true)
	ann := e.addUser(t, "ann@x.com", false)

	_, err := e.userSvc.SetBlocked(ctx, admin.ID, admin.ID, true)
	require.ErrorIs(t, err, ErrSelfAction)

	u, err := e.userSvc.SetBlocked(ctx, admin.ID, ann.ID, true)
	require.NoError(t, err)
	assert.True(t, u.IsBlocked)

	found, err := e.userSvc.SearchUsers(ctx, "ANN", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, ann.ID, found[0].ID)
	assert.Empty(t, found[0].Password)

	require.ErrorIs(t, e.userSvc.DeleteUser(ctx, admin.ID, admin.ID), ErrSelfAction)
	require.NoError(t, e.userSvc.DeleteUser(ctx, admin.ID, ann.ID))
	_, err = e.userSvc.GetProfile(ctx, ann.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestDeleteAccount_KeepsOrderHistory(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	admin := e.addUser(t, "admin@x.com", true)
	ann := e.addUser(t, "ann@x.com", false)
	o := e.placeOrder(t, ann, e.addProduct(t, "Diver", 500, 3), 1)
	_, err := e.orderSvc.MarkPaid(ctx, o.ID, entity.Actor{UserID: admin.ID, IsAdmin: true})
	require.NoError(t, err)

	require.ErrorIs(t, e.userSvc.DeleteAccount(ctx, ann.ID), ErrAccountHasOrders)
	require.ErrorIs(t, e.userSvc.DeleteUser(ctx, admin.ID, ann.ID), ErrAccountHasOrders)

	got, err := e.orderSvc.Get(ctx, o.ID, entity.Actor{UserID: ann.ID})
	require.NoError(t, err)
	assert.True(t, got.IsPaid)
	_, err = e.userSvc.GetProfile(ctx, ann.ID)
	require.NoError(t, err)

	// Once an admin removes the orders the account can go.
	require.NoError(t, e.orderSvc.Delete(ctx, o.ID))
	require.NoError(t, e.userSvc.DeleteAccount(ctx, ann.ID))
}

func TestUserRepositoryRefusesDeleteWhileOrdersExist(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	ann := e.addUser(t, "ann@x.com", false)
	e.placeOrder(t, ann, e.addProduct(t, "Diver", 500, 3), 1)

	assert.ErrorIs(t, e.users.Delete(ctx, ann.ID), repo.ErrInUse)
}
