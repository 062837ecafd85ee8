package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atvirokodosprendimai/newsroom/internal/core/domain"
)

func TestAccountAuditNeverContainsPassword(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	const secret = "s3cret-value"

	acc, err := f.accounts.Create(ctx, "admin@x.com", AccountInput{Email: "staff@x.com", Name: "Staff", Role: domain.AccountRoleStaff, Password: secret})
	require.NoError(t, err)
	_, err = f.accounts.Update(ctx, "admin@x.com", acc.ID, AccountUpdate{Email: "staff2@x.com", Name: "Staff Two", Role: domain.AccountRoleLecturer})
	require.NoError(t, err)
	require.NoError(t, f.accounts.ChangePassword(ctx, "admin@x.com", acc.ID, secret, "another-secret"))
	require.NoError(t, f.accounts.Delete(ctx, "admin@x.com", acc.ID))

	recs := f.audit.all()
	require.Len(t, recs, 4)
	for _, rec := range recs {
		blob := string(rec.Before) + string(rec.After)
		assert.NotContains(t, blob, secret)
		assert.NotContains(t, blob, "another-secret")
		assert.NotContains(t, blob, "$2a$")
		assert.NotContains(t, strings.ToLower(blob), `"password":`)
		assert.NotContains(t, strings.ToLower(blob), "passwordhash")
	}
	assert.Equal(t, []string{domain.ActionCreate, domain.ActionUpdate, domain.ActionChangePassword, domain.ActionDelete},
		[]string{recs[0].Action, recs[1].Action, recs[2].Action, recs[3].Action})
	assert.JSONEq(t, `{"changeType":"Password Updated"}`, string(recs[2].Before))
	assert.JSONEq(t, `{"changeType":"Password Updated"}`, string(recs[2].After))
}

func TestAccountCreateStoresHashAndRejectsDuplicates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	acc, err := f.accounts.Create(ctx, "", AccountInput{Email: "a@x.com", Name: "A", Role: domain.AccountRoleStaff, Password: "123456"})
	require.NoError(t, err)
	assert.NotEqual(t, "123456", acc.PasswordHash)

	_, err = f.accounts.Create(ctx, "", AccountInput{Email: "A@x.com", Name: "B", Role: domain.AccountRoleStaff, Password: "123456"})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.RuleAccountEmailTaken, verr.Rule)

	_, err = f.accounts.Create(ctx, "", AccountInput{Email: "c@x.com", Name: "C", Role: 3, Password: "123456"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.RuleAccountRoleInvalid, verr.Rule)

	_, err = f.accounts.Create(ctx, "", AccountInput{Email: "d@x.com", Name: "D", Role: domain.AccountRoleLecturer, Password: "123"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.RulePasswordTooShort, verr.Rule)

	assert.Len(t, f.audit.all(), 1)
}

func TestAccountUpdateAllowsOwnEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	acc, err := f.accounts.Create(ctx, "", AccountInput{Email: "a@x.com", Name: "A", Role: domain.AccountRoleStaff, Password: "123456"})
	require.NoError(t, err)

	updated, err := f.accounts.Update(ctx, "", acc.ID, AccountUpdate{Email: "a@x.com", Name: "Renamed", Role: domain.AccountRoleStaff})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, acc.PasswordHash, updated.PasswordHash)
}

func TestAccountChangePasswordRules(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	acc, err := f.accounts.Create(ctx, "", AccountInput{Email: "a@x.com", Name: "A", Role: domain.AccountRoleStaff, Password: "123456"})
	require.NoError(t, err)

	var verr *domain.ValidationError
	err = f.accounts.ChangePassword(ctx, "", acc.ID, "wrong", "abcdefg")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.RulePasswordMismatch, verr.Rule)

	err = f.accounts.ChangePassword(ctx, "", acc.ID, "123456", "abc")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.RulePasswordTooShort, verr.Rule)

	assert.Len(t, f.audit.all(), 1)

	require.NoError(t, f.accounts.ChangePassword(ctx, "", acc.ID, "123456", "abcdefg"))
	err = f.accounts.ChangePassword(ctx, "", acc.ID, "123456", "zzzzzzz")
	require.ErrorAs(t, err, &verr, "old password must stop working")
}

func TestAccountWithArticlesCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	acc, err := f.accounts.Create(ctx, "", AccountInput{Email: "author@x.com", Name: "Author", Role: domain.AccountRoleStaff, Password: "123456"})
	require.NoError(t, err)
	_, err = f.articles.Create(ctx, "author@x.com", ArticleInput{Title: "Mine"})
	require.NoError(t, err)
	before := len(f.audit.all())

	err = f.accounts.Delete(ctx, "admin@x.com", acc.ID)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, domain.RuleAccountHasArticles, verr.Rule)
	assert.Len(t, f.audit.all(), before)
}
