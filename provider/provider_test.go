package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryanwaits/openpkg/resolve"
)

func loadTestdata(t *testing.T) *Resolver {
	t.Helper()
	r, err := Load(context.Background(), Options{
		Patterns: []string{"github.com/ryanwaits/openpkg/provider/testdata"},
	})
	require.NoError(t, err)
	return r
}

func declByName(decls []*resolve.Declaration, name string) *resolve.Declaration {
	for _, d := range decls {
		if d.Name == name {
			return d
		}
	}
	return nil
}

func TestLoad_RequiresPatterns(t *testing.T) {
	_, err := Load(context.Background(), Options{})
	require.Error(t, err)
}

func TestMeta(t *testing.T) {
	r := loadTestdata(t)
	meta := r.Meta()
	assert.Equal(t, "go", meta.Ecosystem)
	assert.NotEmpty(t, meta.Name)
	assert.Contains(t, meta.Description, "sample API surface")
}

func TestExports_Struct(t *testing.T) {
	r := loadTestdata(t)
	decls, err := r.Exports(context.Background())
	require.NoError(t, err)

	user := declByName(decls, "User")
	require.NotNil(t, user)
	assert.Equal(t, resolve.DeclInterface, user.Kind)
	assert.Contains(t, user.Doc, "account holder")
	require.NotNil(t, user.Type)
	assert.Equal(t, resolve.KindObject, user.Type.Kind)
	assert.Equal(t, "User", user.Type.Name)

	byName := map[string]resolve.Member{}
	for _, m := range user.Members {
		byName[m.Name] = m
	}

	id, ok := byName["id"]
	require.True(t, ok, "field ID should surface under its json name")
	assert.Equal(t, resolve.MemberProperty, id.Kind)
	assert.False(t, id.Optional)
	assert.Contains(t, id.Doc, "unique account identifier")
	assert.Equal(t, "string", id.Type.Name)

	email, ok := byName["email"]
	require.True(t, ok)
	assert.True(t, email.Optional, "omitempty maps to optional")

	age, ok := byName["age"]
	require.True(t, ok)
	assert.Equal(t, resolve.KindUnion, age.Type.Kind, "pointer maps to value-or-null")
	require.Len(t, age.Type.Members, 2)
	assert.Equal(t, "number", age.Type.Members[0].Name)
	assert.Equal(t, "null", age.Type.Members[1].Name)

	created, ok := byName["created_at"]
	require.True(t, ok)
	assert.Equal(t, "string", created.Type.Name, "time.Time maps to string")
	assert.True(t, created.Type.Builtin)

	attrs, ok := byName["Attrs"]
	require.True(t, ok, "untagged exported field keeps its Go name")
	assert.Equal(t, resolve.KindObject, attrs.Type.Kind)
	require.NotNil(t, attrs.Type.Additional)
	assert.Equal(t, "string", attrs.Type.Additional.Name)

	_, skipped := byName["Skipped"]
	assert.False(t, skipped, `json:"-" fields are dropped`)
	_, unexported := byName["internal"]
	assert.False(t, unexported)
}

func TestExports_Alias(t *testing.T) {
	r := loadTestdata(t)
	decls, err := r.Exports(context.Background())
	require.NoError(t, err)

	account := declByName(decls, "Account")
	require.NotNil(t, account)
	assert.Equal(t, resolve.DeclTypeAlias, account.Kind)
	require.NotNil(t, account.Type)
	assert.Equal(t, "User", account.Type.Alias, "alias of a named type carries the target name")
}

func TestExports_Enum(t *testing.T) {
	r := loadTestdata(t)
	decls, err := r.Exports(context.Background())
	require.NoError(t, err)

	status := declByName(decls, "Status")
	require.NotNil(t, status)
	assert.Equal(t, resolve.DeclEnum, status.Kind)
	require.Len(t, status.EnumMembers, 2)

	values := map[string]any{}
	for _, m := range status.EnumMembers {
		values[m.Name] = m.Value
	}
	assert.Equal(t, "active", values["StatusActive"])
	assert.Equal(t, "frozen", values["StatusFrozen"])

	// The constants themselves are folded into the enum.
	assert.Nil(t, declByName(decls, "StatusActive"))
}

func TestExports_Interface(t *testing.T) {
	r := loadTestdata(t)
	decls, err := r.Exports(context.Background())
	require.NoError(t, err)

	store := declByName(decls, "Store")
	require.NotNil(t, store)
	assert.Equal(t, resolve.DeclInterface, store.Kind)
	require.Len(t, store.Members, 2)

	get := store.Members[0]
	assert.Equal(t, "Get", get.Name)
	assert.Equal(t, resolve.MemberMethod, get.Kind)
	require.Len(t, get.Signatures, 1)
	require.Len(t, get.Signatures[0].Params, 1)
	assert.Equal(t, "id", get.Signatures[0].Params[0].Name)
	// (*User, error) drops the error and keeps the value-or-null union.
	require.NotNil(t, get.Signatures[0].Return)
	assert.Equal(t, resolve.KindUnion, get.Signatures[0].Return.Kind)
}

func TestExports_Function(t *testing.T) {
	r := loadTestdata(t)
	decls, err := r.Exports(context.Background())
	require.NoError(t, err)

	connect := declByName(decls, "Connect")
	require.NotNil(t, connect)
	assert.Equal(t, resolve.DeclFunction, connect.Kind)
	assert.Contains(t, connect.Doc, "Deprecated:")
	require.Len(t, connect.Signatures, 1)

	sig := connect.Signatures[0]
	require.Len(t, sig.Params, 2)
	assert.Equal(t, "addr", sig.Params[0].Name)
	assert.Equal(t, "string", sig.Params[0].TypeText)
	assert.Equal(t, "retries", sig.Params[1].Name)
	assert.Equal(t, "*User", sig.ReturnText)
}

func TestExports_Values(t *testing.T) {
	r := loadTestdata(t)
	decls, err := r.Exports(context.Background())
	require.NoError(t, err)

	max := declByName(decls, "MaxRetries")
	require.NotNil(t, max)
	assert.Equal(t, resolve.DeclVariable, max.Kind)
	require.NotNil(t, max.Type)
	assert.Equal(t, resolve.KindLiteral, max.Type.Kind)
	assert.Equal(t, int64(5), max.Type.Literal)

	labels := declByName(decls, "DefaultLabels")
	require.NotNil(t, labels)
	assert.Equal(t, resolve.DeclVariable, labels.Kind)
	assert.Equal(t, resolve.KindArray, labels.Type.Kind)
}

func TestDeclaration_Lookup(t *testing.T) {
	r := loadTestdata(t)

	d, err := r.Declaration(context.Background(), "User")
	require.NoError(t, err)
	require.NotNil(t, d)
	assert.Equal(t, resolve.DeclInterface, d.Kind)

	missing, err := r.Declaration(context.Background(), "Nonexistent")
	require.NoError(t, err)
	assert.Nil(t, missing)
}
