package di_test

import (
	"errors"
	"testing"

	"github.com/fenrir/approot/di"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategy_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "useClass", di.UseClass.String())
	assert.Equal(t, "useValue", di.UseValue.String())
	assert.Equal(t, "useFactory", di.UseFactory.String())
	assert.Equal(t, "useExisting", di.UseExisting.String())
	assert.Equal(t, "strategy(0)", di.Strategy(0).String())
}

func TestProvider_Requires(t *testing.T) {
	t.Parallel()

	f := func(di.Bag) (any, error) { return nil, nil }

	assert.Nil(t, di.ProvideClass("db", func() *DB { return &DB{} }).Requires())
	assert.Nil(t, di.ProvideValue("db", &DB{}).Requires())
	assert.Equal(t, []di.Token{"db", "logger"}, di.ProvideFactory("user", f, "db", "logger").Requires())
	assert.Equal(t, []di.Token{"db"}, di.ProvideExisting("store", "db").Requires())
}

func TestProvider_Validate(t *testing.T) {
	t.Parallel()

	f := func(di.Bag) (any, error) { return nil, nil }

	cases := []struct {
		name    string
		p       di.Provider
		wantErr bool
	}{
		{name: "class", p: di.ProvideClass("db", func() *DB { return &DB{} })},
		{name: "value", p: di.ProvideValue("db", &DB{})},
		{name: "nil value allowed", p: di.ProvideValue("db", nil)},
		{name: "factory", p: di.ProvideFactory("db", f)},
		{name: "existing", p: di.ProvideExisting("store", "db")},
		{name: "nil class", p: di.ProvideClass[DB]("db", nil), wantErr: true},
		{name: "nil factory", p: di.ProvideFactory("db", nil), wantErr: true},
		{name: "empty alias", p: di.ProvideExisting("store", ""), wantErr: true},
		{name: "empty token", p: di.ProvideValue("", 1), wantErr: true},
		{name: "unknown strategy", p: di.Provider{Token: "db"}, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			err := tc.p.Validate()
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, di.ErrNilPrimitive))

			var npe di.NilPrimitiveError
			require.True(t, errors.As(err, &npe))
			assert.Equal(t, tc.p.Token, npe.Token)
		})
	}
}

// Errors – ensure Error() strings are covered in one place
func TestErrors_StringAndTyping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "MissingProviderError",
			err:  di.MissingProviderError{Token: "db", Scope: "AppModule"},
			want: `di: no provider for "db" in scope "AppModule"`,
		},
		{
			name: "MissingProviderError with requester",
			err:  di.MissingProviderError{Token: "db", Scope: "AppModule", Requester: "repo"},
			want: `di: no provider for "db" in scope "AppModule" (required by "repo")`,
		},
		{
			name: "CyclicDependencyError",
			err:  di.CyclicDependencyError{Path: []di.Token{"a", "b", "a"}},
			want: `di: cyclic provider dependency: a -> b -> a`,
		},
		{
			name: "WrongTypeDependencyError",
			err:  di.WrongTypeDependencyError{Token: "logger", GotType: "*di.Logger"},
			want: `di: dependency "logger" has wrong type (*di.Logger)`,
		},
		{
			name: "NilPrimitiveError",
			err:  di.NilPrimitiveError{Token: "db", Strategy: di.UseFactory},
			want: `di: provider "db" (useFactory) has no primitive`,
		},
		{
			name: "ProviderPanicError",
			err:  di.ProviderPanicError{Token: "db", Recovered: "boom"},
			want: `di: panic during instantiation for "db": boom`,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}
